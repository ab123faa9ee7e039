package backfill

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports at the configured interval", func(t *testing.T) {
		var out bytes.Buffer
		p := NewProgressTracker(&out, 100, 10)
		p.Start()

		p.Update(5)
		assert.Empty(t, out.String(), "below interval, nothing reported yet")

		p.Update(10)
		assert.Contains(t, out.String(), "10/100")
	})

	t.Run("increment accumulates", func(t *testing.T) {
		var out bytes.Buffer
		p := NewProgressTracker(&out, 10, 5)
		p.Start()

		p.Increment(3)
		p.Increment(3)
		assert.Contains(t, out.String(), "6/10")
	})

	t.Run("finish reports full progress", func(t *testing.T) {
		var out bytes.Buffer
		p := NewProgressTracker(&out, 42, 100)
		p.Start()
		p.Finish()
		assert.Contains(t, out.String(), "42/42")
		assert.Contains(t, out.String(), "100.0%")
	})

	t.Run("progress is capped at total", func(t *testing.T) {
		var out bytes.Buffer
		p := NewProgressTracker(&out, 10, 1)
		p.Start()
		p.Update(50)
		assert.Contains(t, out.String(), "10/10")
	})

	t.Run("updates before start are ignored", func(t *testing.T) {
		var out bytes.Buffer
		p := NewProgressTracker(&out, 10, 1)
		p.Update(5)
		p.Finish()
		assert.Empty(t, out.String())
	})

	t.Run("elapsed is zero before start", func(t *testing.T) {
		p := NewProgressTracker(&bytes.Buffer{}, 10, 1)
		assert.Zero(t, p.Elapsed())
	})
}
