package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askuni/kbase/ai"
)

func TestDeterministicVectors(t *testing.T) {
	ctx := context.Background()
	m := NewEmbedder()

	t.Run("same text produces same vector", func(t *testing.T) {
		a, err := m.EmbedText(ctx, "tuyển sinh")
		require.NoError(t, err)
		b, err := m.EmbedText(ctx, "tuyển sinh")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("different text produces different vectors", func(t *testing.T) {
		a, err := m.EmbedText(ctx, "tuyển sinh")
		require.NoError(t, err)
		b, err := m.EmbedText(ctx, "học bổng")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("vectors are unit norm", func(t *testing.T) {
		v, err := m.EmbedText(ctx, "học phí")
		require.NoError(t, err)

		var sumSquares float64
		for _, x := range v {
			sumSquares += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-4)
	})

	t.Run("default dimension", func(t *testing.T) {
		v, err := m.EmbedText(ctx, "text")
		require.NoError(t, err)
		assert.Len(t, v, ai.DefaultEmbeddingDimensions)
	})

	t.Run("custom dimension", func(t *testing.T) {
		small := &Embedder{Dimensions: 8}
		v, err := small.EmbedText(ctx, "text")
		require.NoError(t, err)
		assert.Len(t, v, 8)
	})
}

func TestEmbedTexts(t *testing.T) {
	ctx := context.Background()
	m := NewEmbedder()

	vectors, err := m.EmbedTexts(ctx, []string{"a", "b", "a"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[2])
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestInjectedBehavior(t *testing.T) {
	ctx := context.Background()

	t.Run("EmbedTextFunc overrides default", func(t *testing.T) {
		m := NewEmbedder()
		m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("provider down")
		}
		_, err := m.EmbedText(ctx, "anything")
		assert.Error(t, err)
	})

	t.Run("call count tracks usage", func(t *testing.T) {
		m := NewEmbedder()
		_, _ = m.EmbedText(ctx, "a")
		_, _ = m.EmbedTexts(ctx, []string{"b"})
		assert.Equal(t, 2, m.CallCount())

		m.Reset()
		assert.Equal(t, 0, m.CallCount())
	})
}
