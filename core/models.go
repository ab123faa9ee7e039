package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Document IDs are derived from the canonical URL so that re-crawling the
// same page always maps onto the same record.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document categories. Crawled pages are classified from their URL path;
// anything unrecognized lands in CategoryGeneral.
const (
	CategoryAdmissions   = "tuyển sinh"
	CategoryAnnouncement = "thông báo"
	CategoryPrograms     = "ngành đào tạo"
	CategoryScholarship  = "học bổng"
	CategoryTuition      = "học phí"
	CategoryGeneral      = "general"
)

// Categories lists the valid document categories.
var Categories = []string{
	CategoryAdmissions,
	CategoryAnnouncement,
	CategoryPrograms,
	CategoryScholarship,
	CategoryTuition,
	CategoryGeneral,
}

// Document represents a single crawled page in the knowledge base.
type Document struct {
	Id          ID
	URL         string
	Title       string
	Content     string
	Description string
	Keywords    []string
	Headings    []string
	Category    string
	Year        int
	Embedding   []float32 // unit-norm vector, empty until the embedding processor runs
	WordCount   int
	CrawledAt   time.Time // when the page was crawled
	UpdatedAt   time.Time // when the record was last written
}

// ScoreSource identifies which retrieval mechanism produced a result score.
type ScoreSource int

const (
	// ScoreSourceText marks a lexical (full-text) relevance score.
	ScoreSourceText ScoreSource = iota + 1
	// ScoreSourceVector marks a cosine similarity score.
	ScoreSourceVector
	// ScoreSourceHybrid marks a fused lexical+vector score.
	ScoreSourceHybrid
)

// String returns a short label for logging and debugging.
func (s ScoreSource) String() string {
	switch s {
	case ScoreSourceText:
		return "text"
	case ScoreSourceVector:
		return "vector"
	case ScoreSourceHybrid:
		return "hybrid"
	}
	return "unknown"
}

// SearchResult pairs a document with its relevance score.
// Results are transient per-query values and are never persisted.
type SearchResult struct {
	Document *Document
	Score    float64
	Source   ScoreSource
}

// CountWords counts whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
