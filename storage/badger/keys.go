package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/askuni/kbase/core"
)

// Key prefixes for different data types
const (
	documentPrefix         = "docrec"
	documentURLPrefix      = "docurl"
	documentCategoryPrefix = "doccat"
	documentDatePrefix     = "docdat"
)

// makeDocumentKey generates a key for a document by content ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeURLKey generates a key for the URL index.
// Format: prefix:url
func makeURLKey(url string) []byte {
	return []byte(documentURLPrefix + ":" + url)
}

// makeCategoryKey generates a composite key for the category index.
// Format: prefix:category:id
func makeCategoryKey(category string, id core.ID) []byte {
	prefix := documentCategoryPrefix + ":" + category + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialCategoryKey generates a partial key for category scans.
// Format: prefix:category:
func makePartialCategoryKey(category string) []byte {
	return []byte(documentCategoryPrefix + ":" + category + ":")
}

// makeDateKey generates a composite key for the crawl-date index.
// Format: prefix:timestamp:id
func makeDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialDateKey(timestamp time.Time) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}
