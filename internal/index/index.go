package index

import "github.com/starford/sowilo/internal/models"

// HeaderIndex defines the interface for header-index operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type HeaderIndex interface {
	UpsertHeader(row HeaderRow) error
	DeleteHeader(path string) error
	GetHeader(path string) (*HeaderRow, error)
	GetChecksum(path string) (string, error)
	ListHeaders(limit, offset int, required []string, sortKey string) ([]HeaderRow, int, error)
	TagSummary() ([]models.TagCount, error)
	PathsWithTag(tag string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies HeaderIndex at compile time.
var _ HeaderIndex = (*DB)(nil)
