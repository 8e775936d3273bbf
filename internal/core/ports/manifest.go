package ports

import "go.trai.ch/darling/internal/core/domain"

// ManifestStore loads the desired-state document.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestStore interface {
	// Load reads the manifest, creating an empty one if none exists yet.
	// Content that cannot be parsed is reported as domain.ErrCorruptManifest.
	Load() (Manifest, error)

	// Path returns the location of the manifest file.
	Path() string
}

// Manifest is the in-memory working copy of the desired-state document.
// It is owned by a single invocation and is not safe for concurrent use.
type Manifest interface {
	// Sections returns the backend sections in document order.
	Sections() []string

	// Section returns the entries of a backend's section in document order.
	// A missing section yields no entries; a section that is not a mapping
	// yields domain.ErrCorruptManifest.
	Section(backend string) ([]domain.Entry, error)

	// Upsert writes or replaces a single entry, leaving everything else untouched.
	Upsert(backend string, entry domain.Entry) error

	// Remove deletes an entry. It fails with domain.ErrSectionNotFound or
	// domain.ErrEntryNotFound when there is nothing to remove.
	Remove(backend, name string) error

	// Persist writes the whole document back to disk in one replace operation.
	Persist() error
}
