package domain

import (
	"maps"
	"slices"
)

const (
	// VersionKey is the property holding the installed version of a package.
	VersionKey = "version"

	// LatestVersion is recorded when no concrete version is known.
	LatestVersion = "latest"
)

// Properties is the string-to-string property set recorded for a package.
// Besides "version" it carries backend-specific metadata such as "source".
type Properties map[string]string

// Clone returns a copy of p that is never nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	return maps.Clone(p)
}

// Version returns the recorded version, or LatestVersion if none is set.
func (p Properties) Version() string {
	if v := p[VersionKey]; v != "" {
		return v
	}
	return LatestVersion
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Entry is a single package tracked in a backend's manifest section.
type Entry struct {
	// Name is unique within a backend section.
	Name string

	// Properties always contains VersionKey once the entry is persisted.
	Properties Properties
}

// NewEntry creates an entry with a copy of the given properties.
func NewEntry(name string, props Properties) Entry {
	return Entry{Name: name, Properties: props.Clone()}
}

// Version returns the entry's version, defaulting to LatestVersion.
func (e Entry) Version() string {
	return e.Properties.Version()
}

// WithVersion returns a copy of e whose version is set to v.
// An empty v leaves an already recorded version in place and otherwise
// records LatestVersion.
func (e Entry) WithVersion(v string) Entry {
	props := e.Properties.Clone()
	switch {
	case v != "":
		props[VersionKey] = v
	case props[VersionKey] == "":
		props[VersionKey] = LatestVersion
	}
	return Entry{Name: e.Name, Properties: props}
}

// InstalledPackage is a package a backend reports as explicitly installed.
type InstalledPackage struct {
	Name    string
	Version string
}
