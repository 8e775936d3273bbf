package domain

import "regexp"

var validBackendNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidBackendName reports whether name can be used as a CLI selector and manifest section key.
func ValidBackendName(name string) bool {
	return validBackendNameRegex.MatchString(name)
}

// BackendDescriptor describes a registered backend.
type BackendDescriptor struct {
	// Name is both the CLI selector and the manifest section key.
	Name string

	// Description is a short human-readable summary.
	Description string

	// Source tells where the backend was registered from ("builtin" or a config path).
	Source string
}

const (
	// SourceBuiltin marks backends compiled into the binary.
	SourceBuiltin = "builtin"
)

// Drift is the difference between a manifest section and what its backend reports.
type Drift struct {
	// Backend is the section the drift was computed for.
	Backend string

	// Missing lists manifest entries the backend does not report as installed.
	Missing []string

	// Untracked lists explicitly installed packages absent from the manifest.
	Untracked []InstalledPackage
}

// InSync reports whether the section and the backend agree.
func (d Drift) InSync() bool {
	return len(d.Missing) == 0 && len(d.Untracked) == 0
}

// CommandSpec declares a backend driven entirely by external commands.
//
// Argument templates are rendered per package with the fields Name, Version
// (empty when the latest version is requested) and Properties.
type CommandSpec struct {
	Name        string
	Description string
	Source      string

	Install     []string
	Uninstall   []string
	List        []string
	PostInstall []string

	// ListPattern is a regular expression applied to each line of the List output.
	// It must define a "name" group and may define a "version" group.
	ListPattern string

	// Retries is how many times a failing install or uninstall is attempted again.
	Retries int
}
