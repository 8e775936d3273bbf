package domain

import "path/filepath"

const (
	// AppName is the directory name used below the user's config directory.
	AppName = "darling"

	// ManifestFileName is the name of the desired-state document.
	ManifestFileName = "darling.yaml"

	// ConfigFileName is the name of the optional user configuration file.
	ConfigFileName = "config.toml"

	// LockFileName is the advisory lock guarding manifest writes.
	LockFileName = ".darling.lock"

	// HomeEnvVar overrides the base directory.
	HomeEnvVar = "DARLING_HOME"

	// ManifestEnvVar overrides the manifest path.
	ManifestEnvVar = "DARLING_MANIFEST"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for the manifest (rw-r--r--).
	FilePerm = 0o644
)

// DefaultBaseDir returns the base directory below the given home directory.
// It joins home, .config and darling.
func DefaultBaseDir(home string) string {
	return filepath.Join(home, ".config", AppName)
}

// ManifestPath returns the manifest path inside baseDir.
func ManifestPath(baseDir string) string {
	return filepath.Join(baseDir, ManifestFileName)
}

// ConfigPath returns the config file path inside baseDir.
func ConfigPath(baseDir string) string {
	return filepath.Join(baseDir, ConfigFileName)
}

// LockPath returns the lock file path next to the manifest.
func LockPath(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), LockFileName)
}
