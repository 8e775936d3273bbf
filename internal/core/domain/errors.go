package domain

import "go.trai.ch/zerr"

var (
	// ErrBackendNotFound is returned when no backend is registered under the requested name.
	ErrBackendNotFound = zerr.New("backend not found")

	// ErrBackendExists is returned when a backend name is registered twice.
	ErrBackendExists = zerr.New("backend already registered")

	// ErrInvalidBackendName is returned when a backend name cannot be used as a manifest section key.
	ErrInvalidBackendName = zerr.New("invalid backend name")

	// ErrCorruptManifest is returned when the manifest or one of its sections has an unexpected shape.
	ErrCorruptManifest = zerr.New("corrupted manifest")

	// ErrBackendExecution is returned when a backend fails to install, uninstall or list packages.
	ErrBackendExecution = zerr.New("backend execution failed")

	// ErrManifestOutOfSync is returned when the manifest could not be written after the
	// real system was already changed. The system and the manifest now disagree.
	ErrManifestOutOfSync = zerr.New("manifest is out of sync with the system")

	// ErrSectionNotFound is returned when a backend has no section in the manifest.
	ErrSectionNotFound = zerr.New("manifest section not found")

	// ErrEntryNotFound is returned when a package has no entry in a manifest section.
	ErrEntryNotFound = zerr.New("manifest entry not found")

	// ErrInvalidPackageName is returned for empty package names.
	ErrInvalidPackageName = zerr.New("invalid package name")

	// ErrManifestReadFailed is returned when the manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestCreateFailed is returned when a missing manifest cannot be created.
	ErrManifestCreateFailed = zerr.New("failed to create manifest")

	// ErrManifestMarshalFailed is returned when the manifest cannot be serialized.
	ErrManifestMarshalFailed = zerr.New("failed to marshal manifest")

	// ErrManifestWriteFailed is returned when the manifest cannot be written.
	ErrManifestWriteFailed = zerr.New("failed to write manifest")

	// ErrManifestChanged is returned when the manifest file changed on disk since it was loaded.
	ErrManifestChanged = zerr.New("manifest changed on disk since it was loaded")

	// ErrManifestLocked is returned when another invocation holds the manifest lock.
	ErrManifestLocked = zerr.New("manifest is locked by another invocation")

	// ErrLockFailed is returned when the manifest lock cannot be acquired or released.
	ErrLockFailed = zerr.New("failed to lock manifest")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidBackendConfig is returned when a custom backend definition is incomplete.
	ErrInvalidBackendConfig = zerr.New("invalid backend definition")

	// ErrHomeNotFound is returned when the per-user base directory cannot be determined.
	ErrHomeNotFound = zerr.New("could not determine home directory")

	// ErrCommandFailed is returned when an external command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrOutputParseFailed is returned when the output of a list command cannot be parsed.
	ErrOutputParseFailed = zerr.New("failed to parse command output")
)
