package config

// File represents the structure of the config.toml file.
type File struct {
	// Manifest overrides the manifest location. Relative paths are resolved
	// against the base directory and a leading "~/" against the home directory.
	Manifest string `toml:"manifest"`

	// Disable lists built-in backends that should not be registered.
	Disable []string `toml:"disable"`

	// Retries applies to built-in backends.
	Retries int `toml:"retries"`

	// Backends declares additional command backends.
	Backends []BackendDTO `toml:"backend"`
}

// BackendDTO represents a [[backend]] table.
type BackendDTO struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Install     []string `toml:"install"`
	Uninstall   []string `toml:"uninstall"`
	List        []string `toml:"list"`
	ListPattern string   `toml:"list_pattern"`
	PostInstall []string `toml:"post_install"`
	Retries     int      `toml:"retries"`
}
