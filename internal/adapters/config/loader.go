// Package config resolves the base directory, manifest location and user
// configuration for darling.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/zerr"
)

// Settings is the resolved configuration of one invocation.
type Settings struct {
	BaseDir      string
	ManifestPath string
	ConfigPath   string

	// Disabled lists built-in backends that must not be registered.
	Disabled []string

	// Retries applies to built-in backends.
	Retries int

	// Backends are the command backends declared in the config file.
	Backends []domain.CommandSpec
}

// IsDisabled reports whether the named built-in backend is disabled.
func (s *Settings) IsDisabled(name string) bool {
	for _, d := range s.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// Loader reads config.toml and the environment.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load resolves the settings. A missing config file yields defaults.
func (l *Loader) Load() (*Settings, error) {
	home, _ := os.UserHomeDir()

	baseDir := os.Getenv(domain.HomeEnvVar)
	if baseDir == "" {
		if home == "" {
			return nil, zerr.Wrap(domain.ErrHomeNotFound, "set $HOME or $"+domain.HomeEnvVar)
		}
		baseDir = domain.DefaultBaseDir(home)
	}

	settings := &Settings{
		BaseDir:      baseDir,
		ConfigPath:   domain.ConfigPath(baseDir),
		ManifestPath: domain.ManifestPath(baseDir),
	}

	file, err := l.readFile(settings.ConfigPath)
	if err != nil {
		return nil, err
	}

	if file.Manifest != "" {
		settings.ManifestPath = expandPath(file.Manifest, baseDir, home)
	}
	if env := os.Getenv(domain.ManifestEnvVar); env != "" {
		settings.ManifestPath = expandPath(env, baseDir, home)
	}

	if file.Retries < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidBackendConfig, "retries must not be negative"), "path", settings.ConfigPath)
	}
	settings.Retries = file.Retries
	settings.Disabled = file.Disable

	seen := make(map[string]bool, len(file.Backends))
	for i := range file.Backends {
		spec, err := toSpec(&file.Backends[i], settings.ConfigPath)
		if err != nil {
			return nil, zerr.With(err, "path", settings.ConfigPath)
		}
		if seen[spec.Name] {
			return nil, zerr.With(zerr.Wrap(domain.ErrBackendExists, spec.Name), "path", settings.ConfigPath)
		}
		seen[spec.Name] = true
		settings.Backends = append(settings.Backends, spec)
	}

	return settings, nil
}

func (l *Loader) readFile(path string) (*File, error) {
	var file File

	md, err := toml.DecodeFile(path, &file)
	if errors.Is(err, fs.ErrNotExist) {
		return &File{}, nil
	}
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	for _, key := range md.Undecoded() {
		l.Logger.Warn(fmt.Sprintf("unknown key %q in %s", key.String(), path))
	}

	return &file, nil
}

func toSpec(dto *BackendDTO, source string) (domain.CommandSpec, error) {
	if !domain.ValidBackendName(dto.Name) {
		return domain.CommandSpec{}, zerr.With(zerr.Wrap(domain.ErrInvalidBackendName, "invalid [[backend]] name"), "backend", dto.Name)
	}

	invalid := func(msg string) error {
		return zerr.With(zerr.Wrap(domain.ErrInvalidBackendConfig, msg), "backend", dto.Name)
	}

	switch {
	case len(dto.Install) == 0:
		return domain.CommandSpec{}, invalid("install command is required")
	case len(dto.Uninstall) == 0:
		return domain.CommandSpec{}, invalid("uninstall command is required")
	case len(dto.List) == 0:
		return domain.CommandSpec{}, invalid("list command is required")
	case dto.Retries < 0:
		return domain.CommandSpec{}, invalid("retries must not be negative")
	}

	if dto.ListPattern != "" {
		re, err := regexp.Compile(dto.ListPattern)
		if err != nil {
			return domain.CommandSpec{}, zerr.With(zerr.Wrap(err, domain.ErrInvalidBackendConfig.Error()), "backend", dto.Name)
		}
		if re.SubexpIndex("name") < 0 {
			return domain.CommandSpec{}, invalid(`list_pattern must define a "name" group`)
		}
	}

	description := dto.Description
	if description == "" {
		description = "custom command backend"
	}

	return domain.CommandSpec{
		Name:        dto.Name,
		Description: description,
		Source:      source,
		Install:     dto.Install,
		Uninstall:   dto.Uninstall,
		List:        dto.List,
		PostInstall: dto.PostInstall,
		ListPattern: dto.ListPattern,
		Retries:     dto.Retries,
	}, nil
}

func expandPath(path, baseDir, home string) string {
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	case filepath.IsAbs(path):
		return filepath.Clean(path)
	default:
		return filepath.Join(baseDir, path)
	}
}
