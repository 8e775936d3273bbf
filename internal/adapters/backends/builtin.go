package backends

import (
	"go.trai.ch/darling/internal/adapters/config"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
)

// Builtin is a backend compiled into darling.
type Builtin struct {
	Spec   domain.CommandSpec
	Parser ListParser
}

// Builtins returns the built-in backend definitions.
func Builtins() []Builtin {
	return []Builtin{
		{
			Spec: domain.CommandSpec{
				Name:        "pacman",
				Description: "Arch Linux packages (pacman)",
				Install:     []string{"sudo", "pacman", "-S", "--needed", "--noconfirm", "{{.Name}}"},
				Uninstall:   []string{"sudo", "pacman", "-Rns", "--noconfirm", "{{.Name}}"},
				List:        []string{"pacman", "-Qe"},
				ListPattern: `^(?P<name>\S+)\s+(?P<version>\S+)$`,
			},
		},
		{
			Spec: domain.CommandSpec{
				Name:        "npm",
				Description: "global npm packages",
				Install:     []string{"npm", "install", "--global", "{{.Name}}{{if .Version}}@{{.Version}}{{end}}"},
				Uninstall:   []string{"npm", "uninstall", "--global", "{{.Name}}"},
				List:        []string{"npm", "ls", "--global", "--depth=0", "--json"},
			},
			Parser: ParseNPM,
		},
		{
			Spec: domain.CommandSpec{
				Name:        "cargo",
				Description: "Rust binaries installed with cargo install",
				Install:     []string{"cargo", "install", "{{.Name}}", "{{if .Version}}--version={{.Version}}{{end}}"},
				Uninstall:   []string{"cargo", "uninstall", "{{.Name}}"},
				List:        []string{"cargo", "install", "--list"},
				ListPattern: `^(?P<name>\S+) v(?P<version>\S+?)(?: \(.*\))?:$`,
			},
		},
		{
			Spec: domain.CommandSpec{
				Name:        "vscode",
				Description: "Visual Studio Code extensions",
				Install:     []string{"code", "--install-extension", "{{.Name}}{{if .Version}}@{{.Version}}{{end}}"},
				Uninstall:   []string{"code", "--uninstall-extension", "{{.Name}}"},
				List:        []string{"code", "--list-extensions", "--show-versions"},
				ListPattern: `^(?P<name>[^@\s]+)@(?P<version>\S+)$`,
			},
		},
		{
			Spec: domain.CommandSpec{
				Name:        "pip",
				Description: "Python packages installed for the current user",
				Install:     []string{"pip", "install", "--user", "{{.Name}}{{if .Version}}=={{.Version}}{{end}}"},
				Uninstall:   []string{"pip", "uninstall", "--yes", "{{.Name}}"},
				List:        []string{"pip", "list", "--user", "--not-required", "--format=json"},
			},
			Parser: ParsePip,
		},
		{
			Spec: domain.CommandSpec{
				Name:        "nix",
				Description: "packages in the default nix profile",
				Install: []string{
					"nix", "profile", "install",
					"{{if .Properties.flake}}{{.Properties.flake}}{{else}}nixpkgs#{{.Name}}{{end}}",
				},
				Uninstall: []string{"nix", "profile", "remove", "{{.Name}}"},
				List:      []string{"nix", "profile", "list", "--json"},
			},
			Parser: ParseNixProfile,
		},
	}
}

// FromSettings builds the enabled built-in backends followed by the command
// backends declared in the config file.
func FromSettings(settings *config.Settings, runner ports.CommandRunner, logger ports.Logger) ([]ports.Backend, error) {
	var out []ports.Backend

	for _, builtin := range Builtins() {
		if settings.IsDisabled(builtin.Spec.Name) {
			continue
		}

		spec := builtin.Spec
		spec.Source = domain.SourceBuiltin
		spec.Retries = settings.Retries

		var opts []Option
		if builtin.Parser != nil {
			opts = append(opts, WithParser(builtin.Parser))
		}

		b, err := NewCommandBackend(spec, runner, logger, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	for _, spec := range settings.Backends {
		b, err := NewCommandBackend(spec, runner, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	return out, nil
}
