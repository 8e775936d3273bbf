// Package backends implements ports.Backend for package managers driven by
// external commands, both built in and declared in the user's config.
package backends

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/zerr"
)

const defaultBackoff = time.Second

// ListParser turns the output of a list command into installed packages.
type ListParser func(output []byte) ([]domain.InstalledPackage, error)

// Option configures a CommandBackend.
type Option func(*CommandBackend)

// WithParser replaces the list output parser.
func WithParser(p ListParser) Option {
	return func(b *CommandBackend) { b.parse = p }
}

// WithBackoff sets the base delay between retries. The n-th retry waits n times the base.
func WithBackoff(d time.Duration) Option {
	return func(b *CommandBackend) { b.backoff = d }
}

// CommandBackend drives a package manager through argv templates.
type CommandBackend struct {
	spec    domain.CommandSpec
	runner  ports.CommandRunner
	logger  ports.Logger
	parse   ListParser
	backoff time.Duration

	install   []*template.Template
	uninstall []*template.Template
}

// templateData is what argv templates are rendered with.
type templateData struct {
	Name       string
	Version    string
	Properties domain.Properties
}

// NewCommandBackend compiles spec into a backend. Backends with a post-install
// command additionally implement ports.PostInstaller.
func NewCommandBackend(
	spec domain.CommandSpec,
	runner ports.CommandRunner,
	logger ports.Logger,
	opts ...Option,
) (ports.Backend, error) {
	b := &CommandBackend{
		spec:    spec,
		runner:  runner,
		logger:  logger,
		backoff: defaultBackoff,
	}

	var err error
	if b.install, err = compile(spec.Name, "install", spec.Install); err != nil {
		return nil, err
	}
	if b.uninstall, err = compile(spec.Name, "uninstall", spec.Uninstall); err != nil {
		return nil, err
	}

	if spec.ListPattern != "" {
		parser, err := PatternParser(spec.ListPattern)
		if err != nil {
			return nil, zerr.With(err, "backend", spec.Name)
		}
		b.parse = parser
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.parse == nil {
		b.parse = NameParser
	}

	if len(spec.PostInstall) > 0 {
		return &postInstallBackend{CommandBackend: b}, nil
	}
	return b, nil
}

// Name returns the backend name.
func (b *CommandBackend) Name() string {
	return b.spec.Name
}

// Describe returns the backend descriptor.
func (b *CommandBackend) Describe() domain.BackendDescriptor {
	return domain.BackendDescriptor{
		Name:        b.spec.Name,
		Description: b.spec.Description,
		Source:      b.spec.Source,
	}
}

// Install runs the install command and then looks the package up in the list
// output to learn the version that was installed.
func (b *CommandBackend) Install(ctx context.Context, entry domain.Entry) (string, error) {
	argv, err := render(b.install, entry)
	if err != nil {
		return "", zerr.With(err, "backend", b.spec.Name)
	}

	if err := b.retry(ctx, "install "+entry.Name, argv); err != nil {
		return "", err
	}

	installed, err := b.ListExplicit(ctx)
	if err != nil {
		b.logger.Warn(fmt.Sprintf("could not determine installed version of %s/%s: %v", b.spec.Name, entry.Name, err))
		return "", nil
	}
	for _, pkg := range installed {
		if pkg.Name == entry.Name {
			return pkg.Version, nil
		}
	}

	b.logger.Debug(fmt.Sprintf("%s/%s is not listed as explicitly installed", b.spec.Name, entry.Name))
	return "", nil
}

// Uninstall runs the uninstall command.
func (b *CommandBackend) Uninstall(ctx context.Context, entry domain.Entry) error {
	argv, err := render(b.uninstall, entry)
	if err != nil {
		return zerr.With(err, "backend", b.spec.Name)
	}
	return b.retry(ctx, "uninstall "+entry.Name, argv)
}

// ListExplicit runs the list command and parses its output.
func (b *CommandBackend) ListExplicit(ctx context.Context) ([]domain.InstalledPackage, error) {
	out, err := b.runner.Output(ctx, b.spec.List)
	if err != nil {
		return nil, zerr.With(err, "backend", b.spec.Name)
	}

	pkgs, err := b.parse(out)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrOutputParseFailed.Error()), "backend", b.spec.Name)
	}
	return pkgs, nil
}

func (b *CommandBackend) retry(ctx context.Context, what string, argv []string) error {
	var err error
	for attempt := 0; attempt <= b.spec.Retries; attempt++ {
		if attempt > 0 {
			b.logger.Warn(fmt.Sprintf("retrying %s/%s (%d/%d)", b.spec.Name, what, attempt, b.spec.Retries))

			timer := time.NewTimer(time.Duration(attempt) * b.backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err = b.runner.Run(ctx, argv); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return zerr.With(err, "backend", b.spec.Name)
}

type postInstallBackend struct {
	*CommandBackend
}

// PostInstall runs the post-install command once after a batch of installs.
func (b *postInstallBackend) PostInstall(ctx context.Context) error {
	if err := b.runner.Run(ctx, b.spec.PostInstall); err != nil {
		return zerr.With(err, "backend", b.spec.Name)
	}
	return nil
}

func compile(backend, kind string, args []string) ([]*template.Template, error) {
	if len(args) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidBackendConfig, kind+" command is empty"), "backend", backend)
	}

	tmpls := make([]*template.Template, 0, len(args))
	for i, arg := range args {
		t, err := template.New(fmt.Sprintf("%s.%s[%d]", backend, kind, i)).Option("missingkey=zero").Parse(arg)
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrInvalidBackendConfig, err), "backend", backend)
		}
		tmpls = append(tmpls, t)
	}
	return tmpls, nil
}

// render expands the templates for entry. Arguments that render empty are dropped,
// so optional flags can be written as {{if .Version}}...{{end}}.
func render(tmpls []*template.Template, entry domain.Entry) ([]string, error) {
	data := templateData{
		Name:       entry.Name,
		Properties: entry.Properties.Clone(),
	}
	if v := entry.Version(); v != domain.LatestVersion {
		data.Version = v
	}

	argv := make([]string, 0, len(tmpls))
	var buf bytes.Buffer
	for _, t := range tmpls {
		buf.Reset()
		if err := t.Execute(&buf, data); err != nil {
			return nil, zerr.Wrap(err, "render command")
		}
		if buf.Len() > 0 {
			argv = append(argv, buf.String())
		}
	}
	return argv, nil
}
