// Package app implements the application layer for darling.
package app

import (
	"context"
	"errors"

	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/darling/internal/engine/reconciler"
)

// Registry is the read side of the backend registry.
type Registry interface {
	Descriptors() []domain.BackendDescriptor
}

// OutputOptions controls how an invocation reports progress.
type OutputOptions struct {
	JSON    bool
	Verbose bool
}

type outputSwitch interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// Progress is a progress display that can be switched off.
type Progress interface {
	SetEnabled(enabled bool)
}

// App represents the main application logic.
type App struct {
	store      ports.ManifestStore
	locker     ports.ManifestLocker
	reconciler *reconciler.Reconciler
	registry   Registry
	logger     ports.Logger
	progress   Progress
}

// New creates a new App instance.
func New(
	store ports.ManifestStore,
	locker ports.ManifestLocker,
	rec *reconciler.Reconciler,
	reg Registry,
	log ports.Logger,
) *App {
	return &App{
		store:      store,
		locker:     locker,
		reconciler: rec,
		registry:   reg,
		logger:     log,
	}
}

// WithProgress lets ConfigureOutput silence the progress renderer.
func (a *App) WithProgress(p Progress) *App {
	a.progress = p
	return a
}

// ConfigureOutput applies the global output flags.
func (a *App) ConfigureOutput(opts OutputOptions) {
	if l, ok := a.logger.(outputSwitch); ok {
		l.SetJSON(opts.JSON)
		l.SetVerbose(opts.Verbose)
	}
	if a.progress != nil {
		a.progress.SetEnabled(!opts.JSON)
	}
}

// ManifestPath returns the location of the manifest file.
func (a *App) ManifestPath() string {
	return a.store.Path()
}

// Install installs a package and records it in the manifest.
func (a *App) Install(ctx context.Context, backend, name string, props domain.Properties) (domain.Entry, error) {
	var entry domain.Entry
	err := a.withManifest(ctx, func(m ports.Manifest) error {
		var err error
		entry, err = a.reconciler.Install(ctx, m, backend, domain.NewEntry(name, props))
		return err
	})
	return entry, err
}

// Remove uninstalls a package and drops it from the manifest.
func (a *App) Remove(ctx context.Context, backend, name string) (bool, error) {
	var tracked bool
	err := a.withManifest(ctx, func(m ports.Manifest) error {
		var err error
		tracked, err = a.reconciler.Remove(ctx, m, backend, name)
		return err
	})
	return tracked, err
}

// Rebuild installs everything the manifest lists that is missing on the system.
func (a *App) Rebuild(ctx context.Context, backends []string) ([]reconciler.RebuildReport, error) {
	var reports []reconciler.RebuildReport
	err := a.withManifest(ctx, func(m ports.Manifest) error {
		var err error
		reports, err = a.reconciler.Rebuild(ctx, m, backends...)
		return err
	})
	return reports, err
}

// ImportInstalled records the packages a backend reports as explicitly installed.
func (a *App) ImportInstalled(ctx context.Context, backend string) ([]domain.Entry, error) {
	var imported []domain.Entry
	err := a.withManifest(ctx, func(m ports.Manifest) error {
		var err error
		imported, err = a.reconciler.ImportInstalled(ctx, m, backend)
		return err
	})
	return imported, err
}

// Status reports the drift between the manifest and the system. It takes no lock.
func (a *App) Status(ctx context.Context, backends []string) ([]domain.Drift, error) {
	m, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	return a.reconciler.Status(ctx, m, backends...)
}

// Backends lists the registered backends.
func (a *App) Backends() []domain.BackendDescriptor {
	return a.registry.Descriptors()
}

// withManifest runs fn on a freshly loaded manifest while holding the manifest lock.
func (a *App) withManifest(ctx context.Context, fn func(ports.Manifest) error) (err error) {
	unlock, err := a.locker.Lock(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := unlock(); uerr != nil {
			err = errors.Join(err, uerr)
		}
	}()

	m, err := a.store.Load()
	if err != nil {
		return err
	}
	return fn(m)
}
