// Package reconciler applies install, remove, rebuild and import operations to a
// manifest and the backends it names.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/zerr"
)

// BackendResolver looks up backends by name.
type BackendResolver interface {
	Resolve(name string) (ports.Backend, error)
}

// Reconciler orders backend side effects and manifest writes so that the
// manifest never records a change the backend has not confirmed.
type Reconciler struct {
	backends BackendResolver
	tracer   ports.Tracer
	logger   ports.Logger
}

// New creates a Reconciler.
func New(backends BackendResolver, tracer ports.Tracer, logger ports.Logger) *Reconciler {
	return &Reconciler{
		backends: backends,
		tracer:   tracer,
		logger:   logger,
	}
}

// RebuildReport summarizes the rebuild of one backend section.
type RebuildReport struct {
	Backend   string
	Installed []string
	Skipped   []string
}

// Install installs entry with the named backend and records it in the manifest.
// The returned entry is the one that was persisted.
func (r *Reconciler) Install(
	ctx context.Context,
	m ports.Manifest,
	backend string,
	entry domain.Entry,
) (result domain.Entry, err error) {
	ctx, span := r.tracer.Start(ctx, "install")
	defer func() { finish(span, err) }()
	span.SetAttribute("darling.backend", backend)
	span.SetAttribute("darling.package", entry.Name)

	b, err := r.prepare(m, backend)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := validatePackage(entry.Name); err != nil {
		return domain.Entry{}, err
	}

	var version string
	err = r.step(ctx, fmt.Sprintf("install %s/%s", backend, entry.Name), func(ctx context.Context) error {
		var err error
		version, err = b.Install(ctx, entry)
		return err
	})
	if err != nil {
		return domain.Entry{}, executionError("install "+entry.Name, backend, err)
	}

	if err := r.postInstall(ctx, b); err != nil {
		return domain.Entry{}, err
	}

	result = entry.WithVersion(version)
	if err := r.commit(ctx, m, true, func() error { return m.Upsert(backend, result) }); err != nil {
		return domain.Entry{}, err
	}
	return result, nil
}

// Remove uninstalls the named package and drops it from the manifest. The
// uninstall runs even when the manifest does not track the package; in that
// case the manifest is left untouched and tracked is false.
func (r *Reconciler) Remove(ctx context.Context, m ports.Manifest, backend, name string) (tracked bool, err error) {
	ctx, span := r.tracer.Start(ctx, "remove")
	defer func() { finish(span, err) }()
	span.SetAttribute("darling.backend", backend)
	span.SetAttribute("darling.package", name)

	b, err := r.prepare(m, backend)
	if err != nil {
		return false, err
	}
	if err := validatePackage(name); err != nil {
		return false, err
	}

	entries, err := m.Section(backend)
	if err != nil {
		return false, err
	}
	entry := domain.NewEntry(name, nil)
	if i := slices.IndexFunc(entries, func(e domain.Entry) bool { return e.Name == name }); i >= 0 {
		entry = entries[i]
		tracked = true
	}

	err = r.step(ctx, fmt.Sprintf("uninstall %s/%s", backend, name), func(ctx context.Context) error {
		return b.Uninstall(ctx, entry)
	})
	if err != nil {
		return tracked, executionError("uninstall "+name, backend, err)
	}

	if !tracked {
		r.logger.Info(fmt.Sprintf("%s is not tracked in the %s section, manifest unchanged", name, backend))
		return false, nil
	}

	if err := r.commit(ctx, m, true, func() error { return m.Remove(backend, name) }); err != nil {
		return true, err
	}
	return true, nil
}

// Rebuild installs every manifest entry its backend does not report as
// installed. Sections are processed in manifest order, optionally restricted
// to the named backends. A backend's post-install hook runs once after its
// section, and only when something was installed. The first failure aborts the
// rebuild. The manifest is never written.
func (r *Reconciler) Rebuild(ctx context.Context, m ports.Manifest, only ...string) (reports []RebuildReport, err error) {
	ctx, span := r.tracer.Start(ctx, "rebuild")
	defer func() { finish(span, err) }()

	targets, err := r.plan(m, only)
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		report, err := r.rebuildSection(ctx, t)
		if len(report.Installed) > 0 || len(report.Skipped) > 0 {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// ImportInstalled records every package the backend reports as explicitly
// installed, with the reported version as its only property. Each entry is
// persisted on its own; a failure keeps the entries imported before it.
func (r *Reconciler) ImportInstalled(ctx context.Context, m ports.Manifest, backend string) (imported []domain.Entry, err error) {
	ctx, span := r.tracer.Start(ctx, "import-installed")
	defer func() { finish(span, err) }()
	span.SetAttribute("darling.backend", backend)

	b, err := r.prepare(m, backend)
	if err != nil {
		return nil, err
	}

	installed, err := r.list(ctx, b)
	if err != nil {
		return nil, err
	}

	entries, err := m.Section(backend)
	if err != nil {
		return nil, err
	}
	current := make(map[string]domain.Properties, len(entries))
	for _, e := range entries {
		current[e.Name] = e.Properties
	}

	for _, pkg := range installed {
		entry := domain.NewEntry(pkg.Name, domain.Properties{domain.VersionKey: pkg.Version}).WithVersion("")
		if props, ok := current[pkg.Name]; ok && maps.Equal(props, entry.Properties) {
			r.logger.Debug(fmt.Sprintf("%s/%s is already recorded", backend, pkg.Name))
			continue
		}

		if err := r.commit(ctx, m, false, func() error { return m.Upsert(backend, entry) }); err != nil {
			return imported, zerr.With(err, "package", pkg.Name)
		}
		imported = append(imported, entry)
	}
	return imported, nil
}

// prepare resolves the backend and makes sure its manifest section is usable
// before any side effect happens.
func (r *Reconciler) prepare(m ports.Manifest, backend string) (ports.Backend, error) {
	b, err := r.backends.Resolve(backend)
	if err != nil {
		return nil, err
	}
	if _, err := m.Section(backend); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Reconciler) list(ctx context.Context, b ports.Backend) ([]domain.InstalledPackage, error) {
	var installed []domain.InstalledPackage
	err := r.step(ctx, "list "+b.Name(), func(ctx context.Context) error {
		var err error
		installed, err = b.ListExplicit(ctx)
		return err
	})
	if err != nil {
		return nil, executionError("list installed packages", b.Name(), err)
	}
	return installed, nil
}

func (r *Reconciler) postInstall(ctx context.Context, b ports.Backend) error {
	post, ok := b.(ports.PostInstaller)
	if !ok {
		return nil
	}
	if err := r.step(ctx, "post-install "+b.Name(), post.PostInstall); err != nil {
		return executionError("post-install", b.Name(), err)
	}
	return nil
}

// commit applies mutate to the manifest and persists it. A failure after the
// real system was changed is reported as ErrManifestOutOfSync.
func (r *Reconciler) commit(ctx context.Context, m ports.Manifest, changedSystem bool, mutate func() error) error {
	err := r.step(ctx, "persist manifest", func(context.Context) error {
		if err := mutate(); err != nil {
			return err
		}
		return m.Persist()
	})
	if err != nil && changedSystem {
		return errors.Join(domain.ErrManifestOutOfSync, err)
	}
	return err
}

// step runs fn inside a child span.
func (r *Reconciler) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func finish(span ports.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

func executionError(op, backend string, err error) error {
	return errors.Join(domain.ErrBackendExecution, zerr.With(zerr.Wrap(err, op), "backend", backend))
}

func validatePackage(name string) error {
	if name == "" {
		return zerr.Wrap(domain.ErrInvalidPackageName, "package name must not be empty")
	}
	return nil
}
