package reconciler

import (
	"context"
	"runtime"

	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Status compares manifest sections with what their backends report as
// installed. Backends are queried concurrently; the manifest is not modified.
// Without arguments every manifest section is checked.
func (r *Reconciler) Status(ctx context.Context, m ports.Manifest, only ...string) (drifts []domain.Drift, err error) {
	ctx, span := r.tracer.Start(ctx, "status")
	defer func() { finish(span, err) }()

	names := only
	if len(names) == 0 {
		names = m.Sections()
	}

	targets := make([]target, 0, len(names))
	for _, name := range names {
		b, err := r.backends.Resolve(name)
		if err != nil {
			return nil, err
		}
		entries, err := m.Section(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{name: name, backend: b, entries: entries})
	}

	drifts = make([]domain.Drift, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, t := range targets {
		g.Go(func() error {
			installed, err := r.list(gctx, t.backend)
			if err != nil {
				return err
			}
			drifts[i] = drift(t.name, t.entries, installed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return drifts, nil
}

func drift(backend string, entries []domain.Entry, installed []domain.InstalledPackage) domain.Drift {
	d := domain.Drift{Backend: backend}

	present := make(map[string]bool, len(installed))
	for _, pkg := range installed {
		present[pkg.Name] = true
	}
	tracked := make(map[string]bool, len(entries))
	for _, e := range entries {
		tracked[e.Name] = true
		if !present[e.Name] {
			d.Missing = append(d.Missing, e.Name)
		}
	}
	for _, pkg := range installed {
		if !tracked[pkg.Name] {
			d.Untracked = append(d.Untracked, pkg)
		}
	}
	return d
}
