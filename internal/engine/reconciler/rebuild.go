package reconciler

import (
	"context"
	"fmt"

	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
)

// target is a manifest section paired with the backend that owns it.
type target struct {
	name    string
	backend ports.Backend
	entries []domain.Entry
}

// plan resolves every section taking part in a rebuild. Nothing runs until
// all sections are known to be readable and backed by a registered backend.
func (r *Reconciler) plan(m ports.Manifest, only []string) ([]target, error) {
	selected := make(map[string]bool, len(only))
	for _, name := range only {
		if _, err := r.backends.Resolve(name); err != nil {
			return nil, err
		}
		selected[name] = true
	}

	var targets []target
	for _, name := range m.Sections() {
		if len(only) > 0 && !selected[name] {
			continue
		}

		b, err := r.backends.Resolve(name)
		if err != nil {
			return nil, err
		}
		entries, err := m.Section(name)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			continue
		}
		targets = append(targets, target{name: name, backend: b, entries: entries})
	}
	return targets, nil
}

func (r *Reconciler) rebuildSection(ctx context.Context, t target) (RebuildReport, error) {
	report := RebuildReport{Backend: t.name}

	installed, err := r.list(ctx, t.backend)
	if err != nil {
		return report, err
	}
	present := make(map[string]bool, len(installed))
	for _, pkg := range installed {
		present[pkg.Name] = true
	}

	for _, entry := range t.entries {
		if present[entry.Name] {
			r.logger.Debug(fmt.Sprintf("%s/%s is already installed, skipping", t.name, entry.Name))
			report.Skipped = append(report.Skipped, entry.Name)
			continue
		}

		err := r.step(ctx, fmt.Sprintf("install %s/%s", t.name, entry.Name), func(ctx context.Context) error {
			_, err := t.backend.Install(ctx, entry)
			return err
		})
		if err != nil {
			return report, executionError("install "+entry.Name, t.name, err)
		}
		report.Installed = append(report.Installed, entry.Name)
	}

	if len(report.Installed) > 0 {
		if err := r.postInstall(ctx, t.backend); err != nil {
			return report, err
		}
	}
	return report, nil
}
