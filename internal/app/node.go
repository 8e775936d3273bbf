package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/darling/internal/adapters/linear"   //nolint:depguard // Wired in app layer
	"go.trai.ch/darling/internal/adapters/lock"     //nolint:depguard // Wired in app layer
	"go.trai.ch/darling/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/darling/internal/adapters/manifest" //nolint:depguard // Wired in app layer
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/darling/internal/engine/reconciler"
	"go.trai.ch/darling/internal/engine/registry"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles what the command line needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			lock.NodeID,
			reconciler.NodeID,
			registry.NodeID,
			logger.NodeID,
			linear.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	store, err := graft.Dep[ports.ManifestStore](ctx)
	if err != nil {
		return nil, err
	}

	locker, err := graft.Dep[ports.ManifestLocker](ctx)
	if err != nil {
		return nil, err
	}

	rec, err := graft.Dep[*reconciler.Reconciler](ctx)
	if err != nil {
		return nil, err
	}

	reg, err := graft.Dep[*registry.Registry](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	renderer, err := graft.Dep[*linear.Renderer](ctx)
	if err != nil {
		return nil, err
	}

	return New(store, locker, rec, reg, log).WithProgress(renderer), nil
}
