package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/darling/internal/adapters/backends" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/darling/internal/adapters/config"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/darling/internal/adapters/logger"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/darling/internal/adapters/shell"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/darling/internal/core/ports"
)

// NodeID is the unique identifier for the backend registry Graft node.
const NodeID graft.ID = "engine.registry"

func init() {
	graft.Register(graft.Node[*Registry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Registry, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}

			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			all, err := backends.FromSettings(settings, runner, log)
			if err != nil {
				return nil, err
			}

			r := New()
			for _, b := range all {
				if err := r.Register(b); err != nil {
					return nil, err
				}
			}
			return r, nil
		},
	})
}
