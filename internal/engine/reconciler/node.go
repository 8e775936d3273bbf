package reconciler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/darling/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/darling/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/darling/internal/engine/registry"
)

// NodeID is the unique identifier for the reconciler Graft node.
const NodeID graft.ID = "engine.reconciler"

func init() {
	graft.Register(graft.Node[*Reconciler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			registry.NodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Reconciler, error) {
			reg, err := graft.Dep[*registry.Registry](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(reg, tracer, log), nil
		},
	})
}
