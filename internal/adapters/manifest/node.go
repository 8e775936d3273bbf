package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/darling/internal/adapters/config"
	"go.trai.ch/darling/internal/core/ports"
)

// NodeID is the unique identifier for the manifest store Graft node.
const NodeID graft.ID = "adapter.manifest"

func init() {
	graft.Register(graft.Node[ports.ManifestStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.ManifestStore, error) {
			settings, err := graft.Dep[*config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(settings.ManifestPath), nil
		},
	})
}
