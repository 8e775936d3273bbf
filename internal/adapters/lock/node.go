package lock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/darling/internal/adapters/logger"
	"go.trai.ch/darling/internal/adapters/manifest"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
)

// NodeID is the unique identifier for the manifest lock Graft node.
const NodeID graft.ID = "adapter.lock"

func init() {
	graft.Register(graft.Node[ports.ManifestLocker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{manifest.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ManifestLocker, error) {
			// The store has already followed a symlinked manifest; the lock sits next to the real file.
			store, err := graft.Dep[ports.ManifestStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewFileLocker(domain.LockPath(store.Path()), log), nil
		},
	})
}
