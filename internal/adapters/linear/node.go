package linear

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the progress renderer Graft node.
const NodeID graft.ID = "adapter.renderer"

func init() {
	graft.Register(graft.Node[*Renderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Renderer, error) {
			return NewRenderer(nil), nil
		},
	})
}
