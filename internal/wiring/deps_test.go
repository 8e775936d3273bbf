package wiring_test

import (
	"testing"

	"github.com/grindlemire/graft"
)

// TestGraftDependencies checks that every node declaring a dependency uses it
// and every dependency a node uses is declared.
func TestGraftDependencies(t *testing.T) {
	graft.AssertDepsValid(t, "../../internal")
}
