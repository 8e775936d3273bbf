// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/darling/internal/adapters/config"
	_ "go.trai.ch/darling/internal/adapters/linear"
	_ "go.trai.ch/darling/internal/adapters/lock"
	_ "go.trai.ch/darling/internal/adapters/logger"
	_ "go.trai.ch/darling/internal/adapters/manifest"
	_ "go.trai.ch/darling/internal/adapters/shell"
	_ "go.trai.ch/darling/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/darling/internal/app"
	_ "go.trai.ch/darling/internal/engine/reconciler"
	_ "go.trai.ch/darling/internal/engine/registry"
)
