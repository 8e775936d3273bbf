// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/darling/internal/core/domain"
)

// Backend is the capability implemented once per package ecosystem.
//
// Implementations change or query the real system only. They never touch the
// manifest; keeping it consistent is the reconciler's job.
//
//go:generate go run go.uber.org/mock/mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks
type Backend interface {
	// Name returns the stable identifier, used as CLI selector and manifest section key.
	Name() string

	// Install installs the package described by entry.
	//
	// If the backend can tell which concrete version ended up installed it returns it,
	// otherwise it returns an empty string and the caller records "latest".
	Install(ctx context.Context, entry domain.Entry) (version string, err error)

	// Uninstall removes the package from the system.
	Uninstall(ctx context.Context, entry domain.Entry) error

	// ListExplicit returns the packages installed by explicit request, excluding
	// packages that are only present as dependencies of others.
	ListExplicit(ctx context.Context) ([]domain.InstalledPackage, error)
}

// PostInstaller is implemented by backends that need a finalization step after a batch
// of installs, for example a rebuild. It runs once per install operation.
type PostInstaller interface {
	PostInstall(ctx context.Context) error
}

// Describer is implemented by backends that can describe themselves for listings.
type Describer interface {
	Describe() domain.BackendDescriptor
}
