package ports

import "context"

// ManifestLocker provides mutual exclusion around the load, mutate and persist
// sequence so that two invocations cannot clobber each other's manifest writes.
//
//go:generate go run go.uber.org/mock/mockgen -source=locker.go -destination=mocks/mock_locker.go -package=mocks
type ManifestLocker interface {
	// Lock blocks until the lock is held or ctx is done. The returned function releases it.
	Lock(ctx context.Context) (unlock func() error, err error)
}
