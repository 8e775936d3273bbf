package ports

import "time"

// Renderer presents the progress of an invocation to the user.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnStepStart is called when a step begins.
	// parentID is empty for the invocation's root step.
	OnStepStart(spanID, parentID, name string, startTime time.Time)

	// OnStepComplete is called when a step ends. err is nil on success.
	OnStepComplete(spanID string, endTime time.Time, err error)
}
