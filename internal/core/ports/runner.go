package ports

import "context"

// CommandRunner executes external package manager commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// Run executes the command attached to the user's terminal so that
	// interactive prompts (sudo, confirmations) keep working.
	Run(ctx context.Context, argv []string) error

	// Output executes the command and returns its captured standard output.
	Output(ctx context.Context, argv []string) ([]byte, error)
}
