// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
)

// Executor runs external tools such as git and cmake.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run executes the command and waits for it to finish.
	//
	// Output is streamed to the telemetry vertex on ctx, if any. A non-zero exit
	// returns a *domain.CommandError carrying the tail of the combined output.
	Run(ctx context.Context, cmd domain.Command) error

	// Output executes the command and returns its standard output with
	// surrounding whitespace removed.
	Output(ctx context.Context, cmd domain.Command) (string, error)
}
