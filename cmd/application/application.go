// Package application provides the application interface for bibmerge commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            bm, err := app.Bibmerge(bibmerge.WithStrict(true))
//	            if err != nil {
//	                return err
//	            }
//	            // ... use bm
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    LoggerFunc: func() *zerolog.Logger {
//	        logger := zerolog.Nop()
//	        return &logger
//	    },
//	}
//	cmd := merge.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/bibmerge"
)

// Application provides the application interface that commands need.
// The App struct from cmd/bibmerge/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Bibmerge returns a client configured from the config file and
	// environment, with opts applied on top. Command flags are passed as
	// opts so they take precedence.
	Bibmerge(opts ...bibmerge.Option) (bibmerge.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured report format (table, json, yaml, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
