// Package cli provides the command-line interface for the funnel application.
package cli

import (
	"github.com/law-makers/funnel/internal/app"
	"github.com/spf13/cobra"
)

// SetApp stores the Application for commands to access.
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetApp retrieves the Application.
func GetApp() *app.Application {
	return globalApp
}

// GetAppFromCmd retrieves the Application for a command.
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	return globalApp
}

// Global reference; commands run one at a time so a single slot suffices.
var globalApp *app.Application
