// internal/cli/sessions.go
package cli

import (
	"fmt"
	"time"

	"github.com/law-makers/funnel/internal/auth"
	"github.com/spf13/cobra"
)

var importDomain string

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved provider login sessions",
	Long: `List, import, and delete saved provider login sessions.

Sessions are stored securely in your OS keyring (with a file fallback for
headless environments) and contain the cookies a job board set after login.`,
	Example: `  # List all saved sessions
  $ funnel sessions list

  # Import cookies exported from browser devtools
  $ funnel sessions import glassdoor --domain glassdoor.ca cookies.json

  # Delete a session
  $ funnel sessions delete glassdoor`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	RunE:  runSessionsList,
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import <provider> <cookie-file>",
	Short: "Import browser cookies as a provider session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionsImport,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsImportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsImportCmd.Flags().StringVar(&importDomain, "domain", "", "Domain the cookies belong to")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	sessions, err := auth.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("\nNo saved sessions found.")
		fmt.Println("\nCreate one with:")
		fmt.Println("  funnel sessions import <provider> <cookie-file>")
		fmt.Println()
		return nil
	}

	fmt.Printf("\nSaved Sessions (%d)\n\n", len(sessions))
	for i, name := range sessions {
		fmt.Printf("%d. %s\n", i+1, name)

		session, err := auth.Load(name)
		if err != nil {
			fmt.Printf("   error loading: %v\n", err)
			continue
		}

		fmt.Printf("   Domain: %s\n", session.Domain)
		fmt.Printf("   Cookies: %d\n", len(session.Cookies))
		fmt.Printf("   Created: %s\n", session.CreatedAt.Format(time.RFC1123))

		if !session.ExpiresAt.IsZero() {
			if time.Now().After(session.ExpiresAt) {
				fmt.Printf("   Status: expired (%s ago)\n", time.Since(session.ExpiresAt).Round(time.Hour))
			} else {
				fmt.Printf("   Expires: %s\n", session.ExpiresAt.Format(time.RFC1123))
			}
		}

		if i < len(sessions)-1 {
			fmt.Println()
		}
	}

	fmt.Println()
	return nil
}

func runSessionsImport(cmd *cobra.Command, args []string) error {
	providerName, cookieFile := args[0], args[1]

	session, err := auth.ImportCookies(providerName, importDomain, cookieFile)
	if err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}

	fmt.Printf("\nSession '%s' saved (%d cookies).\n", providerName, len(session.Cookies))
	fmt.Printf("Use it with: funnel scrape --session %s ...\n\n", providerName)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	// Confirm deletion
	fmt.Printf("\nDelete session '%s'? [y/N]: ", name)
	var confirm string
	fmt.Scanln(&confirm)

	if confirm != "y" && confirm != "Y" {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := auth.Delete(name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Printf("\nSession '%s' deleted.\n\n", name)
	return nil
}
