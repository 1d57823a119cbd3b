package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fschmidt/virtualcv/pkg/session"
)

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate against the CV API",
		Long: `Log in to the CV API to edit nodes from the command line.

Login is whitelist-based: the server only issues sessions for configured
email addresses. Your session is stored in ~/.config/virtualcv/sessions/`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authWhoamiCommand())

	return cmd
}

// authLoginCommand creates the login subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in with a whitelisted email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if existing, _ := loadCLISession(ctx); existing != nil {
				printInfo("Already logged in as %s", existing.User.Email)
				printDetail("Run 'virtualcv auth logout' first to re-authenticate")
				return nil
			}

			api, err := c.apiClient(apiURL)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Logging in...")
			spinner.Start()
			result, err := api.Login(ctx, args[0])
			if err != nil {
				spinner.StopWithError("Login failed")
				return err
			}
			spinner.Stop()

			if err := saveCLISession(ctx, result.Token, result.User, result.ExpiresAt); err != nil {
				return err
			}

			printSuccess("Logged in as %s", result.User.Email)
			printDetail("Session expires %s", result.ExpiresAt.Format("Jan 2, 2006 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "API endpoint (default "+defaultAPIURL+")")
	return cmd
}

// authLogoutCommand creates the logout subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Best effort server-side invalidation; the local file is the
			// source of truth for the CLI.
			if api, err := c.apiClient(apiURL); err == nil {
				_ = api.Logout(ctx)
			}

			if err := deleteCLISession(ctx); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "API endpoint (default "+defaultAPIURL+")")
	return cmd
}

// authWhoamiCommand creates the whoami subcommand.
func (c *CLI) authWhoamiCommand() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently authenticated editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess, err := loadCLISession(ctx)
			if err != nil {
				return err
			}

			api, err := c.apiClient(apiURL)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Verifying session...")
			spinner.Start()
			user, err := api.Me(ctx)
			if err != nil {
				spinner.StopWithError("Session invalid")
				return fmt.Errorf("verify session: %w", err)
			}
			spinner.Stop()

			printSuccess("CV API Session")
			printKeyValue("Email", user.Email)
			if user.Name != "" {
				printKeyValue("Name", user.Name)
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "API endpoint (default "+defaultAPIURL+")")
	return cmd
}

// =============================================================================
// Session Management
// =============================================================================

// loadCLISession loads the stored session from disk.
func loadCLISession(ctx context.Context) (*session.Session, error) {
	store, err := session.NewCLIStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in (run 'virtualcv auth login' first)")
	}
	return sess, nil
}

// saveCLISession persists the session to disk.
func saveCLISession(ctx context.Context, token string, user *session.User, expiresAt time.Time) error {
	store, err := session.NewCLIStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	sess := &session.Session{
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func deleteCLISession(ctx context.Context) error {
	store, err := session.NewCLIStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	return store.DeleteSession(ctx)
}
