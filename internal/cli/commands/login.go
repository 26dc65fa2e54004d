package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pantryhub/pantry/internal/auth"
	"github.com/pantryhub/pantry/internal/cli/app"
	"github.com/pantryhub/pantry/internal/models"
	"github.com/pantryhub/pantry/internal/router"
)

var errLoginFailed = errors.New("login failed")

// NewLoginCmd creates the login command
func NewLoginCmd(rt *Runtime) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in to the pantry backend",
		Annotations: routed(router.PathLogin),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email or username (or set PANTRY_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set PANTRY_PASSWORD, will prompt if not provided)")

	return cmd
}

func (rt *Runtime) runLogin(cmd *cobra.Command, email, password string) error {
	a := rt.App

	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("PANTRY_EMAIL")
	}
	if password == "" {
		password = os.Getenv("PANTRY_PASSWORD")
	}

	var err error
	if email == "" {
		if email, err = a.UI.Prompt("Email"); err != nil {
			return fmt.Errorf("email is required (use --email flag or PANTRY_EMAIL env var): %w", err)
		}
	}
	if password == "" {
		if password, err = a.UI.Password("Password"); err != nil {
			return fmt.Errorf("password is required (use --password flag or PANTRY_PASSWORD env var): %w", err)
		}
	}

	a.UI.Printf("Logging in to %s...\n", a.Client.BaseURL())
	if !a.Auth.Login(cmd.Context(), email, password) {
		return errLoginFailed
	}

	a.UI.Println("✓ Login successful!")
	printUser(rt, a.Session.User())
	return nil
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(rt *Runtime) *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create an account and sign in",
		Annotations: routed(router.PathRegister),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := rt.App

			if password == "" {
				p, err := a.UI.Password("Password")
				if err != nil {
					return fmt.Errorf("password is required (use --password flag): %w", err)
				}
				password = p
			}

			ok, err := a.Auth.Register(cmd.Context(), email, username, password)
			if err != nil {
				return err
			}
			if !ok {
				// Account exists but the automatic sign in failed
				return fmt.Errorf("account created for %s but %w", email, errLoginFailed)
			}

			a.UI.Println("✓ Account created, you are now logged in.")
			printUser(rt, a.Session.User())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.App.Auth.Logout(); err != nil {
				return err
			}
			rt.App.UI.Println("✓ Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := rt.App
			if !a.Session.IsAuthenticated() {
				return app.ErrLoginRequired
			}
			if err := a.Auth.FetchCurrentUser(cmd.Context()); err != nil {
				return err
			}
			printUser(rt, a.Session.User())
			return nil
		},
	}
}

// NewStatusCmd creates the status command
func NewStatusCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend, token store and session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := rt.App

			a.UI.Printf("Backend:     %s\n", a.Client.BaseURL())
			a.UI.Printf("Token store: %s\n", a.Config.Session.TokenStore)

			if !a.Session.IsAuthenticated() {
				a.UI.Printf("Session:     %s\n", auth.StateAnonymous)
				return nil
			}

			token := a.Session.Token()
			if info, err := auth.InspectToken(token); err == nil {
				if info.Subject != "" {
					a.UI.Printf("Subject:     %s\n", info.Subject)
				}
				if info.ExpiresAt != nil {
					expiry := info.ExpiresAt.Local().Format(time.RFC1123)
					if info.Expired(time.Now()) {
						expiry += " (expired)"
					}
					a.UI.Printf("Expires:     %s\n", expiry)
				}
			} else {
				a.UI.Println("Token:       opaque")
			}

			if err := a.Auth.FetchCurrentUser(cmd.Context()); err != nil {
				a.UI.Printf("Session:     %s\n", a.Auth.State())
				a.UI.Printf("Profile:     unavailable (%v)\n", err)
				return nil
			}
			a.UI.Printf("Session:     %s\n", a.Auth.State())
			u := a.Session.User()
			a.UI.Printf("User:        %s (%s)\n", u.Username, u.Email)
			return nil
		},
	}
}

func printUser(rt *Runtime, u *models.User) {
	if u == nil {
		return
	}
	rt.App.UI.Printf("  User: %s (%s)\n", u.Username, u.Email)
	if u.IsAdmin {
		rt.App.UI.Println("  Role: Admin")
	}
}
