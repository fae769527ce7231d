package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/go-asset-console/session"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var loginID string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the asset console",
	Long: `Signs in with a login id and password. The password is read from
ASSETCTL_PASSWORD when set, otherwise it is prompted for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, store, err := newCoordinator()
		if err != nil {
			return err
		}

		id := loginID
		if id == "" {
			if id, err = pterm.DefaultInteractiveTextInput.Show("Login ID"); err != nil {
				return err
			}
		}
		password := os.Getenv("ASSETCTL_PASSWORD")
		if password == "" {
			if password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password"); err != nil {
				return err
			}
		}
		if strings.TrimSpace(id) == "" || password == "" {
			return errors.New("login id and password are required")
		}

		actor, err := c.Login(cmd.Context(), strings.TrimSpace(id), password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		pterm.Success.Printfln("Logged in as %s (%s)", actor.DisplayName, actor.LoginID)
		pterm.Info.Printfln("Session stored in %s", store.Path())
		if actor.IsInitialPassword {
			pterm.Warning.Println("You are using an initial password. Change it with 'assetctl password'.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newCoordinator()
		if err != nil {
			return err
		}
		if err := c.Logout(cmd.Context()); err != nil {
			// The local session is gone either way
			pterm.Warning.Printfln("Server logout failed: %v", err)
		}
		fmt.Println("Logged out successfully")
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change the password of the signed in member",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := newCoordinator()
		if err != nil {
			return err
		}
		if err := requireSession(c); err != nil {
			return err
		}

		current, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Current password")
		if err != nil {
			return err
		}
		next, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("New password")
		if err != nil {
			return err
		}
		confirm, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Repeat new password")
		if err != nil {
			return err
		}
		if next != confirm {
			return errors.New("new passwords do not match")
		}

		if err := c.ChangePassword(cmd.Context(), current, next); err != nil {
			return fmt.Errorf("password change failed: %w", err)
		}
		pterm.Success.Println("Password changed")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, store, err := newCoordinator()
		if err != nil {
			return err
		}
		s := c.Session()

		pterm.DefaultSection.Println("Session")
		pterm.Info.Printfln("State: %s", c.State())
		pterm.Info.Printfln("Stored in: %s", store.Path())
		if !s.IsAuthenticated() {
			return nil
		}

		verifier := session.NewVerifier(cmd.Context(), serverBase()+"/.well-known/jwks.json")
		claims, verr := verifier.Verify(cmd.Context(), s.AccessToken)
		switch {
		case claims == nil:
			pterm.Warning.Printfln("Access token could not be verified: %v", verr)
		case verr != nil:
			pterm.Warning.Printfln("Access token expired at %s, it is refreshed on the next request", claims.Expiry().Format(time.RFC1123))
		default:
			pterm.Info.Printfln("Access token valid until %s", claims.Expiry().Format(time.RFC1123))
		}

		if s.Actor == nil {
			return nil
		}
		a := s.Actor
		rows := pterm.TableData{
			{"MEMBER ID", "LOGIN ID", "NAME", "POSITION", "ROLES", "INITIAL PASSWORD"},
			{fmt.Sprint(a.ID), a.LoginID, a.DisplayName, a.Position, strings.Join(a.Roles, ", "), fmt.Sprint(a.IsInitialPassword)},
		}
		pterm.DefaultSection.Println("Actor")
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginID, "login-id", "", "Login id (prompted for when empty)")
}
