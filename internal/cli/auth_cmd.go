package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ihildy/timesheet-cli/internal/auth"
	"github.com/ihildy/timesheet-cli/internal/keyring"
	"github.com/ihildy/timesheet-cli/internal/output"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the backend API token",
	}
	cmd.AddCommand(newAuthLoginCmd(app))
	cmd.AddCommand(newAuthStatusCmd(app))
	cmd.AddCommand(newAuthLogoutCmd(app))
	return cmd
}

func newAuthLoginCmd(app *App) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token in the keychain and verify the acting identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			tokenFlagSet := cmd.Flags().Changed("token")
			tokenFromStdin, err := cmd.Flags().GetBool("token-stdin")
			if err != nil {
				return err
			}
			token, err := resolveToken(app, token, tokenFlagSet, tokenFromStdin)
			if err != nil {
				return err
			}

			authn := &auth.Authenticator{API: app.newClientWithToken(ctx, token)}
			emp, err := authn.Verify(ctx, app.Email())
			if err != nil {
				return err
			}

			if err := keyring.SaveToken(app.BaseURL(), token); err != nil {
				return err
			}

			payload := map[string]any{
				"ok":        true,
				"operation": "auth_login",
				"base_url":  app.BaseURL(),
				"employee": map[string]any{
					"id":    emp.ID,
					"name":  emp.Name,
					"email": emp.Email,
				},
			}
			human := fmt.Sprintf("Token stored for %s; acting as %s (#%d)", app.BaseURL(), emp.Name, emp.ID)
			return output.Write(app.Stdout, app.JSONOutput, human, payload)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "API token (non-interactive; avoid shell history leaks)")
	cmd.Flags().Bool("token-stdin", false, "Read the API token from stdin")
	return cmd
}

func newAuthStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the backend accepts the stored token and identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			hasToken := true
			if _, err := keyring.LoadToken(app.BaseURL()); err != nil {
				if !errors.Is(err, keyring.ErrNoToken) {
					return err
				}
				hasToken = false
			}

			client, err := app.NewClient(ctx)
			if err != nil {
				return err
			}
			authn := &auth.Authenticator{API: client}
			emp, err := authn.Verify(ctx, app.Email())
			if err != nil {
				payload := map[string]any{"ok": true, "operation": "auth_status", "authenticated": false, "token_stored": hasToken, "reason": err.Error()}
				return output.Write(app.Stdout, app.JSONOutput, "Not authenticated: "+err.Error(), payload)
			}

			payload := map[string]any{
				"ok":            true,
				"operation":     "auth_status",
				"authenticated": true,
				"token_stored":  hasToken,
				"employee": map[string]any{
					"id":    emp.ID,
					"name":  emp.Name,
					"email": emp.Email,
				},
			}
			human := fmt.Sprintf("Authenticated as %s (#%d)", emp.Name, emp.ID)
			if !hasToken {
				human += " without a stored token"
			}
			return output.Write(app.Stdout, app.JSONOutput, human, payload)
		},
	}
}

func newAuthLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored token from the keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keyring.DeleteToken(app.BaseURL()); err != nil {
				return err
			}
			payload := map[string]any{"ok": true, "operation": "auth_logout", "base_url": app.BaseURL()}
			return output.Write(app.Stdout, app.JSONOutput, "Token removed", payload)
		},
	}
}

func resolveToken(app *App, provided string, providedSet bool, fromStdin bool) (string, error) {
	if providedSet && fromStdin {
		return "", fmt.Errorf("use only one of --token or --token-stdin")
	}

	if fromStdin {
		data, err := io.ReadAll(app.Stdin)
		if err != nil {
			return "", fmt.Errorf("read token from stdin: %w", err)
		}
		value := strings.TrimSpace(string(data))
		if value == "" {
			return "", fmt.Errorf("token is required")
		}
		return value, nil
	}

	if providedSet {
		if strings.TrimSpace(provided) == "" {
			return "", fmt.Errorf("token is required")
		}
		return strings.TrimSpace(provided), nil
	}

	stdinFile, ok := app.Stdin.(*os.File)
	if !ok || !term.IsTerminal(int(stdinFile.Fd())) {
		return "", fmt.Errorf("token is required; pass --token or --token-stdin when non-interactive")
	}
	fmt.Fprint(app.Stderr, "API token: ")
	data, err := term.ReadPassword(int(stdinFile.Fd()))
	fmt.Fprintln(app.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token is required")
	}
	return token, nil
}
