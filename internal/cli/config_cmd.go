package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ihildy/timesheet-cli/internal/output"
	"github.com/ihildy/timesheet-cli/internal/weeklog"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI config",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetEmailCmd(app))
	cmd.AddCommand(newConfigSetTimezoneCmd(app))
	cmd.AddCommand(newConfigSetPolicyCmd(app, "set-shift-model", "shift_model", "Set the shift model (single or split)", func(v string) (string, error) {
		m, err := weeklog.ParseShiftModel(v)
		if err == nil {
			app.Cfg.ShiftModel = string(m)
		}
		return string(m), err
	}))
	cmd.AddCommand(newConfigSetPolicyCmd(app, "set-key-format", "key_format", "Set the day key format (iso or mdy)", func(v string) (string, error) {
		f, err := weeklog.ParseKeyFormat(v)
		if err == nil {
			app.Cfg.KeyFormat = string(f)
		}
		return string(f), err
	}))
	cmd.AddCommand(newConfigSetPolicyCmd(app, "set-audit-policy", "audit_policy", "Set when description changes are recorded (always, first-only or off)", func(v string) (string, error) {
		p, err := weeklog.ParseAuditPolicy(v)
		if err == nil {
			app.Cfg.AuditPolicy = string(p)
		}
		return string(p), err
	}))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"ok":          true,
				"operation":   "config_show",
				"config_path": app.CfgPath,
				"config":      app.Cfg,
			}
			var b strings.Builder
			fmt.Fprintf(&b, "config:        %s\n", app.CfgPath)
			fmt.Fprintf(&b, "base_url:      %s%s\n", app.BaseURL(), app.Cfg.APIPrefix)
			fmt.Fprintf(&b, "email:         %s\n", valueOrUnset(app.Email()))
			fmt.Fprintf(&b, "timezone:      %s\n", valueOrUnset(app.Cfg.Timezone))
			fmt.Fprintf(&b, "shift_model:   %s\n", app.Cfg.ShiftModel)
			fmt.Fprintf(&b, "key_format:    %s\n", app.Cfg.KeyFormat)
			fmt.Fprintf(&b, "audit_policy:  %s\n", app.Cfg.AuditPolicy)
			fmt.Fprintf(&b, "approvals:     %t\n", app.Cfg.Approvals)
			fmt.Fprintf(&b, "timeout:       %s\n", app.Cfg.Timeout())
			fmt.Fprintf(&b, "log:           %s/%s", app.Cfg.Log.Level, app.Cfg.Log.Format)
			return output.Write(app.Stdout, app.JSONOutput, b.String(), payload)
		},
	}
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func newConfigSetEmailCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-email <email>",
		Short: "Set the acting employee email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if !strings.Contains(email, "@") {
				return fmt.Errorf("invalid email %q", email)
			}
			app.Cfg.Email = email
			if err := app.SaveConfig(); err != nil {
				return err
			}
			payload := map[string]any{"ok": true, "operation": "config_set_email", "email": email, "config_path": app.CfgPath}
			human := fmt.Sprintf("Acting email set to %s", email)
			return output.Write(app.Stdout, app.JSONOutput, human, payload)
		},
	}
	return cmd
}

func newConfigSetTimezoneCmd(app *App) *cobra.Command {
	var timezone string
	cmd := &cobra.Command{
		Use:   "set-timezone --tz <iana_timezone>",
		Short: "Set default timezone for date/week calculations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if timezone == "" {
				return fmt.Errorf("--tz is required")
			}
			if _, err := time.LoadLocation(timezone); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}
			app.Cfg.Timezone = timezone
			if err := app.SaveConfig(); err != nil {
				return err
			}
			payload := map[string]any{"ok": true, "operation": "config_set_timezone", "timezone": timezone, "config_path": app.CfgPath}
			human := fmt.Sprintf("Timezone set to %s", timezone)
			return output.Write(app.Stdout, app.JSONOutput, human, payload)
		},
	}
	cmd.Flags().StringVar(&timezone, "tz", "", "IANA timezone, e.g. America/Los_Angeles")
	_ = cmd.MarkFlagRequired("tz")
	return cmd
}

// newConfigSetPolicyCmd builds a one-argument setter; apply parses the value
// and stores it on app.Cfg.
func newConfigSetPolicyCmd(app *App, use, key, short string, apply func(string) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <value>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := apply(args[0])
			if err != nil {
				return err
			}
			if err := app.SaveConfig(); err != nil {
				return err
			}
			payload := map[string]any{"ok": true, "operation": "config_" + strings.ReplaceAll(use, "-", "_"), key: value, "config_path": app.CfgPath}
			human := fmt.Sprintf("%s set to %s", key, value)
			return output.Write(app.Stdout, app.JSONOutput, human, payload)
		},
	}
}
