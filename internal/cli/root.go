package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihildy/timesheet-cli/internal/output"
)

func NewRootCmd() *cobra.Command {
	return newRootCmd(NewApp())
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "timesheet",
		Short:         "Log weekly work hours against projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.LoadConfig(); err != nil {
				return err
			}
			if app.Cfg.Output.JSONDefault && !cmd.Flags().Changed("json") {
				app.JSONOutput = true
			}
			if err := app.InitLogger(); err != nil {
				return err
			}
			if app.BaseURL() == "" {
				return fmt.Errorf("base URL is not configured")
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&app.JSONOutput, "json", false, "Emit machine-readable JSON output")
	cmd.PersistentFlags().StringVar(&app.BaseURLOverride, "base-url", "", "Override API base URL")
	cmd.PersistentFlags().StringVar(&app.EmailOverride, "email", "", "Act as this employee email instead of the configured one")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log backend calls to stderr")

	cmd.AddCommand(newAuthCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newProfileCmd(app))
	cmd.AddCommand(newRosterCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newWeekCmd(app))
	cmd.AddCommand(newRowCmd(app))
	cmd.AddCommand(newInspectCmd(app))
	cmd.AddCommand(newEmployeeCmd(app))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	app := NewApp()
	cmd := newRootCmd(app)
	if err := cmd.Execute(); err != nil {
		_ = app.Logger.Sync()
		payload := output.NewErrorPayload(errorCode(err), err.Error(), nil)
		w := app.Stderr
		if app.JSONOutput {
			w = app.Stdout
		}
		_ = output.WriteError(w, app.JSONOutput, payload)
		return 1
	}
	_ = app.Logger.Sync()
	return 0
}
