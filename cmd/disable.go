package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ins2doi/internal/disabler"
	"ins2doi/internal/games"
	"ins2doi/internal/task"
	"ins2doi/internal/tui"
)

var (
	disableGames    []string
	disableNoVerify bool
)

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Replace the BattlEye launcher with the plain 64-bit client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLauncherSwap(cmd.Context(), "disable", "Disabling anti-cheat launcher", (*disabler.Disabler).Disable)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Put the original BattlEye launcher back",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLauncherSwap(cmd.Context(), "restore", "Restoring anti-cheat launcher", (*disabler.Disabler).Restore)
	},
}

type swapFunc func(d *disabler.Disabler, ctx context.Context, result games.ScanResult, progress func(int, string)) ([]disabler.Outcome, error)

func runLauncherSwap(ctx context.Context, name, title string, swap swapFunc) error {
	if err := selectGames(disableGames); err != nil {
		return err
	}
	if err := refuseRunningGames(ctx); err != nil {
		return err
	}
	result, err := currentResult()
	if err != nil {
		return err
	}

	d := sess.Disabler()
	if disableNoVerify {
		d.Validate = nil
	}

	var outcomes []disabler.Outcome
	err = runWithProgress(name, title, func(ctx context.Context, report task.Reporter) error {
		var swapErr error
		outcomes, swapErr = swap(d, ctx, result, func(pct int, msg string) { report(pct, msg) })
		return swapErr
	})
	if err != nil {
		return err
	}

	var rows []tui.SummaryRow
	failed := 0
	for _, o := range outcomes {
		g, _ := sess.Catalog.Lookup(o.GameKey)
		if o.Err != nil {
			failed++
			rows = append(rows, tui.SummaryRow{Label: g.Title, Value: o.Err.Error(), Status: tui.StatusFail})
			continue
		}
		rows = append(rows, tui.SummaryRow{Label: g.Title, Value: o.Launcher, Status: tui.StatusOK})
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary("Launcher "+name, rows))
	if failed == len(outcomes) {
		return fmt.Errorf("%s failed for every game", name)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{disableCmd, restoreCmd} {
		c.Flags().StringSliceVarP(&disableGames, "game", "g", nil, "limit to these game keys")
	}
	disableCmd.Flags().BoolVar(&disableNoVerify, "no-verify", false, "skip PE validation of the client executable")

	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(restoreCmd)
}
