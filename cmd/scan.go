package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ins2doi/internal/disabler"
	"ins2doi/internal/games"
	"ins2doi/internal/logging"
	"ins2doi/internal/task"
	"ins2doi/internal/tui"
)

var (
	scanGames  []string
	scanVerify bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Locate installed games and Steam libraries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := selectGames(scanGames); err != nil {
			return err
		}
		result, err := scanGamesNow()
		if err != nil {
			return err
		}
		if scanVerify {
			verifyExecutables(result)
		}
		printScan(result)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringSliceVarP(&scanGames, "game", "g", nil, "limit to these game keys (insurgency2, dayofinfamy)")
	scanCmd.Flags().BoolVar(&scanVerify, "verify", false, "check that each found executable is a valid PE image")

	rootCmd.AddCommand(scanCmd)
}

// selectGames narrows the session catalog to keys.
func selectGames(keys []string) error {
	for _, k := range keys {
		if _, ok := sess.Catalog.Lookup(k); !ok {
			return fmt.Errorf("unknown game %q (known: %v)", k, games.Default().Keys())
		}
	}
	sess.Catalog = sess.Catalog.Filter(keys)
	return nil
}

// scanGamesNow runs a scan through the task runner and stores the result
// on the session.
func scanGamesNow() (games.ScanResult, error) {
	var result games.ScanResult
	s := sess.Scanner()
	err := runWithProgress("scan", "Scanning for games", func(ctx context.Context, report task.Reporter) error {
		result = s.Scan(ctx, func(p int, msg string) { report(p, msg) })
		return ctx.Err()
	})
	if err != nil {
		return games.ScanResult{}, err
	}
	sess.SetResult(result)
	return result, nil
}

// currentResult returns the session's scan, revalidated against disk. A
// scan runs first when the session holds none.
func currentResult() (games.ScanResult, error) {
	if result, ok := sess.Result(); ok {
		return result, nil
	}
	if _, err := scanGamesNow(); err != nil {
		return games.ScanResult{}, err
	}
	result, _ := sess.Result()
	return result, nil
}

func verifyExecutables(result games.ScanResult) {
	for key, loc := range result.Found() {
		if err := disabler.ValidatePE(loc.ExecutablePath); err != nil {
			sess.Logger.Warn("executable failed validation",
				zap.String(logging.KeyGame, key),
				zap.String(logging.KeyPath, loc.ExecutablePath),
				zap.Error(err))
			fmt.Fprintf(os.Stdout, "%s %s: %v\n", tui.WarnStyle.Render("!"), key, err)
		}
	}
}

func printScan(result games.ScanResult) {
	var rows []tui.SummaryRow
	for _, g := range sess.Catalog {
		if loc, ok := result.Location(g.Key); ok {
			rows = append(rows, tui.SummaryRow{Label: g.Title, Value: loc.Path, Status: tui.StatusOK})
			continue
		}
		rows = append(rows, tui.SummaryRow{Label: g.Title, Value: "not found", Status: tui.StatusWarn})
	}
	libs := result.Libraries()
	if len(libs) == 0 {
		rows = append(rows, tui.SummaryRow{Label: "Steam libraries", Value: "none detected", Status: tui.StatusWarn})
	}
	for i, lib := range libs {
		label := ""
		if i == 0 {
			label = "Steam libraries"
		}
		rows = append(rows, tui.SummaryRow{Label: label, Value: lib})
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary("Scan results", rows))
}
