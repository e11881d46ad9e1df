package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ins2doi/internal/games"
	"ins2doi/internal/patcher"
	"ins2doi/internal/task"
	"ins2doi/internal/tui"
)

var (
	patchGames     []string
	patchBackupDir string
	patchAllowLive bool
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Apply the bundled BattlEye patch to every installed game",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := selectGames(patchGames); err != nil {
			return err
		}
		if !patchAllowLive {
			if err := refuseRunningGames(cmd.Context()); err != nil {
				return err
			}
		}

		result, err := currentResult()
		if err != nil {
			return err
		}
		tasks := games.TasksFor(sess.Catalog, result)
		if len(tasks) == 0 {
			return patcher.ErrNoTasks
		}

		p := sess.Patcher()
		p.BackupRoot = patchBackupDir

		var summary patcher.Summary
		err = runWithProgress("patch", "Applying patches", func(ctx context.Context, report task.Reporter) error {
			var applyErr error
			summary, applyErr = p.Apply(ctx, tasks, func(pct int, msg string) { report(pct, msg) })
			return applyErr
		})

		rows := []tui.SummaryRow{
			{Label: "Games patched", Value: fmt.Sprintf("%d/%d", summary.Patched, summary.Total)},
			{Label: "Files written", Value: fmt.Sprintf("%d", summary.Files)},
			{Label: "Files backed up", Value: fmt.Sprintf("%d", summary.BackedUp)},
		}
		for _, b := range summary.Backups {
			rows = append(rows, tui.SummaryRow{Label: "Backup", Value: b})
		}
		if err != nil {
			rows = append(rows, tui.SummaryRow{Label: "Status", Value: "failed", Status: tui.StatusFail})
		} else {
			rows = append(rows, tui.SummaryRow{Label: "Status", Value: "done", Status: tui.StatusOK})
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary("Patch", rows))
		return err
	},
}

// refuseRunningGames stops file changes while a selected game is open.
func refuseRunningGames(ctx context.Context) error {
	running, err := games.Running(ctx, sess.Catalog)
	if err != nil {
		// listing processes is best effort
		return nil
	}
	for _, g := range sess.Catalog {
		if running[g.Key] {
			return fmt.Errorf("%s is running; close it first or pass --allow-running", g.Title)
		}
	}
	return nil
}

func init() {
	patchCmd.Flags().StringSliceVarP(&patchGames, "game", "g", nil, "limit to these game keys")
	patchCmd.Flags().StringVar(&patchBackupDir, "backup-dir", "", "collect backups here instead of next to each game")
	patchCmd.Flags().BoolVar(&patchAllowLive, "allow-running", false, "patch even if the game is currently running")

	rootCmd.AddCommand(patchCmd)
}
