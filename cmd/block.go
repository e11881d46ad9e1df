package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ins2doi/internal/task"
	"ins2doi/internal/tui"
)

var blockURL string

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Install firewall rules blocking the rogue server list",
	Long:  "block downloads the rogue server list, removes any rules left by a previous run and installs inbound and outbound block rules in chunks. Needs an elevated terminal.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if blockURL != "" {
			sess.Config.BlocklistURL = blockURL
		}
		b := sess.Blocker(nil)
		err := runWithProgress("block", "Installing firewall rules", func(ctx context.Context, report task.Reporter) error {
			return b.Block(ctx, func(pct int, msg string) { report(pct, msg) })
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary("Firewall", []tui.SummaryRow{
			{Label: "Rule prefix", Value: sess.Config.RulePrefix},
			{Label: "Source", Value: sess.Config.BlocklistURL},
			{Label: "Status", Value: "active", Status: tui.StatusOK},
		}))
		return nil
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock",
	Short: "Remove every firewall rule installed by block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sess.Blocker(nil).Unblock(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s removed %s rules\n", tui.SuccessStyle.Render("ok"), sess.Config.RulePrefix)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the block rules are installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		active, err := sess.Blocker(nil).Status(cmd.Context())
		if err != nil {
			return err
		}
		row := tui.SummaryRow{Label: sess.Config.RulePrefix, Value: "not installed", Status: tui.StatusWarn}
		if active {
			row = tui.SummaryRow{Label: sess.Config.RulePrefix, Value: "installed", Status: tui.StatusOK}
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary("Firewall rules", []tui.SummaryRow{row}))
		return nil
	},
}

func init() {
	blockCmd.Flags().StringVar(&blockURL, "url", "", "blocklist URL (overrides blocklist_url)")

	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(unblockCmd)
	rootCmd.AddCommand(statusCmd)
}
