package main

import (
	"fmt"
	"time"

	"github.com/mrwolf/daybook/internal/dates"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build and store the note for yesterday",
		Long: `Build the note for the day before the reference date and store it.

Examples:
  daybook run --config daybook.yaml
  daybook run --date 2026-10-19 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			date, _ := cmd.Flags().GetString("date")

			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			now := time.Now()
			if date != "" {
				d, err := dates.Parse(date)
				if err != nil {
					return err
				}
				now = d.Noon(a.cfg.Location())
			}

			ctx := cmd.Context()
			if dryRun {
				doc, err := a.pipeline.Preview(ctx, now)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", doc.Title, doc.Body)
				return nil
			}

			res, err := a.pipeline.Run(ctx, now)
			if err != nil {
				return err
			}
			a.logger.Info("done", zap.String("note_id", res.NoteID), zap.String("title", res.Title))
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "render the note to stdout without storing it")
	cmd.Flags().String("date", "", "reference date YYYY-MM-DD; the note covers the day before")

	return cmd
}
