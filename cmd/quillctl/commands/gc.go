package commands

import (
	"fmt"
	"time"

	"quill/internal/app"
	"quill/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	register(func(root *cobra.Command) { root.AddCommand(newGCCmd()) })
}

func newGCCmd() *cobra.Command {
	var (
		dryRun bool
		minAge time.Duration
	)

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Remove media files no post references",
		Long: `Delete uploaded media files that no post points at.

Files younger than --min-age are kept, since an upload may still be in flight
on a running server. Defaults to SWEEP_MIN_AGE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-age") {
				minAge = cfg.SweepMinAge
			}

			rt, err := app.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Service.SweepOrphans(cmd.Context(), service.SweepOptions{
				MinAge: minAge,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(res.Orphans) == 0 {
				fmt.Fprintf(out, "Scanned %d files, no orphans.\n", res.Scanned)
				return nil
			}
			for _, name := range res.Orphans {
				fmt.Fprintln(out, name)
			}
			if dryRun {
				fmt.Fprintf(out, "Would remove %d of %d files.\n", len(res.Orphans), res.Scanned)
			} else {
				fmt.Fprintf(out, "Removed %d of %d files.\n", res.Removed, res.Scanned)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be deleted without deleting")
	cmd.Flags().DurationVar(&minAge, "min-age", 0, "Only remove files older than this")
	return cmd
}
