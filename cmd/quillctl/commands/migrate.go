package commands

import (
	"fmt"

	"quill/internal/store"

	"github.com/spf13/cobra"
)

func init() {
	register(func(root *cobra.Command) { root.AddCommand(newMigrateCmd()) })
}

type storeFlags struct {
	driver string
	dsn    string
}

func (f storeFlags) options() store.Options {
	opts := store.Options{Driver: f.driver}
	if f.driver == store.DriverPostgres {
		opts.DatabaseURL = f.dsn
	} else {
		opts.Path = f.dsn
	}
	return opts
}

func newMigrateCmd() *cobra.Command {
	var (
		from  storeFlags
		to    storeFlags
		force bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every post from one store to another",
		Long: `Copy the full post collection between store drivers, e.g. from the JSON
file to SQLite. The DSN is a file path for json, bolt and sqlite and a
connection URL for postgres. Media files are not touched.

The target must be empty unless --force is given.`,
		Example: `  quillctl migrate --from-driver json --from-dsn ./data/blogs.json \
    --to-driver sqlite --to-dsn ./data/blogs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			src, err := store.Open(ctx, from.options())
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer src.Close()
			dst, err := store.Open(ctx, to.options())
			if err != nil {
				return fmt.Errorf("open target: %w", err)
			}
			defer dst.Close()

			posts, err := src.Load(ctx)
			if err != nil {
				return fmt.Errorf("load source: %w", err)
			}
			existing, err := dst.Load(ctx)
			if err != nil {
				return fmt.Errorf("load target: %w", err)
			}
			if len(existing) > 0 && !force {
				return fmt.Errorf("target already holds %d posts; use --force to replace them", len(existing))
			}
			if err := dst.Save(ctx, posts); err != nil {
				return fmt.Errorf("save target: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d posts from %s to %s.\n", len(posts), from.driver, to.driver)
			return nil
		},
	}

	cmd.Flags().StringVar(&from.driver, "from-driver", store.DriverJSON, "Source store driver (json, bolt, sqlite, postgres)")
	cmd.Flags().StringVar(&from.dsn, "from-dsn", "", "Source path or connection URL")
	cmd.Flags().StringVar(&to.driver, "to-driver", "", "Target store driver (json, bolt, sqlite, postgres)")
	cmd.Flags().StringVar(&to.dsn, "to-dsn", "", "Target path or connection URL")
	cmd.Flags().BoolVar(&force, "force", false, "Replace posts already in the target")
	_ = cmd.MarkFlagRequired("from-dsn")
	_ = cmd.MarkFlagRequired("to-driver")
	_ = cmd.MarkFlagRequired("to-dsn")
	return cmd
}
