package commands

import (
	"fmt"
	"strings"

	"quill/internal/slug"

	"github.com/spf13/cobra"
)

func init() {
	register(func(root *cobra.Command) { root.AddCommand(newSlugCmd()) })
}

func newSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <title...>",
		Short: "Print the post id a title maps to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := slug.Make(strings.Join(args, " "))
			if id == "" {
				return fmt.Errorf("title %q has no letters or digits", strings.Join(args, " "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
