package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored flashcards, newest first",
		Long: `List stored flashcards, newest first.

The --json output can be fed back to "flashgen import".

Examples:
  flashgen list
  flashgen list --json > cards.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			cards, err := a.Service.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list flashcards: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cards)
			}

			if len(cards) == 0 {
				fmt.Fprintln(out, "No flashcards stored.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDIFFICULTY\tTAGS\tQUESTION")
			for _, c := range cards {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Difficulty, joinTags(c.Tags), truncate(c.Question, 70))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print cards as a JSON array")
	return cmd
}
