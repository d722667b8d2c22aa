package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/extract"
)

type generateOptions struct {
	subjects []string
	count    int
	mode     string
	dryRun   bool
	json     bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate flashcards from a document or stdin",
		Long: fmt.Sprintf(`Generate flashcards from a document and store them.

Supported file types: %s. Without a file, or with "-",
plain text is read from stdin.

Examples:
  flashgen generate notes.pdf --subjects biology --count 10
  flashgen generate chapter.md --mode batch --dry-run
  cat notes.txt | flashgen generate --json`, strings.Join(extract.Extensions(), ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringSliceVar(&opts.subjects, "subjects", nil, "subject tags for the cards (comma separated)")
	cmd.Flags().IntVar(&opts.count, "count", 0, "number of flashcards to generate (default from config)")
	cmd.Flags().StringVar(&opts.mode, "mode", string(domain.ModeStaged), "generation mode: staged or batch")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the cards without storing them")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, args []string) error {
	text, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	a, err := root.openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(cmd, a)

	req := domain.GenerationRequest{
		Text:     text,
		Subjects: opts.subjects,
		Count:    opts.count,
		Mode:     domain.GenerationMode(opts.mode),
	}

	generate := a.Service.GenerateAndSave
	if opts.dryRun {
		generate = a.Service.Preview
	}
	outcome, err := generate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	printCards(out, outcome.Records)
	verb := "Saved"
	if opts.dryRun {
		verb = "Generated (not saved)"
	}
	fmt.Fprintf(out, "\n%s %d of %d flashcards", verb, outcome.Succeeded, outcome.Requested)
	if outcome.Failed > 0 {
		fmt.Fprintf(out, "; %d could not be generated", outcome.Failed)
	}
	fmt.Fprintln(out)
	return nil
}

// readSource returns the text of the named document, or stdin when no file
// (or "-") is given.
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		return extract.Text("stdin.txt", cmd.InOrStdin())
	}

	path := args[0]
	if !extract.Supported(path) {
		return "", fmt.Errorf("%w: %q; supported types are %s", extract.ErrUnsupportedFormat,
			filepath.Ext(path), strings.Join(extract.Extensions(), ", "))
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	text, err := extract.Text(path, f)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return text, nil
}

func printCards(w io.Writer, cards []*domain.Flashcard) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer func() { _ = tw.Flush() }()

	for i, c := range cards {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "#%d\t[%s]\t%s\n", c.ID, c.Difficulty, strings.Join(c.Tags, ", "))
		fmt.Fprintf(tw, "Q:\t%s\n", c.Question)
		fmt.Fprintf(tw, "A:\t%s\n", c.Answer)
		if c.Explanation != "" {
			fmt.Fprintf(tw, "Why:\t%s\n", c.Explanation)
		}
	}
}
