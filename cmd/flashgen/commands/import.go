package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cobra"

	"github.com/phrazzld/flashgen/internal/domain"
)

// maxImportSize caps the size of an import file.
const maxImportSize = 50 << 20

// flashcardsSchema describes the file written by "flashgen list --json".
const flashcardsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["question", "answer"],
    "properties": {
      "id":           {"type": "integer", "minimum": 1},
      "question":     {"type": "string", "minLength": 1},
      "answer":       {"type": "string", "minLength": 1},
      "explanation":  {"type": "string"},
      "tags":         {"type": ["array", "null"], "items": {"type": "string"}},
      "difficulty":   {"enum": ["easy", "medium", "hard", "neutral", ""]},
      "bookmarked":   {"type": "boolean"},
      "reviewCount":  {"type": "integer", "minimum": 0},
      "mastery":      {"type": "integer", "minimum": 0},
      "lastReviewed": {"type": ["string", "null"]},
      "createdAt":    {"type": "string"},
      "updatedAt":    {"type": "string"}
    }
  }
}`

var compileFlashcardsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(flashcardsSchema)))
	if err != nil {
		return nil, fmt.Errorf("parse flashcards schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	const url = "schema://flashgen/flashcards.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add flashcards schema: %w", err)
	}
	return c.Compile(url)
})

func newImportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import flashcards from a JSON file",
		Long: `Import flashcards from a JSON array, such as the output of
"flashgen list --json". Cards with an existing ID replace the stored card;
cards without one get a new ID.

Examples:
  flashgen import cards.json
  flashgen list --json | flashgen import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := readCardsFile(cmd, args[0])
			if err != nil {
				return err
			}

			a, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(cmd, a)

			if err := a.Service.Import(cmd.Context(), cards); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d flashcards\n", len(cards))
			return nil
		},
	}
}

func readCardsFile(cmd *cobra.Command, path string) ([]*domain.Flashcard, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > maxImportSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, maxImportSize)
	}
	return ParseFlashcards(data)
}

// ParseFlashcards validates data against the flashcard file schema and
// decodes it.
func ParseFlashcards(data []byte) ([]*domain.Flashcard, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := compileFlashcardsSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("file does not match the flashcard format: %w", err)
	}

	var cards []*domain.Flashcard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("invalid flashcard file: %w", err)
	}
	return cards, nil
}
