package generation

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"
)

// Context budgets, in characters, for the grounding excerpt in each prompt.
const (
	QuestionContextChars    = 400
	AnswerContextChars      = 400
	ExplanationContextChars = 200
)

//go:embed prompts/*.tmpl
var embeddedPrompts embed.FS

// promptNames are the templates every prompt set must provide.
var promptNames = []string{"question", "answer", "explanation", "difficulty", "batch"}

// promptData is the data made available to prompt templates.
type promptData struct {
	Subjects []string
	Context  string
	Question string
	Answer   string
	Count    int
}

// Prompts renders the backend prompts for each stage.
type Prompts struct {
	templates map[string]*template.Template
}

// DefaultPrompts returns the built-in prompt set. It panics only if the
// embedded templates are broken, which is a build defect.
func DefaultPrompts() *Prompts {
	p, err := loadPrompts(embeddedPrompts, "prompts")
	if err != nil {
		panic(fmt.Sprintf("embedded prompt templates are invalid: %v", err))
	}
	return p
}

// LoadPrompts reads <name>.tmpl files from dir. An empty dir returns the
// built-in prompts.
func LoadPrompts(dir string) (*Prompts, error) {
	if dir == "" {
		return DefaultPrompts(), nil
	}
	return loadPrompts(os.DirFS(dir), ".")
}

func loadPrompts(fsys fs.FS, root string) (*Prompts, error) {
	funcs := template.FuncMap{"join": strings.Join}

	p := &Prompts{templates: make(map[string]*template.Template, len(promptNames))}
	for _, name := range promptNames {
		path := name + ".tmpl"
		if root != "." {
			path = root + "/" + path
		}
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template %s: %v", ErrInvalidConfig, path, err)
		}
		tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse prompt template %s: %v", ErrInvalidConfig, path, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

func (p *Prompts) render(name string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := p.templates[name].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Question builds the question-generation prompt.
func (p *Prompts) Question(subjects []string, chunk string) (string, error) {
	return p.render("question", promptData{
		Subjects: subjects,
		Context:  truncateRunes(chunk, QuestionContextChars),
	})
}

// Answer builds the answer-generation prompt.
func (p *Prompts) Answer(question, chunk string) (string, error) {
	return p.render("answer", promptData{
		Question: question,
		Context:  truncateRunes(chunk, AnswerContextChars),
	})
}

// Explanation builds the explanation prompt.
func (p *Prompts) Explanation(question, answer, chunk string) (string, error) {
	return p.render("explanation", promptData{
		Question: question,
		Answer:   answer,
		Context:  truncateRunes(chunk, ExplanationContextChars),
	})
}

// Difficulty builds the difficulty-rating prompt.
func (p *Prompts) Difficulty(question, answer string) (string, error) {
	return p.render("difficulty", promptData{Question: question, Answer: answer})
}

// Batch builds the single-call prompt asking for count cards as JSON.
func (p *Prompts) Batch(subjects []string, text string, count int) (string, error) {
	return p.render("batch", promptData{Subjects: subjects, Context: text, Count: count})
}
