package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/vocabulary"
)

// Builder renders instruction prompts for the completion model. It is safe
// for concurrent use.
type Builder struct {
	vocab *vocabulary.Registry
	ideas *template.Template
	steps *template.Template
}

type ideasData struct {
	Ingredients []string
	Categories  []string
	Cuisines    []string
}

type stepsData struct {
	Name        string
	Ingredients []string
}

// NewBuilder parses the prompt templates against the given registry
func NewBuilder(vocab *vocabulary.Registry) (*Builder, error) {
	if vocab == nil {
		return nil, fmt.Errorf("vocabulary registry is required")
	}

	ideas, err := parse("ideas", ideasTemplate)
	if err != nil {
		return nil, err
	}
	steps, err := parse("steps", stepsTemplate)
	if err != nil {
		return nil, err
	}

	return &Builder{
		vocab: vocab,
		ideas: ideas,
		steps: steps,
	}, nil
}

// Ideas renders the dish suggestion prompt for the given ingredients
func (b *Builder) Ideas(ingredients []string) (string, error) {
	return render(b.ideas, ideasData{
		Ingredients: ingredients,
		Categories:  b.vocab.Categories(),
		Cuisines:    b.vocab.Cuisines(),
	})
}

// Steps renders the preparation steps prompt for a named dish
func (b *Builder) Steps(name string, ingredients []string) (string, error) {
	return render(b.steps, stepsData{
		Name:        name,
		Ingredients: ingredients,
	})
}

func parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).
		Delims("<%", "%>").
		Funcs(template.FuncMap{"list": formatList}).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s prompt template: %w", name, err)
	}
	return tmpl, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// formatList renders values as a bracketed, quoted list, e.g.
// ['egg', 'flour', "Valentine's Day"]. Quotes, backslashes and control
// characters are escaped. Nothing else is sanitized.
func formatList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func quote(s string) string {
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}

	var sb strings.Builder
	sb.WriteString(q)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\'' && q == "'":
			sb.WriteString(`\'`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteString(q)
	return sb.String()
}
