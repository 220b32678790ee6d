// Package lesson parses lesson files: markdown prose with a YAML
// frontmatter block carrying the code fields and the interaction plan.
// Rendering the prose is the frontend's job; the engine only needs the
// frontmatter.
package lesson

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"codelab/internal/plan"
)

type Lesson struct {
	ID       int
	Title    string
	Language string

	StarterCode    string
	SolutionCode   string
	ExpectedOutput string

	Plan                 plan.Plan
	InteractionRequired  bool
	SendToEditorTemplate string
	RecipeID             string

	Body       string
	SourceFile string
	SourceHash string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
	ErrMissingID     = errors.New("frontmatter missing required 'id' field")
)

type frontmatter struct {
	ID                   *int   `yaml:"id"`
	Title                string `yaml:"title"`
	Language             string `yaml:"language"`
	StarterCode          string `yaml:"starter_code"`
	SolutionCode         string `yaml:"solution_code"`
	ExpectedOutput       string `yaml:"expected_output"`
	InteractionPlan      []any  `yaml:"interaction_plan"`
	InteractionRequired  *bool  `yaml:"interaction_required"`
	SendToEditorTemplate string `yaml:"send_to_editor_template"`
	RecipeID             string `yaml:"interaction_recipe_id"`
}

func ParseFile(path string) (*Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	l, err := Parse(data)
	if err != nil {
		return nil, err
	}
	l.SourceFile = path
	l.SourceHash = contentHash(data)
	return l, nil
}

func Parse(content []byte) (*Lesson, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	yamlBytes := rest[:end]
	body := string(rest[end+len("---\n"):])

	var fm frontmatter
	if err := yaml.Unmarshal(yamlBytes, &fm); err != nil {
		return nil, ErrInvalidYAML
	}

	if strings.TrimSpace(fm.Title) == "" {
		return nil, ErrMissingTitle
	}
	if fm.ID == nil {
		return nil, ErrMissingID
	}

	items, err := plan.FromAny(fm.InteractionPlan)
	if err != nil {
		return nil, fmt.Errorf("interaction plan: %w", err)
	}

	// interaction_required defaults to true when absent
	required := true
	if fm.InteractionRequired != nil {
		required = *fm.InteractionRequired
	}

	return &Lesson{
		ID:                   *fm.ID,
		Title:                fm.Title,
		Language:             fm.Language,
		StarterCode:          fm.StarterCode,
		SolutionCode:         fm.SolutionCode,
		ExpectedOutput:       fm.ExpectedOutput,
		Plan:                 items,
		InteractionRequired:  required,
		SendToEditorTemplate: fm.SendToEditorTemplate,
		RecipeID:             fm.RecipeID,
		Body:                 body,
	}, nil
}
