package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new codelab project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

func runInit(projectName string) error {
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists", configFile)
	}

	configContents := fmt.Sprintf(`project: %s
version: 1

lessons:
  paths:
    - ./lessons/
  exclude:
    - ./lessons/drafts/

store:
  driver: sqlite
  dsn: sqlite://codelab.db

runtime:
  timeout_ms: 5000
  ranges:
    - min: 1
      max: 999
      language: starlark

widgets:
  step_delay_ms: 700

log:
  json_file: ""
  debug: false
`, projectName)

	if err := os.WriteFile(configFile, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	if err := os.MkdirAll("lessons", 0o755); err != nil {
		return fmt.Errorf("creating lessons directory: %w", err)
	}

	samplePath := "lessons/001-hello.md"
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}
	sample := `---
id: 1
title: Hello, output
language: starlark
starter_code: |
  # print a greeting
solution_code: |
  print("Hello, world!")
expected_output: "Hello, world!"
interaction_required: true
interaction_plan:
  - type: prediction
    question: What will this program print?
    options: ["Hello, world!", "Nothing"]
    correctIndex: 0
    explanation: print writes its argument followed by a newline.
  - type: hint_ladder
    hints:
      - Look at the string inside the parentheses.
      - print outputs exactly what you give it.
---

Run the starter code and compare the output with your prediction.
`
	if err := os.WriteFile(samplePath, []byte(sample), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", samplePath, err)
	}
	return nil
}
