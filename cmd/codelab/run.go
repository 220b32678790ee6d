package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"codelab/internal/runtime"
	"codelab/internal/verify"
)

func runCmd() *cobra.Command {
	var codeFile string
	cmd := &cobra.Command{
		Use:   "run <lesson-id>",
		Short: "Run a lesson's solution code and verify its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid lesson id: %s", args[0])
			}
			return runLesson(id, codeFile)
		},
	}
	cmd.Flags().StringVar(&codeFile, "code", "", "Run this file instead of the lesson's solution code")
	return cmd
}

func runLesson(id int, codeFile string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := buildLogger(cfg)

	catalog, err := loadCatalog(cfg, logger)
	if err != nil {
		return err
	}
	l, ok := catalog.Get(id)
	if !ok {
		return fmt.Errorf("lesson %d not found", id)
	}

	code := l.SolutionCode
	if codeFile != "" {
		data, err := os.ReadFile(codeFile)
		if err != nil {
			return fmt.Errorf("reading code file: %w", err)
		}
		code = string(data)
	}
	if code == "" {
		return fmt.Errorf("lesson %d has no solution code", id)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	runner, err := registry.ForLesson(id)
	if err != nil {
		return err
	}

	run, runErr := runtime.RunWithTimeout(ctx, runner, code, cfg.Runtime.Timeout())
	actual := run.Stdout
	if runErr != nil {
		actual = runErr.Error()
	}

	result := verify.Verify(l.ExpectedOutput, actual, code)

	fmt.Fprintf(os.Stdout, "Lesson %d: %s\n", l.ID, l.Title)
	fmt.Fprintf(os.Stdout, "Output:\n%s\n\n", actual)
	if result.Correct {
		fmt.Fprintf(os.Stdout, "PASS (score %.0f)\n", result.Score)
	} else {
		fmt.Fprintf(os.Stdout, "FAIL (score %.0f): %s\n", result.Score, result.Feedback)
		for _, s := range result.Suggestions {
			fmt.Fprintf(os.Stdout, "  - %s\n", s)
		}
	}
	if !result.Correct {
		return fmt.Errorf("verification failed")
	}
	return nil
}
