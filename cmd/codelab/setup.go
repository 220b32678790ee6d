package main

import (
	"fmt"
	"os"

	"codelab/internal/config"
	"codelab/internal/lesson"
	"codelab/internal/logging"
	"codelab/internal/runtime"
	"codelab/internal/runtime/starlark"

	"log/slog"
)

const configFile = "codelab.yaml"

func loadConfig() (*config.ProjectConfig, error) {
	return config.LoadProjectConfig(configFile)
}

func buildLogger(cfg *config.ProjectConfig) *slog.Logger {
	logging.SetDebug(cfg.Log.Debug)
	return logging.New(os.Stderr, cfg.Log.JSONFile)
}

func loadCatalog(cfg *config.ProjectConfig, logger *slog.Logger) (*lesson.Catalog, error) {
	catalog, errs := lesson.LoadCatalog(cfg.Lessons.Paths, cfg.Lessons.Exclude)
	for _, err := range errs {
		logger.Warn("loading lesson", "error", err)
	}
	if catalog == nil {
		return nil, fmt.Errorf("loading lessons: %v", errs[0])
	}
	return catalog, nil
}

// buildRegistry wires one runner per configured lesson-id range. With no
// ranges configured every lesson routes to the built-in Starlark runner.
func buildRegistry(cfg *config.ProjectConfig) (*runtime.Registry, error) {
	reg := &runtime.Registry{}
	if len(cfg.Runtime.Ranges) == 0 {
		reg.Register(0, 1<<31-1, starlark.New())
		return reg, nil
	}
	for _, r := range cfg.Runtime.Ranges {
		switch r.Language {
		case "starlark", "python":
			reg.Register(r.Min, r.Max, starlark.New())
		default:
			return nil, fmt.Errorf("no runtime available for language %q", r.Language)
		}
	}
	return reg, nil
}
