// Package commands contains the CLI commands for the application
package commands

import (
	"github.com/rs/zerolog/log"

	"github.com/sjhorn/scaffolding/internal/brick"
	"github.com/sjhorn/scaffolding/internal/config"
	"github.com/sjhorn/scaffolding/internal/generate"
)

type Flags struct {
	LogLevel string
}

type Controller struct {
	Flags *Flags
}

// newGenerator loads the project configuration and assembles a generator with
// the configured template engine. Returns the config and project root so
// callers can inspect flags like Enabled.
func newGenerator() (*generate.Generator, *config.Config, string, error) {
	cfg, projectRoot, err := config.LoadConfig()
	if err != nil {
		return nil, nil, "", err
	}

	engine, err := brick.NewRegistry().Get(cfg.Engine, log.Logger)
	if err != nil {
		return nil, nil, "", err
	}

	generator := generate.NewGenerator(cfg, projectRoot, engine, generate.OSFileSystem{}, log.Logger)
	return generator, cfg, projectRoot, nil
}
