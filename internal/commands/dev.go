package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sjhorn/scaffolding/internal/dev"
)

// Dev starts the watch mode: scaffolds are regenerated as domain-model files
// change on disk.
func (c *Controller) Dev(ctx context.Context) error {
	generator, cfg, projectRoot, err := newGenerator()
	if err != nil {
		return err
	}
	if !cfg.IsEnabled() {
		fmt.Println("Scaffolding is disabled in scaffolding.json; nothing to do.")
		return nil
	}

	server := dev.NewServer(cfg, projectRoot, generator, log.Logger)

	fmt.Println("✨ Scaffolding watch mode. Press Ctrl+C to stop.")
	return server.Start(ctx)
}
