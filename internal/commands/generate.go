package commands

import (
	"context"
	"fmt"
)

// Generate runs one scaffold pass over every domain model matched by the
// configured include patterns.
func (c *Controller) Generate(ctx context.Context) error {
	generator, cfg, _, err := newGenerator()
	if err != nil {
		return err
	}
	if !cfg.IsEnabled() {
		fmt.Println("Scaffolding is disabled in scaffolding.json; nothing to do.")
		return nil
	}

	inputs, err := generator.Inputs()
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		fmt.Println("No domain model files matched the configured include patterns.")
		return nil
	}

	var failed int
	for _, input := range inputs {
		if err := generator.Generate(ctx, input); err != nil {
			failed++
			fmt.Printf("❌ %s: %v\n", input, err)
			continue
		}
		fmt.Printf("✅ %s\n", input)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d domain models failed to generate", failed, len(inputs))
	}
	return nil
}
