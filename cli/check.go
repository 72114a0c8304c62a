package cli

import (
	"fmt"

	"github.com/firstapp/firstapp/core"
	"github.com/urfave/cli/v2"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Parse and render every template",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   core.DefaultConfigPath,
			Usage:   "path to the YAML config file",
		},
	},
	Action: func(c *cli.Context) error {
		config, err := core.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}

		out := c.App.Writer
		renderer := core.NewRendererFromConfig(*config)

		names, err := renderer.Names()
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}

		failed := false
		indexFound := false
		for _, name := range names {
			if name == config.IndexTemplate {
				indexFound = true
			}
			if _, err := renderer.Render(name, nil); err != nil {
				failed = true
				fmt.Fprintf(out, "❌ %s → %v\n", name, err)
				continue
			}
			fmt.Fprintf(out, "✅ %s\n", name)
		}

		if !indexFound {
			failed = true
			fmt.Fprintf(out, "❌ %s → %v\n", config.IndexTemplate, core.ErrTemplateNotFound)
		}

		if failed {
			return cli.Exit("some templates failed to render", 1)
		}

		fmt.Fprintln(out, "✅ All templates rendered successfully.")
		return nil
	},
}
