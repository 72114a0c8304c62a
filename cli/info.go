package cli

import (
	"fmt"

	"github.com/firstapp/firstapp/core"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
)

type projectInfo struct {
	Config    *core.Config `json:"config"`
	Source    string       `json:"templateSource"`
	Templates []string     `json:"templates"`
}

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print the resolved configuration and available templates",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   core.DefaultConfigPath,
			Usage:   "path to the YAML config file",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print as JSON",
		},
	},
	Action: func(c *cli.Context) error {
		config, err := core.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}

		templates, err := core.NewRendererFromConfig(*config).Names()
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}

		info := projectInfo{
			Config:    config,
			Source:    "embedded",
			Templates: templates,
		}
		if config.TemplatesDir != "" {
			info.Source = config.TemplatesDir
		}

		out := c.App.Writer
		if c.Bool("json") {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Fprintf(out, "🌐 Address: %s:%d\n", config.Host, config.Port)
		fmt.Fprintln(out, "🔁 Cache Enabled:", config.CacheEnabled)
		fmt.Fprintln(out, "🔁 Debug Headers Enabled:", config.DebugHeaders)
		fmt.Fprintln(out, "🗜️  Minify:", config.Minify)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "📁 Templates:", info.Source)
		fmt.Fprintln(out, "🏠 Index Template:", config.IndexTemplate)
		fmt.Fprintln(out, "🗂️  Templates Found:", len(templates))

		return nil
	},
}
