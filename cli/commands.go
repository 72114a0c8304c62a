package cli

import (
	"fmt"

	"github.com/firstapp/firstapp"
	"github.com/firstapp/firstapp/core"

	"github.com/urfave/cli/v2"
)

// ServeFlags are shared by the root action and the dev/prod commands.
func ServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "address to bind (default from config, else " + core.DefaultHost + ")",
			EnvVars: []string{"FIRSTAPP_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   fmt.Sprintf("port to listen on (default from config, else %d)", core.DefaultPort),
			EnvVars: []string{"FIRSTAPP_PORT"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   core.DefaultConfigPath,
			Usage:   "path to the YAML config file",
			EnvVars: []string{"FIRSTAPP_CONFIG"},
		},
	}
}

func runtimeConfig(c *cli.Context, env string) firstapp.RuntimeConfig {
	cfg := firstapp.RuntimeConfig{
		Env:        env,
		Host:       c.String("host"),
		Port:       c.Int("port"),
		ConfigPath: c.String("config"),
	}
	// Only an explicit --cache overrides the config file.
	if c.IsSet("cache") {
		cache := c.Bool("cache")
		cfg.EnableCache = &cache
	}
	return cfg
}

// RunAction is what runs when the binary is started without a subcommand:
// the debug server on the default address.
func RunAction(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	firstapp.Start(runtimeConfig(c, firstapp.EnvDev))
	return nil
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start the server in debug mode (template reload, verbose errors, live reload)",
	Flags: ServeFlags(),
	Action: func(c *cli.Context) error {
		firstapp.Start(runtimeConfig(c, firstapp.EnvDev))
		return nil
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start the server in production mode (page cache per config, on by default)",
	Flags: append(ServeFlags(), &cli.BoolFlag{
		Name:    "cache",
		Usage:   "override the config file's page cache setting",
		EnvVars: []string{"FIRSTAPP_CACHE"},
	}),
	Action: func(c *cli.Context) error {
		firstapp.Start(runtimeConfig(c, firstapp.EnvProd))
		return nil
	},
}
