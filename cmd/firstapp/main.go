package main

import (
	"log"
	"os"

	appcli "github.com/firstapp/firstapp/cli"
	clilib "github.com/urfave/cli/v2"
)

func newApp() *clilib.App {
	return &clilib.App{
		Name:   "firstapp",
		Usage:  "A single-page web app. Run without a command to start the debug server.",
		Flags:  appcli.ServeFlags(),
		Action: appcli.RunAction,
		Commands: []*clilib.Command{
			appcli.InitCommand,
			appcli.DevCommand,
			appcli.ProdCommand,
			appcli.CheckCommand,
			appcli.InfoCommand,
		},
	}
}

func runApp(args []string) error {
	return newApp().Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
