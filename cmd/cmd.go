// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// clientFlags are shared by every command that talks to a running server.
func clientFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Base URL of the catalog server (default: client.server_url)",
		},
		&cli.StringFlag{
			Name:  "client",
			Usage: "Client id sent as X-Client-ID (default: client.client_id)",
		},
	}
	return append(flags, extra...)
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// entityFields are the flags used to describe an entity on add and update.
func entityFields() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "title",
			Usage:    "Entity title",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "creator",
			Usage:    "Entity creator",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "format",
			Aliases:  []string{"f"},
			Usage:    "Entity format (vinyl, cd, tape...)",
			Required: true,
		},
		&cli.IntFlag{
			Name:     "year",
			Usage:    "Release year",
			Required: true,
		},
	}
}

// serveCommand runs the HTTP catalog service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the catalog HTTP server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address as host:port (default: server.host and server.port)",
			},
			&cli.StringFlag{
				Name:  "seed",
				Usage: "Seed file (.toml, .yaml or .json) loaded at startup",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the example configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the activity database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// entityCommand handles catalog operations against a running server.
func entityCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "entity",
		Aliases: []string{"e"},
		Usage:   "Catalog operations against a running server",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every entity",
				Flags: clientFlags(append(jsonFlags(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (csv, markdown, txt, table)",
						Value: "table",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the listing to a file instead of stdout",
					},
				)...),
				Action: r.EntityList,
			},
			{
				Name:      "get",
				Usage:     "Show one entity",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     clientFlags(jsonFlags()...),
				Action:    r.EntityGet,
			},
			{
				Name:   "add",
				Usage:  "Create an entity and print its id",
				Flags:  clientFlags(append(entityFields(), jsonFlags()...)...),
				Action: r.EntityAdd,
			},
			{
				Name:      "update",
				Usage:     "Replace the entity stored under id, creating it if absent",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     clientFlags(entityFields()...),
				Action:    r.EntityUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an entity",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     clientFlags(),
				Action:    r.EntityDelete,
			},
			{
				Name:  "import",
				Usage: "Create every entity in a seed file",
				Flags: clientFlags(append(jsonFlags(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Seed file (.toml, .yaml or .json)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers (max 10)",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Creates per second",
						Value: 20,
					},
				)...),
				Action: r.EntityImport,
			},
		},
	}
}

// activityCommand shows recent requests recorded for a client.
func activityCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "activity",
		Usage:     "Show the most recent requests made by a client",
		Arguments: []cli.Argument{&cli.StringArg{Name: "client-id"}},
		Flags:     clientFlags(jsonFlags()...),
		Action:    r.Activity,
	}
}

// tuiCommand returns the top-level TUI command for browsing the catalog.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing the catalog",
		Flags:   clientFlags(),
		Action:  r.TUI,
	}
}
