// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, sourcesCommand, syncCommand,
		classifyCommand, synthesizeCommand, publishCommand, playlistsCommand, resetCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func outputFlags() []cli.Flag {
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

// setupCommand initializes the database and config file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the local database and configuration",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a starter config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles the OAuth2 flow against YouTube
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with YouTube",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Run the browser authorization flow",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show whether a usable token is saved",
				Action: r.AuthStatus,
			},
		},
	}
}

// sourcesCommand manages which remote collections are tracked
func sourcesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "Manage tracked collections",
		Flags: outputFlags(),
		Commands: []*cli.Command{
			{
				Name:   "discover",
				Usage:  "List remote collections available to track",
				Flags:  outputFlags(),
				Action: r.Discover,
			},
			{
				Name:  "add",
				Usage: "Track a collection by id/URL, or \"liked\" for liked songs",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "ref",
					},
				},
				Action: r.Add,
			},
			{
				Name:  "remove",
				Usage: "Stop tracking a source (its songs are kept)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.Remove,
			},
		},
		Action: r.Sources,
	}
}

func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Fetch songs from tracked sources into the local library",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "source",
				UsageText: "source id (omit to sync every source)",
			},
		},
		Action: r.Sync,
	}
}

func classifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Categorize unclassified songs by mood, genre and energy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Category type to assign (mood, genre, energy or all)",
				Value:   "all",
			},
		},
		Action: r.Classify,
	}
}

func synthesizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "synthesize",
		Aliases: []string{"synth"},
		Usage:   "Build playlists from the classified library",
		Action:  r.Synthesize,
	}
}

func publishCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Create unpublished playlists on YouTube and fill them",
		Commands: []*cli.Command{
			{
				Name:  "undo",
				Usage: "Forget a playlist's remote copy so publish recreates it",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.Unpublish,
			},
		},
		Action: r.Publish,
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "playlists",
		Usage:  "List synthesized playlists and their publication state",
		Flags:  outputFlags(),
		Action: r.Playlists,
	}
}

func resetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Clear classification state (sources are kept)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "playlists",
				Usage: "Only clear playlists and memberships",
			},
		},
		Action: r.Reset,
	}
}
