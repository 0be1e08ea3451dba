package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/learnings/internal"
	"github.com/starford/learnings/internal/apperr"
	"github.com/starford/learnings/internal/client"
	"github.com/starford/learnings/internal/web"
	pkgconfig "github.com/starford/learnings/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, string, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	loaded, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if !loaded {
		// Run on defaults; nothing to watch.
		return cfg, "", nil
	}
	return cfg, configPath, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol.
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithVersion(version),
	)
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Migrate(ctx, internal.WithConfig(cfg))
}

func remote(cmd *cli.Command) *client.Client {
	return client.New(cmd.String("server"))
}

func list(ctx context.Context, cmd *cli.Command) error {
	c := remote(cmd)
	feed := client.NewFeed(c)
	if err := feed.Reload(ctx); err != nil {
		return fmt.Errorf("list learnings: %w", err)
	}

	entries := feed.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(cmd.Root().Writer, "No entries yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, web.FormatDate(e.CreatedAt, time.Local), oneLine(e.Content))
	}
	return tw.Flush()
}

func add(ctx context.Context, cmd *cli.Command) error {
	c := remote(cmd)
	composer := client.NewComposer(c, client.NewFeed(c), nil)
	composer.SetText(strings.Join(cmd.Args().Slice(), " "))

	if err := composer.Submit(ctx); err != nil {
		if errors.Is(err, apperr.ErrEmptyContent) {
			return errors.New("nothing to add: text is empty")
		}
		return fmt.Errorf("add learning: %w", err)
	}
	fmt.Fprintln(cmd.Root().Writer, "Added.")
	return nil
}

func edit(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return errors.New("usage: edit <id> <text>")
	}
	id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", cmd.Args().First())
	}

	c := remote(cmd)
	feed := client.NewFeed(c)
	if err := feed.Reload(ctx); err != nil {
		return fmt.Errorf("load learnings: %w", err)
	}
	entry, ok := feed.Find(id)
	if !ok {
		return fmt.Errorf("entry %d: %w", id, apperr.ErrNotFound)
	}

	editor := client.NewEditor(c, feed, nil)
	editor.Open(entry)
	editor.SetBuffer(strings.Join(cmd.Args().Tail(), " "))
	if err := editor.Save(ctx); err != nil {
		return fmt.Errorf("edit learning %d: %w", id, err)
	}
	fmt.Fprintln(cmd.Root().Writer, "Saved.")
	return nil
}

// oneLine collapses newlines so each entry fits one table row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func main() {
	cmd := &cli.Command{
		Name:    "learnings",
		Usage:   "Daily learning journal with a web UI, JSON API and MCP tools",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Base URL of a running learnings server (list, add, edit)",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("LEARNINGS_SERVER"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdio",
				Action: mcp,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: migrate,
			},
			{
				Name:   "list",
				Usage:  "List learnings, newest first",
				Action: list,
			},
			{
				Name:      "add",
				Usage:     "Record a new learning",
				ArgsUsage: "<text>",
				Action:    add,
			},
			{
				Name:      "edit",
				Usage:     "Replace the text of a learning",
				ArgsUsage: "<id> <text>",
				Action:    edit,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
