package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/othala/internal"
	"github.com/starford/othala/internal/builder"
	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/graphservice"
	"github.com/starford/othala/internal/mcpserver"
	"github.com/starford/othala/internal/storage"
	pkgconfig "github.com/starford/othala/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !cmd.IsSet("config") {
		// No config file and none requested: run on defaults.
		return cfg, nil
	}
	if err := pkgconfig.Load(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// buildGraph does a one-shot parallel build of the graph from a vault
// directory, reporting parse failures on stderr.
func buildGraph(vaultPath string) (*graph.Graph, error) {
	vault, err := storage.NewFS(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	files, err := vault.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}

	g := builder.Build(files, builder.WithSink(func(path string, err error) {
		fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
	}))
	return g, nil
}

func export(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	g, err := buildGraph(cfg.Vault.Path)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := cmd.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := graph.WriteGraph(g, out); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}

	stats := g.ComputeStats()
	fmt.Fprintf(os.Stderr, "exported %d pages, %d links, %d orphans\n",
		stats.PageCount, stats.TotalLinks, stats.OrphanPages)
	return nil
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	g, err := buildGraph(cfg.Vault.Path)
	if err != nil {
		return err
	}

	srv := mcpserver.New(graphservice.New(g))
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "othala",
		Usage:  "Outline-note graph engine with backlinks, analytics, and a REST API over a Markdown vault",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server and file watcher",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "export",
				Usage:  "Build the graph once and write it as JSON",
				Action: export,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (defaults to stdout)",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the graph over the Model Context Protocol on stdio",
				Action: serveMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
