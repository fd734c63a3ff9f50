package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mhpenta/imageedit"
	"github.com/mhpenta/imageedit/internal/config"
	"github.com/mhpenta/imageedit/provider/gemini"
	"github.com/spf13/cobra"
)

var version = "dev"

// app holds what the subcommands share once flags are parsed.
type app struct {
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *slog.Logger

	newProvider func(ctx context.Context, pc *imageedit.ProviderConfig) (imageedit.Provider, error)
	catalog     func() []imageedit.ModelInfo
}

func newApp() *app {
	return &app{
		newProvider: newGeminiProvider,
		catalog:     gemini.Catalog,
	}
}

func newGeminiProvider(ctx context.Context, pc *imageedit.ProviderConfig) (imageedit.Provider, error) {
	p, err := gemini.New(ctx, pc)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imageedit",
		Short: "Generate images and refine them conversationally",
		Long: `Generate an image from a prompt, then keep editing it with follow-up prompts.

The first turn sends any reference images you supply; every later turn sends
only the most recent generated image together with the conversation so far.

Quick Start:
  imageedit generate "a red circle" --edit "make it blue"
  imageedit serve --listen :8080
  imageedit models`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.AddCommand(a.serveCmd(), a.generateCmd(), a.modelsCmd())
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

// manager builds a Manager over the configured provider. A non-empty saveDir
// becomes its image storage.
func (a *app) manager(ctx context.Context, saveDir string) (*imageedit.Manager, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	p, err := a.newProvider(ctx, a.cfg.ProviderConfig())
	if err != nil {
		return nil, err
	}

	opts := []imageedit.ManagerOption{
		imageedit.WithLogger(a.logger),
		imageedit.WithDefaultModel(imageedit.Model(a.cfg.Model)),
	}
	if saveDir != "" {
		opts = append(opts, imageedit.WithStorage(imageedit.DirStorage{Root: saveDir}))
	}
	m := imageedit.NewManager(p, opts...)

	if _, ok := m.GetModelInfo(imageedit.Model(a.cfg.Model)); !ok {
		m.Close()
		return nil, fmt.Errorf("%w: %s (available: %v)", imageedit.ErrModelNotRegistered, a.cfg.Model, m.ListModels())
	}
	return m, nil
}
