package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mhpenta/imageedit"
	"github.com/spf13/cobra"
)

func (a *app) generateCmd() *cobra.Command {
	var (
		edits  []string
		images []string
		outDir string
		model  string
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate an image, then apply follow-up edits",
		Long: `Generate an image from a prompt and apply each --edit prompt to the result in turn.

Reference images given with --image go out with the first prompt only. Every
turn's image is written to the output directory.`,
		Example: `  imageedit generate "a cozy coffee shop" --edit "add plants" --edit "make it evening"
  imageedit generate "put this cat on a beach" --image cat.png --out ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if model != "" {
				a.cfg.Model = model
			}
			if outDir == "" {
				outDir = a.cfg.SaveDir
			}
			if outDir == "" {
				outDir = "."
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m, err := a.manager(ctx, outDir)
			if err != nil {
				return err
			}
			defer m.Close()

			conv := m.StartConversation(imageedit.WithConversationConfig(a.cfg.GenerateConfig()))

			if len(images) > 0 {
				encoded := make([]string, 0, len(images))
				for _, path := range images {
					img, err := imageedit.LoadImageFile(path)
					if err != nil {
						return fmt.Errorf("loading %s: %w", path, err)
					}
					encoded = append(encoded, img.String())
				}
				if err := conv.Stage(encoded...); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			prompts := append([]string{args[0]}, edits...)
			for i, prompt := range prompts {
				fmt.Fprintf(w, "%s %s\n", titleStyle.Render(fmt.Sprintf("Turn %d [%s]", i+1, conv.Mode())), prompt)

				out, err := conv.Submit(ctx, prompt)
				if errors.Is(err, imageedit.ErrNoImageProduced) {
					fmt.Fprintln(w, warnStyle.Render("  no image returned"))
					if d := out.Description(); d != "" {
						fmt.Fprintln(w, "  "+dimStyle.Render(d))
					}
					return fmt.Errorf("turn %d: %w", i+1, err)
				}
				if err != nil {
					return fmt.Errorf("turn %d: %w", i+1, err)
				}

				if d := out.Description(); d != "" {
					fmt.Fprintln(w, "  "+dimStyle.Render(d))
				}

				saved, err := m.SaveImage(ctx, *out.Image, fmt.Sprintf("%s-turn%02d", conv.ID()[:8], i+1))
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "  saved "+pathStyle.Render(filepath.Join(outDir, saved.Path)))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&edits, "edit", "e", nil, "Follow-up edit prompt (repeatable)")
	cmd.Flags().StringSliceVarP(&images, "image", "i", nil, "Reference image file for the first turn (repeatable)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for generated images (default from config, then .)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to use (see 'imageedit models')")
	return cmd
}
