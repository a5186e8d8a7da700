package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/phambaophuc/photo-normalizer/internal/models"
	"github.com/phambaophuc/photo-normalizer/internal/services/normalizer"
	"github.com/phambaophuc/photo-normalizer/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newResizeCmd(logger *zap.Logger) *cobra.Command {
	var (
		maxWidth  int
		maxHeight int
		quality   float64
	)

	cmd := &cobra.Command{
		Use:   "resize <input> <output>",
		Short: "Fit a photo inside a bounding box",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			out, err := normalizer.New().Resize(source, maxWidth, maxHeight, quality)
			if err != nil {
				return err
			}
			return writeOutput(logger, args[1], out)
		},
	}

	cmd.Flags().IntVar(&maxWidth, "max-width", normalizer.DefaultMaxWidth, "Maximum output width in pixels")
	cmd.Flags().IntVar(&maxHeight, "max-height", normalizer.DefaultMaxHeight, "Maximum output height in pixels")
	cmd.Flags().Float64VarP(&quality, "quality", "q", normalizer.DefaultQuality, "JPEG quality in (0, 1]")
	return cmd
}

func newThumbnailCmd(logger *zap.Logger) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "thumbnail <input> <output>",
		Short: "Create a square-bounded thumbnail",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			out, err := normalizer.New().CreateThumbnail(source, size)
			if err != nil {
				return err
			}
			return writeOutput(logger, args[1], out)
		},
	}

	cmd.Flags().IntVarP(&size, "size", "s", normalizer.DefaultThumbnailSize, "Maximum thumbnail side in pixels")
	return cmd
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <input>",
		Short: "Print dimensions and EXIF data as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}

			n := normalizer.New()
			meta, err := n.Inspect(source)
			if err != nil {
				return err
			}

			opts := n.Options()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				*models.PhotoMetadata
				NeedsResizing bool `json:"needs_resizing"`
			}{meta, n.NeedsResizing(source, opts.MaxWidth, opts.MaxHeight)})
		},
	}
}

func readSource(path string) (models.SourceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SourceImage{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return models.SourceImage{Data: data, MIMEType: utils.DetectContentType(data)}, nil
}

func writeOutput(logger *zap.Logger, path string, img *models.NormalizedImage) error {
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info("Wrote image",
		zap.String("path", path),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Int("bytes", len(img.Data)),
	)
	return nil
}
