package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize photos on the local filesystem",
		Long: `normalize resizes photos into a bounding box and re-encodes them as JPEG,
the same way the upload service does.

Examples:
  normalize resize in.png out.jpg --max-width 1920 --max-height 1920
  normalize thumbnail in.jpg thumb.jpg --size 400
  normalize inspect in.jpg`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newResizeCmd(logger),
		newThumbnailCmd(logger),
		newInspectCmd(),
	)
	return root
}
