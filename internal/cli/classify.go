package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/huesort/huesort/internal/pipeline"
)

var (
	// Classify command flags
	classifyWorkers int
	classifyPreview bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <image>...",
	Short: "Classify one or more product images",
	Long: `Classify product images into the configured colour categories.

Each argument is an HTTP(S) URL or a local file path. One line is
printed per image: the reference and the winning category id, or N/A
when the image cannot be classified. A failed image never aborts the
batch.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Classify a remote product photo
  huesort classify https://cdn.example.com/items/1042.jpg

  # Classify a local file with a colour swatch preview
  huesort classify --preview shirt.png

  # Classify a batch with 8 concurrent fetches
  huesort classify -w 8 img1.jpg img2.jpg img3.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().IntVarP(&classifyWorkers, "workers", "w", pipeline.DefaultWorkers, "concurrent analyses")
	classifyCmd.Flags().BoolVar(&classifyPreview, "preview", false, "show dominant colour swatches in terminal")
}

// runClassify executes the classify command.
func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer p.Close()

	results := p.AnalyzeAll(cmd.Context(), args, classifyWorkers)

	preview := classifyPreview && term.IsTerminal(int(os.Stdout.Fd()))
	for _, res := range results {
		if preview && res.OK {
			fmt.Printf("%s\t%s %s\n", res.Ref, res.Label(), swatch(res.Dominant))
		} else {
			fmt.Printf("%s\t%s\n", res.Ref, res.Label())
		}
	}

	return nil
}
