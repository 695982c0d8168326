package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/huesort/huesort/internal/colour"
)

// categoriesCmd represents the categories command
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the configured colour categories",
	Long: `List the colour categories from the settings file, with the reference
colour of every synonym. Useful for checking what a classification id
will resolve to.`,
	RunE: runCategories,
}

// runCategories executes the categories command.
func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	preview := term.IsTerminal(int(os.Stdout.Fd()))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tSYNONYMS")
	for _, cat := range cfg.CategoryTable() {
		names := make([]string, len(cat.Synonyms))
		for i, syn := range cat.Synonyms {
			if preview {
				names[i] = fmt.Sprintf("%s %s", swatch(syn.RGB), syn.Name)
			} else {
				names[i] = fmt.Sprintf("%s %s", syn.RGB.Hex(), syn.Name)
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", cat.ID, cat.Name, strings.Join(names, ", "))
	}
	return w.Flush()
}

// swatch renders a truecolor terminal block for an RGB value.
func swatch(rgb colour.RGB) string {
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", rgb.R, rgb.G, rgb.B)
}
