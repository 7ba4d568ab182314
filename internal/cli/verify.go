package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confpack/confpack/internal/jsonio"
	"github.com/confpack/confpack/internal/ui"
	"github.com/confpack/confpack/internal/verify"
)

var verifyMax int

var verifyCmd = &cobra.Command{
	Use:   "verify <output-dir>",
	Short: "Audit a written output tree",
	Long: `Verify re-reads the entities, indexes, and views of a finished export and
checks every structural contract: store shape, reference closure, bucket
ordering, and view field allow-lists.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir := args[0]

		snap := verify.Snapshot{}
		var err error
		if snap.Entities, err = readOutputSection(filepath.Join(outputDir, "entities")); err != nil {
			return err
		}
		if snap.Indexes, err = readOutputSection(filepath.Join(outputDir, "indexes")); err != nil {
			return err
		}
		if snap.Views, err = readOutputSection(filepath.Join(outputDir, "views")); err != nil {
			return err
		}

		issues := verify.Run(snap)
		if len(issues) > 0 {
			fmt.Println(ui.Errorf("verify failed %s", ui.Count(len(issues), "issue", "issues")))
			fmt.Println(verify.FormatIssues(issues, verifyMax))
			return fmt.Errorf("%d verification issues", len(issues))
		}
		fmt.Println(ui.Success("verify ok"))
		return nil
	},
}

// readOutputSection decodes every JSON file of one section directory, keyed
// by artifact name.
func readOutputSection(dir string) (map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	out := make(map[string]any, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		decoded, err := jsonio.DecodeFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(entry.Name(), ".json")] = decoded
	}
	return out, nil
}

func init() {
	verifyCmd.Flags().IntVar(&verifyMax, "max-issues", 20, "Maximum issues to print (0 for all)")
	rootCmd.AddCommand(verifyCmd)
}
