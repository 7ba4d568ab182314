package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confpack/confpack/internal/export"
	"github.com/confpack/confpack/internal/source"
	"github.com/confpack/confpack/internal/summary"
	"github.com/confpack/confpack/internal/ui"
)

var (
	exportOut     string
	exportEmitRaw bool
	exportStrict  bool
	exportVerify  bool
	exportOffline bool
	exportMeta    string
)

var exportCmd = &cobra.Command{
	Use:   "export <conference-code>",
	Short: "Fetch a conference and write its output tree",
	Long: `Export fetches the conference record and all raw collections, validates
them, builds entities, indexes, views, and derived artifacts, and writes the
result under <out>/<code>/. Every successful online fetch also updates the
local snapshot, so --offline can rebuild without the backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := args[0]

		outDir := exportOut
		if outDir == "" {
			outDir = getConfig().GetOutputDir()
		}

		snap, err := source.OpenSnapshot(getConfig().GetSnapshotPath())
		if err != nil {
			return err
		}
		defer snap.Close()

		var src source.Source
		if exportOffline {
			src = snap
		} else {
			src = source.NewRecording(newBackendClient(), snap)
		}

		opts := export.Options{
			Code:    code,
			OutDir:  outDir,
			EmitRaw: exportEmitRaw,
			Strict:  exportStrict,
			Verify:  exportVerify,
			Logf: func(format string, a ...any) {
				fmt.Printf(format+"\n", a...)
			},
		}
		if exportMeta != "" {
			meta, err := source.LoadMetaFile(exportMeta)
			if err != nil {
				return err
			}
			opts.Meta = meta
		}

		report, err := export.Run(cmd.Context(), src, opts)
		if err != nil {
			return err
		}

		if report.Validation.Clean() {
			fmt.Println(ui.Successf("exported %s in %.2fs",
				ui.Accent.Render(report.Meta.Code), report.Duration.Seconds()))
		} else {
			fmt.Println(ui.Warningf("exported %s in %.2fs %s",
				ui.Accent.Render(report.Meta.Code), report.Duration.Seconds(),
				ui.Count(len(report.Validation.Warnings), "warning", "warnings")))
		}
		fmt.Println(ui.Hint("output: " + report.OutputDir))
		if report.Output != nil && len(report.Output.Summary.LargestFiles) > 0 {
			fmt.Println(ui.Muted.Render("largest files:"))
			for _, line := range largestFileLines(report.Output.Summary.LargestFiles) {
				fmt.Println(ui.Muted.Render("  " + line))
			}
		}
		return nil
	},
}

// largestFileLines formats the summary's largest-files entries for display.
func largestFileLines(files []summary.LargeFile) []string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("%s (%d KB)", f.Name, f.SizeKb))
	}
	return lines
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output root directory (default from config)")
	exportCmd.Flags().BoolVar(&exportEmitRaw, "emit-raw", false, "Also write the raw collections under raw/")
	exportCmd.Flags().BoolVar(&exportStrict, "strict", false, "Treat validation warnings as fatal")
	exportCmd.Flags().BoolVar(&exportVerify, "verify", false, "Audit built artifacts before writing")
	exportCmd.Flags().BoolVar(&exportOffline, "offline", false, "Build from the local snapshot without fetching")
	exportCmd.Flags().StringVar(&exportMeta, "meta", "", "YAML file overriding the conference record")
	rootCmd.AddCommand(exportCmd)
}
