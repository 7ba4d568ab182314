package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/confpack/confpack/internal/ids"
	"github.com/confpack/confpack/internal/jsonio"
	"github.com/confpack/confpack/internal/ui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <output-dir> <document|article> <id>",
	Short: "Render a stored document or article in the terminal",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, kind, rawID := args[0], args[1], args[2]

		id, ok := ids.Normalize(rawID)
		if !ok {
			return fmt.Errorf("invalid id %q", rawID)
		}

		var file, titleKey, bodyKey string
		switch kind {
		case "document":
			file, titleKey, bodyKey = "documents", "titleText", "bodyText"
		case "article":
			file, titleKey, bodyKey = "articles", "name", "text"
		default:
			return fmt.Errorf("unknown kind %q (want document or article)", kind)
		}

		decoded, err := jsonio.DecodeFile(filepath.Join(outputDir, "entities", file+".json"))
		if err != nil {
			return err
		}
		store, ok := decoded.(map[string]any)
		if !ok {
			return fmt.Errorf("entities/%s.json is not a store", file)
		}
		byID, _ := store["byId"].(map[string]any)
		record, ok := byID[id.String()].(map[string]any)
		if !ok {
			return fmt.Errorf("%s %s not found", kind, id)
		}

		title, _ := record[titleKey].(string)
		body, _ := record[bodyKey].(string)
		if body == "" {
			return fmt.Errorf("%s %s has no body", kind, id)
		}

		display := ui.NewDisplayContext()
		rendered, err := ui.RenderMarkdown("# "+title+"\n\n"+body,
			display.AvailableWidth(ui.MarkdownRenderMargin))
		if err != nil {
			return fmt.Errorf("render %s %s: %w", kind, id, err)
		}
		fmt.Print(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
