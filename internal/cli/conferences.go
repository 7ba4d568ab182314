package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/confpack/confpack/internal/ui"
)

var conferencesLimit int

var conferencesCmd = &cobra.Command{
	Use:   "conferences",
	Short: "List recently updated conferences on the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spinner := ui.NewSpinner("Fetching conferences")
		spinner.Start()
		list, err := newBackendClient().Conferences(cmd.Context(), conferencesLimit)
		spinner.Stop()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println(ui.Hint("no conferences"))
			return nil
		}
		for _, meta := range list {
			line := ui.AccentBold.Render(meta.Code)
			if meta.Name != "" {
				line += "  " + meta.Name
			}
			if meta.Timezone != "" {
				line += "  " + ui.Muted.Render(meta.Timezone)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	conferencesCmd.Flags().IntVar(&conferencesLimit, "limit", 10, "Maximum conferences to list")
	rootCmd.AddCommand(conferencesCmd)
}
