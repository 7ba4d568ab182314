package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const defaultModulePath = "github.com/confpack/confpack"

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show confpack version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		version, modulePath, commit := "devel", defaultModulePath, ""
		goVersion := runtime.Version()

		if info, ok := readBuildInfo(); ok && info != nil {
			if info.Main.Path != "" {
				modulePath = info.Main.Path
			}
			if info.Main.Version != "" && info.Main.Version != "(devel)" {
				version = info.Main.Version
			}
			if info.GoVersion != "" {
				goVersion = info.GoVersion
			}
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					commit = setting.Value
				}
			}
		}

		fmt.Printf("confpack %s\n", version)
		fmt.Printf("module: %s\n", modulePath)
		if commit != "" {
			fmt.Printf("commit: %s\n", commit)
		}
		fmt.Printf("go: %s\n", strings.TrimPrefix(goVersion, "go version "))
		fmt.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
