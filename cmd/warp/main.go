// warp is the WARP (Wellness After Resolution Protocol) bot: it watches
// incident.io for freshly resolved incidents and walks the incident lead
// through a wellness ritual over Slack.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "warp",
	Short: "warp - Wellness After Resolution Protocol bot",
	Long: `WARP notifies an incident lead shortly after their incident resolves
with an interactive wellness ritual delivered via Slack DM, then logs
completion. Praise Kier.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("warp version %s\n", Version)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.Flags().Bool("version", false, "Print version and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
