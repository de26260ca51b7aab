package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eigrpd",
	Short: "EIGRP routing daemon",
	Long: `eigrpd runs the DUAL (Diffusing Update Algorithm) core of EIGRP: it keeps a
per-destination topology table, selects loop-free successor routes, and runs
bounded diffusing computations when a route is lost without a safe backup.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "eigrp.yaml", "node configuration file")
}
