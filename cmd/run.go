package cmd

import (
	"github.com/pfa/go-eigrp/core"
	"github.com/pfa/go-eigrp/rib"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the routing daemon",
	Long: `This will run the DUAL core on the current host. Until a reliable
transport is attached, outbound packets are only logged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		table := rib.New()
		return core.Bootstrap(configPath, verbose, table, nil)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
}
