package cmd

import (
	"fmt"

	"github.com/pfa/go-eigrp/state"
	"github.com/spf13/cobra"
)

// initCmd scaffolds a node configuration with protocol defaults.
var initCmd = &cobra.Command{
	Use:   "init <node-id>",
	Short: "Write a starter node configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &state.LocalCfg{
			Id:        state.NodeId(args[0]),
			RouterId:  1,
			ASN:       1,
			AdminBind: state.DefaultAdminBind,
		}
		cfg.ApplyDefaults()
		if err := state.ConfigValidator(cfg); err != nil {
			return err
		}
		if err := state.WriteConfig(configPath, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
