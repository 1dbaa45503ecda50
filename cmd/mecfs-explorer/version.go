package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of mecfs-explorer",
	// Needs no configuration or credentials.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mecfs-explorer %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
