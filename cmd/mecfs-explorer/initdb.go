// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the papers and paper_tags tables if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), loadConfig())
		if err != nil {
			return err
		}
		defer st.Close()
		fmt.Printf("Schema ready (%s)\n", st.Dialect())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
