// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mecfs-explorer/internal/store"
	"github.com/pdiddy/mecfs-explorer/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers with their tags to YAML or JSON",
	Long: `Export writes every stored paper (or the subset matching --condition and
--tag) with its mechanism tags. Output goes to stdout unless --output is set.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := st.Export(cmd.Context(), w, filter, store.ExportFormat(format)); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	}
	return nil
}

func filterFromFlags(cmd *cobra.Command) (store.Filter, error) {
	var f store.Filter
	if c, _ := cmd.Flags().GetString("condition"); c != "" {
		cond, err := types.ParseCondition(c)
		if err != nil {
			return f, err
		}
		f.Condition = cond
	}
	f.Tag, _ = cmd.Flags().GetString("tag")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	return f, nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().String("condition", "", `filter by condition: "ME/CFS" or "Long COVID"`)
	exportCmd.Flags().String("tag", "", "filter by mechanism tag")
	exportCmd.Flags().Int("limit", 0, "maximum number of papers (0 for all)")
	exportCmd.Flags().String("output", "", "write to this file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}
