// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mecfs-explorer/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show paper and tag counts",
	Long: `Stats prints the number of stored papers and tag rows, then the paper
count per condition and the paper count per mechanism tag.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.Counts(cmd.Context())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatStats(os.Stdout, counts, jsonOutput)
}

func formatStats(w io.Writer, c store.Counts, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	fmt.Fprintf(w, "Papers: %d\n", c.Papers)
	fmt.Fprintf(w, "Tags:   %d\n", c.Tags)

	writeSection := func(title string, rows []store.LabelCount) {
		fmt.Fprintf(w, "\n%-30s  %s\n", title, "Count")
		fmt.Fprintln(w, strings.Repeat("-", 37))
		if len(rows) == 0 {
			fmt.Fprintln(w, "(none)")
			return
		}
		for _, r := range rows {
			fmt.Fprintf(w, "%-30s  %5d\n", r.Label, r.Count)
		}
	}
	writeSection("Condition", c.ByCondition)
	writeSection("Tag", c.ByTag)
	return nil
}

func init() {
	statsCmd.Flags().Bool("json", false, "output counts as JSON")

	rootCmd.AddCommand(statsCmd)
}
