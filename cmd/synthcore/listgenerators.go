package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/synthcore/pkg/registry"
)

var listGeneratorsCmd = &cobra.Command{
	Use:   "list-generators",
	Short: "List every registered generator family",
	Run: func(cmd *cobra.Command, args []string) {
		for _, e := range registry.List() {
			fmt.Printf("%-16s %s\n", e.ID, e.DisplayName)
		}
	},
}

func init() {
	rootCmd.AddCommand(listGeneratorsCmd)
}
