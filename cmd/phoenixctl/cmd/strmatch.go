package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/examples/strmatch"
)

var strmatchInput string

var strmatchCmd = &cobra.Command{
	Use:     "strmatch",
	Short:   "Search a word list for ciphered target words",
	Example: `  phoenixctl strmatch -i ./words.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(strmatchInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		log := GetLogger()
		log.Info("scanning %s for %d target words", strmatchInput, len(strmatch.DefaultTargets))

		matches, err := strmatch.Run(string(data), strmatch.DefaultTargets, RuntimeConfig())
		if err != nil {
			return fmt.Errorf("strmatch failed: %w", err)
		}

		fmt.Printf("%d matches\n", len(matches))
		for _, m := range matches {
			fmt.Println(m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strmatchCmd)
	strmatchCmd.Flags().StringVarP(&strmatchInput, "input", "i", "", "Input word list, one candidate per line (required)")
	strmatchCmd.MarkFlagRequired("input")
}
