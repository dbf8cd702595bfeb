package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/examples/wordcount"
)

var (
	wordcountInput string
	wordcountTopN  int
)

var wordcountCmd = &cobra.Command{
	Use:   "wordcount",
	Short: "Count word frequencies in a text file",
	Example: `  phoenixctl wordcount -i ./book.txt --top 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(wordcountInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		log := GetLogger()
		log.Info("running wordcount over %s", wordcountInput)

		counts, err := wordcount.Run(string(data), RuntimeConfig())
		if err != nil {
			return fmt.Errorf("wordcount failed: %w", err)
		}

		log.Info("found %d distinct words", len(counts))
		for _, c := range wordcount.Top(counts, wordcountTopN) {
			fmt.Printf("%10d  %s\n", c.Total, c.Word)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wordcountCmd)
	wordcountCmd.Flags().StringVarP(&wordcountInput, "input", "i", "", "Input text file (required)")
	wordcountCmd.Flags().IntVar(&wordcountTopN, "top", 20, "Number of top words to print")
	wordcountCmd.MarkFlagRequired("input")
}
