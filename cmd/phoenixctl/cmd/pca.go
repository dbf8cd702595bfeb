package cmd

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/examples/pca"
)

var (
	pcaRows int
	pcaCols int
	pcaGrid int
	pcaSeed int64
)

var pcaCmd = &cobra.Command{
	Use:     "pca",
	Short:   "Compute per-row means and a covariance matrix over a random grid",
	Example: `  phoenixctl pca -r 50 -c 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := rand.New(rand.NewSource(pcaSeed))
		matrix := make([]int, pcaRows*pcaCols)
		for i := range matrix {
			matrix[i] = r.Intn(pcaGrid)
		}

		log := GetLogger()
		log.Info("computing PCA statistics over a %dx%d matrix", pcaRows, pcaCols)

		means, covs, err := pca.Run(matrix, pcaRows, pcaCols, RuntimeConfig())
		if err != nil {
			return fmt.Errorf("pca failed: %w", err)
		}

		fmt.Printf("means: %v\n", means)
		var sum int64
		for _, c := range covs {
			sum += c.Value
		}
		fmt.Printf("covariance entries: %d  sum: %d\n", len(covs), sum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pcaCmd)
	pcaCmd.Flags().IntVarP(&pcaRows, "rows", "r", 10, "Number of matrix rows (variables)")
	pcaCmd.Flags().IntVarP(&pcaCols, "cols", "c", 10, "Number of matrix columns (observations)")
	pcaCmd.Flags().IntVarP(&pcaGrid, "grid-size", "s", 100, "Maximum value for a generated element")
	pcaCmd.Flags().Int64Var(&pcaSeed, "seed", 1, "Random seed for matrix generation")
}
