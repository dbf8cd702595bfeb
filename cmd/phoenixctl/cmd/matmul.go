package cmd

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/examples/matmul"
)

var (
	matmulSize int
	matmulGrid int
	matmulSeed int64
)

var matmulCmd = &cobra.Command{
	Use:     "matmul",
	Short:   "Multiply two randomly generated square matrices",
	Example: `  phoenixctl matmul -n 128 -s 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := rand.New(rand.NewSource(matmulSeed))
		a := randomMatrix(r, matmulSize, matmulGrid)
		b := randomMatrix(r, matmulSize, matmulGrid)

		log := GetLogger()
		log.Info("multiplying two %dx%d matrices", matmulSize, matmulSize)

		product, err := matmul.Run(a, b, matmulSize, RuntimeConfig())
		if err != nil {
			return fmt.Errorf("matmul failed: %w", err)
		}

		var checksum int64
		for _, v := range product {
			checksum += int64(v)
		}
		fmt.Printf("product checksum: %d\n", checksum)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matmulCmd)
	matmulCmd.Flags().IntVarP(&matmulSize, "size", "n", 10, "Matrix dimension (n x n)")
	matmulCmd.Flags().IntVarP(&matmulGrid, "grid-size", "s", 100, "Maximum value for a generated element")
	matmulCmd.Flags().Int64Var(&matmulSeed, "seed", 1, "Random seed for matrix generation")
}

func randomMatrix(r *rand.Rand, n, gridSize int) []int {
	m := make([]int, n*n)
	for i := range m {
		m[i] = r.Intn(gridSize)
	}
	return m
}
