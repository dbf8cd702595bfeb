package cmd

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/examples/kmeans"
)

var (
	kmeansPoints    int
	kmeansClusters  int
	kmeansDims      int
	kmeansMaxRounds int
	kmeansSeed      int64
)

var kmeansCmd = &cobra.Command{
	Use:     "kmeans",
	Short:   "Cluster randomly generated points with Lloyd's algorithm",
	Example: `  phoenixctl kmeans -n 10000 -k 4 -d 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := rand.New(rand.NewSource(kmeansSeed))

		points := make([]kmeans.Point, kmeansPoints)
		for i := range points {
			points[i] = randomPoint(r, kmeansDims)
		}

		means := make([]kmeans.Point, kmeansClusters)
		for i := range means {
			means[i] = points[r.Intn(len(points))]
		}

		log := GetLogger()
		log.Info("clustering %d points into %d clusters over %d dimensions", kmeansPoints, kmeansClusters, kmeansDims)

		result, err := kmeans.Run(points, means, kmeansMaxRounds, RuntimeConfig())
		if err != nil {
			return fmt.Errorf("kmeans failed: %w", err)
		}

		for i, m := range result {
			fmt.Printf("cluster %d: %v\n", i, m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kmeansCmd)
	kmeansCmd.Flags().IntVarP(&kmeansPoints, "points", "n", 1000, "Number of points to generate")
	kmeansCmd.Flags().IntVarP(&kmeansClusters, "clusters", "k", 4, "Number of clusters")
	kmeansCmd.Flags().IntVarP(&kmeansDims, "dims", "d", 2, "Point dimensionality")
	kmeansCmd.Flags().IntVar(&kmeansMaxRounds, "max-rounds", 20, "Maximum number of Lloyd's algorithm iterations")
	kmeansCmd.Flags().Int64Var(&kmeansSeed, "seed", 1, "Random seed for point generation")
}

func randomPoint(r *rand.Rand, dims int) kmeans.Point {
	p := make(kmeans.Point, dims)
	for i := range p {
		p[i] = r.Float64() * 100
	}
	return p
}
