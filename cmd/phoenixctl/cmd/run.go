package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/examples/histogram"
	"github.com/perfwave/phoenix-go/examples/kmeans"
	"github.com/perfwave/phoenix-go/examples/linreg"
	"github.com/perfwave/phoenix-go/examples/matmul"
	"github.com/perfwave/phoenix-go/examples/pca"
	"github.com/perfwave/phoenix-go/examples/strmatch"
	"github.com/perfwave/phoenix-go/examples/wordcount"
)

var runSeed int64

// runCmd exercises every bundled example against small synthetic
// inputs in sequence, useful as a smoke test of the runtime as a whole.
var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Run every bundled example against generated data",
	Example: `  phoenixctl run --threads 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := GetLogger()
		r := rand.New(rand.NewSource(runSeed))
		cfg := RuntimeConfig()

		start := time.Now()

		log.Info("running wordcount")
		counts, err := wordcount.Run("the quick brown fox the lazy dog the fox ran", cfg)
		if err != nil {
			return fmt.Errorf("wordcount: %w", err)
		}
		fmt.Printf("wordcount: %d distinct words\n", len(counts))

		log.Info("running histogram")
		pixels := make([]histogram.Pixel, 256)
		for i := range pixels {
			pixels[i] = histogram.Pixel{B: byte(i), G: byte(i / 2), R: byte(i / 3)}
		}
		buckets, err := histogram.Run(pixels, cfg)
		if err != nil {
			return fmt.Errorf("histogram: %w", err)
		}
		fmt.Printf("histogram: %d buckets\n", len(buckets))

		log.Info("running linreg")
		points := make([]linreg.Point, 50)
		for i := range points {
			points[i] = linreg.Point{X: int64(i), Y: int64(2*i + 1)}
		}
		lr, err := linreg.Run(points, cfg)
		if err != nil {
			return fmt.Errorf("linreg: %w", err)
		}
		fmt.Printf("linreg: y = %.2f + %.2fx\n", lr.A, lr.B)

		log.Info("running matmul")
		n := 8
		a := make([]int, n*n)
		b := make([]int, n*n)
		for i := range a {
			a[i] = r.Intn(10)
			b[i] = r.Intn(10)
		}
		product, err := matmul.Run(a, b, n, cfg)
		if err != nil {
			return fmt.Errorf("matmul: %w", err)
		}
		fmt.Printf("matmul: %d product cells\n", len(product))

		log.Info("running strmatch")
		matches, err := strmatch.Run("nomatch\n"+encodeForStrmatch("Helloworld")+"\nalsonomatch", strmatch.DefaultTargets, cfg)
		if err != nil {
			return fmt.Errorf("strmatch: %w", err)
		}
		fmt.Printf("strmatch: %d matches\n", len(matches))

		log.Info("running kmeans")
		kmPoints := make([]kmeans.Point, 200)
		for i := range kmPoints {
			kmPoints[i] = kmeans.Point{r.Float64() * 100, r.Float64() * 100}
		}
		initial := []kmeans.Point{kmPoints[0], kmPoints[1], kmPoints[2]}
		means, err := kmeans.Run(kmPoints, initial, 20, cfg)
		if err != nil {
			return fmt.Errorf("kmeans: %w", err)
		}
		fmt.Printf("kmeans: %d cluster means\n", len(means))

		log.Info("running pca")
		matrix := make([]int, 10*10)
		for i := range matrix {
			matrix[i] = r.Intn(100)
		}
		pcaMeans, covs, err := pca.Run(matrix, 10, 10, cfg)
		if err != nil {
			return fmt.Errorf("pca: %w", err)
		}
		fmt.Printf("pca: %d means, %d covariance entries\n", len(pcaMeans), len(covs))

		fmt.Printf("\nall examples completed in %s\n", time.Since(start))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "Random seed for generated inputs")
}

func encodeForStrmatch(word string) string {
	b := make([]byte, len(word))
	for i := 0; i < len(word); i++ {
		b[i] = word[i] + 5
	}
	return string(b)
}
