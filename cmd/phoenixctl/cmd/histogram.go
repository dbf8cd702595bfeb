package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/examples/histogram"
)

var histogramInput string

var histogramCmd = &cobra.Command{
	Use:     "histogram",
	Short:   "Build a 24-bit color histogram from a BMP image",
	Example: `  phoenixctl histogram -i ./image.bmp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(histogramInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		pixels, err := histogram.DecodeBMP24(data)
		if err != nil {
			return fmt.Errorf("failed to decode bitmap: %w", err)
		}

		log := GetLogger()
		log.Info("decoded %d pixels from %s", len(pixels), histogramInput)

		buckets, err := histogram.Run(pixels, RuntimeConfig())
		if err != nil {
			return fmt.Errorf("histogram failed: %w", err)
		}

		var blue, green, red uint64
		for _, b := range buckets {
			switch {
			case b.Key < 256:
				blue += b.Count
			case b.Key < 512:
				green += b.Count
			default:
				red += b.Count
			}
		}
		fmt.Printf("blue samples:  %d\n", blue)
		fmt.Printf("green samples: %d\n", green)
		fmt.Printf("red samples:   %d\n", red)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(histogramCmd)
	histogramCmd.Flags().StringVarP(&histogramInput, "input", "i", "", "Input 24-bit BMP file (required)")
	histogramCmd.MarkFlagRequired("input")
}
