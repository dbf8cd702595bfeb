package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/perfwave/phoenix-go/examples/linreg"
)

var linregInput string

var linregCmd = &cobra.Command{
	Use:     "linreg",
	Short:   "Fit a linear regression over (x, y) integer samples",
	Example: `  phoenixctl linreg -i ./points.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := readPoints(linregInput)
		if err != nil {
			return err
		}

		log := GetLogger()
		log.Info("fitting regression over %d points", len(points))

		r, err := linreg.Run(points, RuntimeConfig())
		if err != nil {
			return fmt.Errorf("linreg failed: %w", err)
		}

		fmt.Printf("y = %.6f + %.6fx\n", r.A, r.B)
		fmt.Printf("xbar = %.6f  ybar = %.6f  r2 = %.6f\n", r.XBar, r.YBar, r.R2)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linregCmd)
	linregCmd.Flags().StringVarP(&linregInput, "input", "i", "", "Input file of whitespace-separated \"x y\" samples, one per line (required)")
	linregCmd.MarkFlagRequired("input")
}

func readPoints(path string) ([]linreg.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var points []linreg.Point
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed sample line: %q", line)
		}
		x, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid x value %q: %w", fields[0], err)
		}
		y, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid y value %q: %w", fields[1], err)
		}
		points = append(points, linreg.Point{X: x, Y: y})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
