package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fetzsav/dice/internal/face"
)

var facesThresholds []int

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Print the brightness range each die face covers",
	Args:  cobra.NoArgs,
	RunE:  runFaces,
}

func init() {
	facesCmd.Flags().IntSliceVar(&facesThresholds, "thresholds", nil, "upper brightness bound of faces 1-5")
	rootCmd.AddCommand(facesCmd)
}

func runFaces(_ *cobra.Command, _ []string) error {
	t := face.DefaultThresholds
	if len(facesThresholds) > 0 {
		var err error
		if t, err = face.ParseThresholds(facesThresholds); err != nil {
			return err
		}
	}
	fmt.Println()
	for _, id := range face.All {
		lo, hi := t.Range(id)
		fmt.Printf("  %d  %3d..%3d\n", id, lo, hi)
	}
	fmt.Println()
	return nil
}
