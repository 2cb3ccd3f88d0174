package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fetzsav/dice/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_report>",
	Short: "Display statistics for a built mosaic directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := reportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}
	printStats(r)
	return nil
}

func printStats(r *report.Report) {
	fmt.Println()
	fmt.Printf("  Report version:   %d\n", r.Version)
	fmt.Printf("  Generated:        %s\n", r.GeneratedAt)
	fmt.Printf("  Preset:           %s\n", r.Preset)
	if b := r.BuildInfo; b != nil {
		fmt.Printf("  Workers:          %d\n", b.Workers)
		fmt.Printf("  Tiles:            %s @ %dpx\n", b.Tiles, b.TileSize)
		fmt.Printf("  Thresholds:       %v\n", b.Thresholds)
	}
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Total mosaics:    %d\n", s.TotalMosaics)
	fmt.Printf("  Total cells:      %d\n", s.TotalTiles)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Println()

	printFaceBars(r.FaceTotals())

	// Per-format breakdown.
	type formatStat struct {
		count int
		bytes int64
	}
	formats := map[string]formatStat{}
	for _, m := range r.Mosaics {
		fs := formats[m.Output.Format]
		fs.count++
		fs.bytes += m.Output.Size
		formats[m.Output.Format] = fs
	}
	names := make([]string, 0, len(formats))
	for f := range formats {
		names = append(names, f)
	}
	sort.Strings(names)
	fmt.Println("  Format breakdown:")
	for _, f := range names {
		fmt.Printf("    %-6s  %4d files  %s\n", f, formats[f].count, formatBytes(formats[f].bytes))
	}
	fmt.Println()

	// Per-grid breakdown.
	grids := map[string]int{}
	for _, m := range r.Mosaics {
		grids[fmt.Sprintf("%dx%d", m.Grid.Cols, m.Grid.Rows)]++
	}
	sizes := make([]string, 0, len(grids))
	for g := range grids {
		sizes = append(sizes, g)
	}
	sort.Strings(sizes)
	fmt.Println("  Grid breakdown:")
	for _, g := range sizes {
		fmt.Printf("    %11s  %4d mosaics\n", g, grids[g])
	}

	var warnings []string
	for key, m := range r.Mosaics {
		if m.Missing > 0 {
			warnings = append(warnings, fmt.Sprintf("mosaic %q has %d blank cells", key, m.Missing))
		}
	}
	if len(warnings) > 0 {
		sort.Strings(warnings)
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}
