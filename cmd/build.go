package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	pb "github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fetzsav/dice/internal/config"
	"github.com/fetzsav/dice/internal/encoder"
	"github.com/fetzsav/dice/internal/face"
	"github.com/fetzsav/dice/internal/pipeline"
	"github.com/fetzsav/dice/internal/report"
)

var (
	buildOutDir       string
	buildPreset       string
	buildConfigFile   string
	buildTilesDir     string
	buildTileSize     int
	buildInvertSource bool
	buildInvertTiles  bool
	buildSquare       bool
	buildCaption      bool
	buildCaptionFont  string
	buildWidth        int
	buildHeight       int
	buildFormat       string
	buildQuality      int
	buildThresholds   []int
	buildWorkers      int
	buildInteractive  bool
	buildNoReport     bool
)

var buildCmd = &cobra.Command{
	Use:   "build <input>",
	Short: "Build dice mosaics from an image or a directory of images",
	Long: `Converts the input image (or every image below an input directory) to
grayscale, splits it into tile-sized cells and replaces each cell with the
die face matching its average brightness.

Tiles come from a directory of exactly six images, sorted by name to
assign faces 1..6, or from the builtin dice. Output files are named
<key>.dice.png inside --out; for a single input, --out may also be the
output file itself. The run report is written as dice.report.json in the
output directory, or as <name>.report.json next to an explicit output file.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildOutDir, "out", "o", "./dice_out", "output directory or, for a single input, output file")
	f.StringVarP(&buildPreset, "preset", "p", "default", "settings preset ("+strings.Join(config.PresetNames(), ", ")+")")
	f.StringVarP(&buildConfigFile, "config", "c", "", "TOML settings file applied over the preset")
	f.StringVar(&buildTilesDir, "tiles", "", "directory with exactly six face images (default builtin dice)")
	f.IntVarP(&buildTileSize, "tile-size", "s", config.DefaultTileSize, "tile edge in pixels")
	f.BoolVar(&buildInvertSource, "invert-source", false, "invert the source brightness")
	f.BoolVar(&buildInvertTiles, "invert-tiles", false, "invert the tile colors")
	f.BoolVar(&buildSquare, "square", false, "crop the source to its top-left square")
	f.BoolVar(&buildCaption, "caption", false, "draw the tile size/count caption")
	f.StringVar(&buildCaptionFont, "caption-font", "", "TrueType font for the caption (default embedded Go Bold)")
	f.IntVar(&buildWidth, "width", 0, "fit the mosaic into this width (requires --height)")
	f.IntVar(&buildHeight, "height", 0, "fit the mosaic into this height (requires --width)")
	f.StringVarP(&buildFormat, "format", "f", "png", "output format ("+strings.Join(encoder.NewRegistry().Available(), ", ")+")")
	f.IntVarP(&buildQuality, "quality", "q", 0, "JPEG quality 1-100 (0 = default)")
	f.IntSliceVar(&buildThresholds, "thresholds", nil, "upper brightness bound of faces 1-5, e.g. 42,85,128,171,214")
	f.IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.BoolVarP(&buildInteractive, "interactive", "i", false, "ask for the main settings on stdin")
	f.BoolVar(&buildNoReport, "no-report", false, "do not write "+report.FileName)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(buildOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if buildInteractive {
		settings = promptSettings(cmd.InOrStdin(), cmd.OutOrStdout(), settings)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	log.Debugf("input:   %s", absInput)
	log.Debugf("output:  %s", absOutput)
	log.Debugf("preset:  %s (tile=%d, tiles=%q, fit=%dx%d)", settings.Preset,
		settings.TileSize, settings.TilesDir, settings.Output.Width, settings.Output.Height)

	var bar *pb.ProgressBar
	cfg := pipeline.Config{
		Input:    absInput,
		Output:   absOutput,
		Settings: settings,
	}
	if !verbose {
		cfg.OnStart = func(total int) {
			bar = pb.StartNew(total)
		}
		cfg.OnStep = func() { bar.Increment() }
	}

	p := pipeline.New(cfg)
	rep, err := p.Run()
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if !buildNoReport {
		if err := report.WriteJSON(rep, p.ReportPath()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Debugf("report:  %s", p.ReportPath())
	}

	printBuildReport(rep, p.ReportDir(), time.Since(start))
	return nil
}

// resolveSettings layers the preset, the optional config file and the
// flags the user actually set, in that order.
func resolveSettings(cmd *cobra.Command) (config.Config, error) {
	settings, err := config.Preset(buildPreset)
	if err != nil {
		return settings, err
	}
	if buildConfigFile != "" {
		settings, err = config.LoadFile(buildConfigFile, settings)
		if err != nil {
			return settings, err
		}
	}

	f := cmd.Flags()
	if f.Changed("tiles") {
		settings.TilesDir = buildTilesDir
	}
	if f.Changed("tile-size") {
		settings.TileSize = buildTileSize
	}
	if f.Changed("invert-source") {
		settings.InvertSource = buildInvertSource
	}
	if f.Changed("invert-tiles") {
		settings.InvertTiles = buildInvertTiles
	}
	if f.Changed("square") {
		settings.Square = buildSquare
	}
	if f.Changed("caption") {
		settings.Caption = buildCaption
	}
	if f.Changed("caption-font") {
		settings.CaptionFont = buildCaptionFont
	}
	if f.Changed("width") {
		settings.Output.Width = buildWidth
	}
	if f.Changed("height") {
		settings.Output.Height = buildHeight
	}
	if f.Changed("format") {
		settings.Output.Format = buildFormat
	}
	if f.Changed("quality") {
		settings.Output.Quality = buildQuality
	}
	if f.Changed("thresholds") {
		settings.Thresholds = buildThresholds
	}
	if f.Changed("workers") {
		settings.Workers = buildWorkers
	}
	return settings, nil
}

func printBuildReport(r *report.Report, dir string, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║               dice build complete                ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Mosaics:     %d\n", s.TotalMosaics)
	fmt.Printf("  Dice:        %d\n", s.TotalTiles)
	if s.MissingTiles > 0 {
		fmt.Printf("  Blank cells: %d (no tile for their face)\n", s.MissingTiles)
	}
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if r.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", r.BuildInfo.Workers)
		fmt.Printf("  Tiles:       %s @ %dpx\n", r.BuildInfo.Tiles, r.BuildInfo.TileSize)
	}
	fmt.Println()

	printFaceBars(r.FaceTotals())

	keys := make([]string, 0, len(r.Mosaics))
	for k := range r.Mosaics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n := len(keys)
	if n > 10 {
		n = 10
	}
	fmt.Printf("  Outputs (%d of %d) in %s:\n", n, len(keys), dir)
	for _, k := range keys[:n] {
		m := r.Mosaics[k]
		fmt.Printf("    %-40s %4dx%-4d grid → %5dx%-5d %8s\n",
			truncKey(m.Output.Path, 40),
			m.Grid.Cols, m.Grid.Rows,
			m.Output.Width, m.Output.Height,
			formatBytes(m.Output.Size),
		)
	}
	fmt.Println()
}

// printFaceBars draws a small histogram of face usage.
func printFaceBars(totals [6]int) {
	sum := 0
	for _, v := range totals {
		sum += v
	}
	if sum == 0 {
		return
	}
	fmt.Println("  Faces:")
	for i, v := range totals {
		share := float64(v) / float64(sum)
		fmt.Printf("    %d  %-30s %6.1f%%\n", face.All[i], strings.Repeat("█", int(share*30+0.5)), share*100)
	}
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
