package report

// Report is the JSON summary written next to a build's mosaics.
type Report struct {
	Version     int               `json:"version"`
	GeneratedAt string            `json:"generated_at"`
	Preset      string            `json:"preset"`
	BasePath    string            `json:"base_path"`
	BuildInfo   *BuildInfo        `json:"build_info,omitempty"`
	Mosaics     map[string]Mosaic `json:"mosaics"`
	Stats       Stats             `json:"stats"`
}

// BuildInfo captures the settings shared by every mosaic of the build.
type BuildInfo struct {
	Workers      int    `json:"workers"`
	TileSize     int    `json:"tile_size"`
	Tiles        string `json:"tiles"` // tile directory, or "builtin"
	Thresholds   []int  `json:"thresholds"`
	InvertSource bool   `json:"invert_source,omitempty"`
	InvertTiles  bool   `json:"invert_tiles,omitempty"`
	Square       bool   `json:"square,omitempty"`
}

// Mosaic describes one source image and the mosaic built from it.
type Mosaic struct {
	Source    SourceInfo `json:"source"`
	Grid      Grid       `json:"grid"`
	Faces     [6]int     `json:"faces"`             // cells per face, face 1 first
	Missing   int        `json:"missing,omitempty"` // cells left blank
	Captioned bool       `json:"captioned,omitempty"`
	Output    OutputInfo `json:"output"`
}

// SourceInfo holds metadata about the input image.
type SourceInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`  // after the optional square crop
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// Grid is the cell layout of the composited canvas.
type Grid struct {
	Cols       int `json:"cols"`
	Rows       int `json:"rows"`
	TileWidth  int `json:"tile_width"`
	TileHeight int `json:"tile_height"`
}

// Cells returns the number of tiles in the grid.
func (g Grid) Cells() int { return g.Cols * g.Rows }

// OutputInfo is the persisted image.
type OutputInfo struct {
	Path   string `json:"path"` // relative to base_path
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Fitted bool   `json:"fitted,omitempty"`
	Size   int64  `json:"size"` // bytes on disk
	Hash   string `json:"hash"` // 16 hex chars of xxhash64
}

// Stats aggregates build metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalMosaics     int   `json:"total_mosaics"`
	TotalTiles       int   `json:"total_tiles"`
	MissingTiles     int   `json:"missing_tiles,omitempty"`
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1

// FileName is the report's name inside an output directory.
const FileName = "dice.report.json"
