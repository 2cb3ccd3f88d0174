package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// New creates an empty report.
func New(preset string) *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Preset:      preset,
		BasePath:    "./",
		Mosaics:     make(map[string]Mosaic),
	}
}

// ComputeStats recalculates aggregate statistics from the mosaics.
func (r *Report) ComputeStats() {
	var s Stats
	s.TotalMosaics = len(r.Mosaics)
	for _, m := range r.Mosaics {
		s.TotalInputBytes += m.Source.Size
		s.TotalOutputBytes += m.Output.Size
		s.TotalTiles += m.Grid.Cells()
		s.MissingTiles += m.Missing
	}
	r.Stats = s
}

// FaceTotals sums the face histograms of all mosaics.
func (r *Report) FaceTotals() [6]int {
	var out [6]int
	for _, m := range r.Mosaics {
		for i, n := range m.Faces {
			out[i] += n
		}
	}
	return out
}

// WriteJSON serializes the report with stable ordering.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a report written by WriteJSON.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}
