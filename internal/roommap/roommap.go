// Package roommap loads the immutable tile grids rooms are played on.
package roommap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Nothing marks a passable tile inside a layer. An empty string means the
// same thing; map authors use whichever reads better.
const Nothing = "NOTHING"

// LayerSolid is the collision layer every map must provide.
const LayerSolid = "solid"

// Map is one room's tile grid, loaded once and never mutated.
type Map struct {
	Name   string
	Height int
	Width  int

	layers map[string][][]string
}

type mapFile struct {
	Name   string                `json:"name"`
	Size   [2]int                `json:"size"` // [height, width]
	Layers map[string][][]string `json:"layers"`
}

// Load reads a room map JSON file from dir/fileName.
func Load(dir, fileName string) (*Map, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading room map %s: %w", path, err)
	}

	var mf mapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing room map %s: %w", path, err)
	}

	m := &Map{
		Name:   mf.Name,
		Height: mf.Size[0],
		Width:  mf.Size[1],
		layers: mf.Layers,
	}
	if m.Height <= 0 || m.Width <= 0 {
		return nil, fmt.Errorf("room map %s: bad size %dx%d", path, m.Height, m.Width)
	}

	solid, ok := m.layers[LayerSolid]
	if !ok {
		return nil, fmt.Errorf("room map %s: missing %q layer", path, LayerSolid)
	}
	if len(solid) != m.Height {
		return nil, fmt.Errorf("room map %s: %q layer has %d rows, want %d", path, LayerSolid, len(solid), m.Height)
	}
	for y, row := range solid {
		if len(row) != m.Width {
			return nil, fmt.Errorf("room map %s: %q row %d has %d tiles, want %d", path, LayerSolid, y, len(row), m.Width)
		}
	}

	return m, nil
}

// InBounds reports whether (y, x) lies on the grid.
func (m *Map) InBounds(y, x int) bool {
	return y >= 0 && y < m.Height && x >= 0 && x < m.Width
}

// At returns the tile kind at (y, x) in the named layer.
// Out-of-bounds or unknown layers read as Nothing.
func (m *Map) At(layer string, y, x int) string {
	rows, ok := m.layers[layer]
	if !ok || !m.InBounds(y, x) {
		return Nothing
	}
	return rows[y][x]
}

// Passable reports whether an avatar may stand on (y, x): in bounds and
// nothing solid there.
func (m *Map) Passable(y, x int) bool {
	if !m.InBounds(y, x) {
		return false
	}
	tile := m.At(LayerSolid, y, x)
	return tile == Nothing || tile == ""
}
