package roommap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMap(t *testing.T, content string) (dir, name string) {
	t.Helper()
	dir = t.TempDir()
	name = "room.json"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return dir, name
}

const validMap = `{
  "name": "cell",
  "size": [2, 3],
  "layers": {
    "solid": [
      ["", "rock", "NOTHING"],
      ["", "", ""]
    ]
  }
}`

func TestLoad(t *testing.T) {
	dir, name := writeMap(t, validMap)

	m, err := Load(dir, name)
	require.NoError(t, err)
	assert.Equal(t, "cell", m.Name)
	assert.Equal(t, 2, m.Height)
	assert.Equal(t, 3, m.Width)

	assert.True(t, m.Passable(0, 0))
	assert.False(t, m.Passable(0, 1), "rock tile is solid")
	assert.True(t, m.Passable(0, 2), "explicit NOTHING is passable")
	assert.False(t, m.Passable(-1, 0))
	assert.False(t, m.Passable(0, 3))
	assert.False(t, m.Passable(2, 0))
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "nope"},
		{"zero size", `{"name":"x","size":[0,0],"layers":{"solid":[]}}`},
		{"missing solid layer", `{"name":"x","size":[1,1],"layers":{}}`},
		{"row count mismatch", `{"name":"x","size":[2,1],"layers":{"solid":[[""]]}}`},
		{"row width mismatch", `{"name":"x","size":[1,2],"layers":{"solid":[[""]]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, name := writeMap(t, tt.content)
			_, err := Load(dir, name)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "absent.json")
	assert.Error(t, err)
}

func TestAtUnknownLayerReadsNothing(t *testing.T) {
	dir, name := writeMap(t, validMap)
	m, err := Load(dir, name)
	require.NoError(t, err)
	assert.Equal(t, Nothing, m.At("water", 0, 0))
}
