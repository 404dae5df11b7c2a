package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "*", cfg.Parser.CommentMarker)
	assert.True(t, cfg.Parser.Normalize)
	assert.True(t, cfg.Parser.AutoJunk)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "necdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  json: true
  add_source: true
parser:
  comment_marker: ""
  cards:
    EX:
      - {name: type, kind: int, required: true}
      - {name: tag, kind: int, required: true}
      - {name: segment, kind: int, required: true}
store:
  path: /var/lib/necdeck/reports.db
server:
  port: 9090
  read_timeout: 5s
watch:
  debounce: 250ms
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Log.JSON)
	assert.True(t, cfg.Log.AddSource)
	assert.Equal(t, "", cfg.Parser.CommentMarker)
	assert.True(t, cfg.Parser.Normalize, "unset keys keep defaults")
	require.Len(t, cfg.Parser.Cards["EX"], 3)
	assert.Equal(t, FieldConfig{Name: "tag", Kind: "int", Required: true}, cfg.Parser.Cards["EX"][1])
	assert.Equal(t, "/var/lib/necdeck/reports.db", cfg.Store.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "server: [1"},
		{"port", "server:\n  port: 70000"},
		{"request size", "server:\n  max_request_size: 0"},
		{"debounce", "watch:\n  debounce: -1s"},
		{"unknown kind", "parser:\n  cards:\n    XX:\n      - {name: a, kind: complex}"},
		{"empty card", "parser:\n  cards:\n    XX: []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
