package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "divisiones": {
    "Refacciones": {"color": "#1F77B4", "abreviatura": "REF", "codigos": ["100", "101"]},
    "Servicio": {"color": "#FF7F0E", "abreviatura": "SER", "codigos": ["200"]}
  },
  "sucursales": {
    "Matriz": {"color": "#390570", "abreviatura": "MTZ"},
    "Norte": {"color": "#0B083D", "abreviatura": "NTE"}
  }
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config_colores.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadResolvesDivisions(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig), PolicyDrop)
	require.NoError(t, err)

	name, ok := cfg.DivisionOf("100")
	assert.True(t, ok)
	assert.Equal(t, "Refacciones", name)

	name, ok = cfg.Resolve("200")
	assert.True(t, ok)
	assert.Equal(t, "Servicio", name)

	assert.Equal(t, []string{"Refacciones", "Servicio"}, cfg.Divisions())
	assert.Equal(t, []string{"Matriz", "Norte"}, cfg.Branches())
	assert.Equal(t, "REF", cfg.AbbrevOf("101"))
	assert.Equal(t, "MTZ", cfg.BranchStyle("Matriz").Abbrev)
}

func TestResolveUnmappedDropPolicy(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig), PolicyDrop)
	require.NoError(t, err)

	_, ok := cfg.Resolve("999")
	assert.False(t, ok, "unmapped code must be excluded under drop policy")
}

func TestResolveUnmappedBucketPolicy(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig), PolicyBucket)
	require.NoError(t, err)

	name, ok := cfg.Resolve("999")
	assert.True(t, ok)
	assert.Equal(t, UnclassifiedDivision, name)
	assert.Equal(t, "SC", cfg.DivisionStyle(name).Abbrev)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), PolicyDrop)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := Load(writeConfig(t, "{not json"), PolicyDrop)
	assert.Error(t, err)
}

func TestLoadRejectsDivisionWithoutCodes(t *testing.T) {
	body := `{
	  "divisiones": {"Vacia": {"color": "#112233", "abreviatura": "VAC", "codigos": []}},
	  "sucursales": {"Matriz": {"color": "#390570", "abreviatura": "MTZ"}}
	}`
	_, err := Load(writeConfig(t, body), PolicyDrop)
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateCode(t *testing.T) {
	body := `{
	  "divisiones": {
	    "A": {"color": "#112233", "abreviatura": "A", "codigos": ["100"]},
	    "B": {"color": "#445566", "abreviatura": "B", "codigos": ["100"]}
	  },
	  "sucursales": {"Matriz": {"color": "#390570", "abreviatura": "MTZ"}}
	}`
	_, err := Load(writeConfig(t, body), PolicyDrop)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	_, err := Load(writeConfig(t, sampleConfig), UnmappedPolicy("wat"))
	assert.Error(t, err)
}
