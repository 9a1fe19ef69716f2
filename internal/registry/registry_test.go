package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/adapterhub/internal/shared/types"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	assert.True(t, r.IsValidAdapterID("pdf-extractor"))
	assert.False(t, r.IsValidAdapterID("not-a-real-adapter"))
	assert.Equal(t, types.AdapterTypeNotification, r.AdapterType("slack-notifier"))
	assert.Equal(t, types.AdapterTypeUnknown, r.AdapterType("not-a-real-adapter"))
	assert.Equal(t, len(builtin), r.Len())
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		def     types.AdapterDefinition
		wantErr string
	}{
		{name: "empty id", def: types.AdapterDefinition{Type: types.AdapterTypeLogging}, wantErr: "cannot be empty"},
		{name: "bad type", def: types.AdapterDefinition{ID: "x", Type: "magic"}, wantErr: "invalid type"},
		{name: "duplicate", def: types.AdapterDefinition{ID: "audit-logger", Type: types.AdapterTypeLogging}, wantErr: "already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Default().Register(tt.def)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegisterDefaultsName(t *testing.T) {
	r, err := New(types.AdapterDefinition{ID: "ocr", Type: types.AdapterTypeExtraction})
	require.NoError(t, err)

	def, ok := r.Get("ocr")
	require.True(t, ok)
	assert.Equal(t, "ocr", def.Name)
}

func TestListFiltersAndSorts(t *testing.T) {
	r := Default()

	all := r.List(nil)
	require.Len(t, all, len(builtin))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	extraction := types.AdapterTypeExtraction
	got := r.List(&extraction)
	require.Len(t, got, 2)
	assert.Equal(t, "docx-extractor", got[0].ID)
	assert.Equal(t, "pdf-extractor", got[1].ID)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
adapters:
  - id: invoice-extractor
    name: Invoice Extractor
    type: extraction
  - id: teams-notifier
    type: notification
    description: Posts to Teams
`)

	r, err := Parse(data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, types.AdapterTypeNotification, r.AdapterType("teams-notifier"))

	def, _ := r.Get("teams-notifier")
	assert.Equal(t, "Posts to Teams", def.Description)
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
[[adapters]]
id = "audit-sink"
type = "logging"

[[adapters]]
id = "geo-enricher"
name = "Geo Enricher"
type = "enrichment"
`)

	r, err := Parse(data, FormatTOML)
	require.NoError(t, err)
	assert.True(t, r.IsValidAdapterID("audit-sink"))
	assert.Equal(t, types.AdapterTypeEnrichment, r.AdapterType("geo-enricher"))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("adapters: []"), FormatYAML)
	assert.ErrorContains(t, err, "no adapters")

	_, err = Parse([]byte("adapters: [\n"), FormatYAML)
	assert.ErrorContains(t, err, "YAML parse error")

	_, err = Parse([]byte("x"), "json")
	assert.ErrorContains(t, err, "unsupported manifest format")

	_, err = Parse([]byte("adapters:\n  - id: a\n    type: bogus\n"), FormatYAML)
	assert.ErrorContains(t, err, "invalid type")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adapters.yml")
	require.NoError(t, os.WriteFile(path, []byte("adapters:\n  - id: a\n    type: logging\n"), 0o600))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, r.IsValidAdapterID("a"))

	_, err = LoadFile(filepath.Join(dir, "adapters.json"))
	assert.ErrorContains(t, err, "unsupported manifest extension")

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	assert.ErrorContains(t, err, "read manifest")
}
