package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCategories(t *testing.T, path string) []CategoryConfig {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg.Categories
}

func TestSaveCategories_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveCategories(path, []CategoryConfig{{Name: "PERSON", Color: []int{1, 2, 3}, Caption: "Person"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: PERSON")
	assert.Contains(t, string(data), "color: [1, 2, 3]")
	assert.Contains(t, string(data), "caption: Person")
}

func TestSaveCategories_PreservesOtherConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# keep me
auto_reload: false
ui:
  wrap_width: 60 # columns
categories:
  - name: OLD
    color: [0, 0, 0]
`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, SaveCategories(path, []CategoryConfig{{Name: "NEW", Color: []int{4, 5, 6}}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# keep me")
	assert.Contains(t, content, "auto_reload: false")
	assert.Contains(t, content, "wrap_width: 60 # columns")
	assert.Contains(t, content, "name: NEW")
	assert.NotContains(t, content, "OLD")
}

func TestSaveCategories_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveCategories(path, DefaultCategories()))
	require.Equal(t, DefaultCategories(), loadCategories(t, path))
}

func TestSaveCategories_NonMappingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	require.ErrorContains(t, SaveCategories(path, nil), "not a mapping")
}

func TestAddCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	existing := DefaultCategories()
	require.NoError(t, AddCategory(path, CategoryConfig{Name: "EVENT", Color: []int{200, 0, 200}, Caption: "Event"}, existing))

	cats := loadCategories(t, path)
	require.Len(t, cats, len(existing)+1)
	require.Equal(t, "EVENT", cats[len(cats)-1].Name)
	require.Len(t, existing, 4, "input slice is not modified")

	err := AddCategory(path, CategoryConfig{Name: "PERSON", Color: []int{1, 1, 1}}, existing)
	require.ErrorIs(t, err, ErrInvalidCategory)
}

func TestSaveActiveLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))
	require.NoError(t, SaveActiveLabel(path, "ORG"))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, "ORG", v.GetString("active_label"))
	require.Len(t, loadCategories(t, path), 4, "other sections survive")
}
