package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartplant/smartplant/internal/model"
)

func sample() []model.PlantProfile {
	return []model.PlantProfile{
		{ID: "monstera-deliciosa", DisplayName: "Monstera deliciosa"},
		{ID: "ficus-lyrata", DisplayName: "Ficus lyrata"},
	}
}

func TestGetDefaultIsFirstEntry(t *testing.T) {
	c := New(sample())
	p := c.Get("")
	require.NotNil(t, p)
	assert.Equal(t, "monstera-deliciosa", p.ID)
}

func TestGetUnknownReturnsNil(t *testing.T) {
	c := New(sample())
	assert.Nil(t, c.Get("unicorn-plant"))
}

func TestGetEmptyCatalog(t *testing.T) {
	c := New(nil)
	assert.Nil(t, c.Get(""))
	assert.Nil(t, c.Get("monstera-deliciosa"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plants.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"ficus-lyrata","displayName":"Ficus lyrata",
		 "ranges":{"temperature":{"min":16,"max":26}}}
	]`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Profiles(), 1)

	p := c.Get("ficus-lyrata")
	require.NotNil(t, p)
	require.NotNil(t, p.Ranges.Temperature)
	assert.Equal(t, 16.0, p.Ranges.Temperature.Min)
	assert.Nil(t, p.Ranges.Humidity)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plants.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
