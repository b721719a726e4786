package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartplant/smartplant/internal/model"
)

func newLog(t *testing.T) *ObservationLog {
	t.Helper()
	return NewObservationLog(filepath.Join(t.TempDir(), "observations.json"))
}

func obsN(i int) model.Observation {
	return model.Observation{
		PlantName:   fmt.Sprintf("plant-%d", i),
		PlantType:   "monstera-deliciosa",
		Temperature: float64(i),
		Timestamp:   fmt.Sprintf("2026-01-01T00:%02d:00Z", i%60),
	}
}

func TestObservationLogEviction(t *testing.T) {
	log := newLog(t)
	for i := 0; i < MaxObservations+1; i++ {
		require.NoError(t, log.Append(obsN(i)))
	}

	items, err := log.Query(0, "", "")
	require.NoError(t, err)
	require.Len(t, items, MaxObservations)
	// the very first record was evicted, order preserved
	assert.Equal(t, "plant-1", items[0].PlantName)
	assert.Equal(t, fmt.Sprintf("plant-%d", MaxObservations), items[len(items)-1].PlantName)
}

func TestObservationLogQueryFilters(t *testing.T) {
	log := newLog(t)
	cfgA := "cfg-a"
	require.NoError(t, log.Append(model.Observation{PlantType: "ficus-lyrata", PlantConfigID: &cfgA}))
	require.NoError(t, log.Append(model.Observation{PlantType: "monstera-deliciosa", PlantConfigID: &cfgA}))
	require.NoError(t, log.Append(model.Observation{PlantType: "monstera-deliciosa"}))

	byType, err := log.Query(0, "", "monstera-deliciosa")
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byCfg, err := log.Query(0, "cfg-a", "")
	require.NoError(t, err)
	assert.Len(t, byCfg, 2)

	both, err := log.Query(0, "cfg-a", "monstera-deliciosa")
	require.NoError(t, err)
	assert.Len(t, both, 1)

	none, err := log.Query(0, "cfg-b", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestObservationLogQueryLimit(t *testing.T) {
	log := newLog(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, log.Append(obsN(i)))
	}

	limited, err := log.Query(2, "", "")
	require.NoError(t, err)
	require.Len(t, limited, 2)
	// most recent two, chronological order
	assert.Equal(t, "plant-3", limited[0].PlantName)
	assert.Equal(t, "plant-4", limited[1].PlantName)

	all, err := log.Query(0, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestObservationLogClear(t *testing.T) {
	log := newLog(t)
	require.NoError(t, log.Append(obsN(1)))
	require.NoError(t, log.Clear())

	items, err := log.Query(0, "", "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func newConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	dir := t.TempDir()
	return NewConfigStore(filepath.Join(dir, "config.json"), filepath.Join(dir, "plant_configs.json"))
}

func TestLoadActiveCreatesDefaults(t *testing.T) {
	s := newConfigStore(t)
	cfg, err := s.LoadActive()
	require.NoError(t, err)

	assert.Equal(t, "SmartPlant", cfg.PlantName)
	assert.Equal(t, "Living Room", cfg.Location)
	assert.Equal(t, 60, cfg.SamplingSeconds)
	assert.Equal(t, "monstera-deliciosa", cfg.PlantType)
	assert.Nil(t, cfg.PlantConfigID)
}

func TestSaveActiveMergesPartial(t *testing.T) {
	s := newConfigStore(t)
	name := "Fern"
	_, err := s.SaveActive(model.ConfigPatch{PlantName: &name})
	require.NoError(t, err)

	location := "Balcony"
	cfg, err := s.SaveActive(model.ConfigPatch{Location: &location})
	require.NoError(t, err)

	assert.Equal(t, "Fern", cfg.PlantName)
	assert.Equal(t, "Balcony", cfg.Location)
	assert.Equal(t, 60, cfg.SamplingSeconds)
	assert.Equal(t, "monstera-deliciosa", cfg.PlantType)

	// merge survives reload
	again, err := s.LoadActive()
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestSavedConfigs(t *testing.T) {
	s := newConfigStore(t)

	saved, err := s.AddSaved(model.SavedPlantConfig{
		PlantName: "Kitchen Fern", Location: "Kitchen", SamplingSeconds: 30, PlantType: "ficus-lyrata",
	})
	require.NoError(t, err)
	require.Len(t, saved.ID, 12)

	withID, err := s.AddSaved(model.SavedPlantConfig{ID: "custom-id", PlantName: "Desk Cactus", PlantType: "cactus-mix"})
	require.NoError(t, err)
	assert.Equal(t, "custom-id", withID.ID)

	list, err := s.ListSaved()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, saved.ID, list[0].ID)

	got, err := s.GetSaved("custom-id")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Desk Cactus", got.PlantName)

	missing, err := s.GetSaved("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
