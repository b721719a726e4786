package storage

import (
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"github.com/smartplant/smartplant/internal/model"
)

// Defaults applied when the active configuration is read for the first
// time.
const (
	DefaultPlantName       = "SmartPlant"
	DefaultLocation        = "Living Room"
	DefaultSamplingSeconds = 60
	DefaultPlantType       = "monstera-deliciosa"
)

// ConfigStore keeps the single active DeviceConfig plus the collection of
// saved presets. All operations are synchronous read-modify-write; last
// writer wins, which is fine for a single-device system.
type ConfigStore struct {
	mu         sync.Mutex
	activePath string
	savedPath  string
}

func NewConfigStore(activePath, savedPath string) *ConfigStore {
	return &ConfigStore{activePath: activePath, savedPath: savedPath}
}

func defaultConfig() model.DeviceConfig {
	return model.DeviceConfig{
		PlantName:       DefaultPlantName,
		Location:        DefaultLocation,
		SamplingSeconds: DefaultSamplingSeconds,
		PlantType:       DefaultPlantType,
		PlantConfigID:   nil,
	}
}

// LoadActive returns the active configuration, creating the default one
// on first access.
func (s *ConfigStore) LoadActive() (model.DeviceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadActiveLocked()
}

func (s *ConfigStore) loadActiveLocked() (model.DeviceConfig, error) {
	cfg := defaultConfig()
	found, err := readJSON(s.activePath, &cfg)
	if err != nil {
		return model.DeviceConfig{}, err
	}
	if !found {
		if err := writeJSON(s.activePath, cfg); err != nil {
			return model.DeviceConfig{}, err
		}
	}
	return cfg, nil
}

// SaveActive shallow-merges the patch onto the current configuration,
// persists and returns the merged record.
func (s *ConfigStore) SaveActive(patch model.ConfigPatch) (model.DeviceConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadActiveLocked()
	if err != nil {
		return model.DeviceConfig{}, err
	}
	if patch.PlantName != nil {
		cfg.PlantName = *patch.PlantName
	}
	if patch.Location != nil {
		cfg.Location = *patch.Location
	}
	if patch.SamplingSeconds != nil {
		cfg.SamplingSeconds = *patch.SamplingSeconds
	}
	if patch.PlantType != nil {
		cfg.PlantType = *patch.PlantType
	}
	if patch.PlantConfigID != nil {
		cfg.PlantConfigID = patch.PlantConfigID
	}
	if err := writeJSON(s.activePath, cfg); err != nil {
		return model.DeviceConfig{}, err
	}
	return cfg, nil
}

// ListSaved returns every saved preset in insertion order.
func (s *ConfigStore) ListSaved() ([]model.SavedPlantConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listSavedLocked()
}

func (s *ConfigStore) listSavedLocked() ([]model.SavedPlantConfig, error) {
	data := []model.SavedPlantConfig{}
	if _, err := readJSON(s.savedPath, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// AddSaved appends a preset, generating an id when none is given.
func (s *ConfigStore) AddSaved(cfg model.SavedPlantConfig) (model.SavedPlantConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.ID == "" {
		cfg.ID = newConfigID()
	}
	data, err := s.listSavedLocked()
	if err != nil {
		return model.SavedPlantConfig{}, err
	}
	data = append(data, cfg)
	if err := writeJSON(s.savedPath, data); err != nil {
		return model.SavedPlantConfig{}, err
	}
	return cfg, nil
}

// GetSaved looks a preset up by id; nil means not found.
func (s *ConfigStore) GetSaved(id string) (*model.SavedPlantConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.listSavedLocked()
	if err != nil {
		return nil, err
	}
	for i := range data {
		if data[i].ID == id {
			return &data[i], nil
		}
	}
	return nil, nil
}

func newConfigID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:12]
}
