package audio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ----- Preset ----- //

// Preset is the on-disk description of a full layer program. Fade times of
// zero defer to the engine defaults.
type Preset struct {
	Name           string        `json:"name"`
	AttackSeconds  float64       `json:"attackSeconds,omitempty"`
	ReleaseSeconds float64       `json:"releaseSeconds,omitempty"`
	Layers         []LayerConfig `json:"layers"`
}

// EngineConfig merges the preset's fade times into base.
func (p *Preset) EngineConfig(base EngineConfig) EngineConfig {
	if p.AttackSeconds > 0 {
		base.AttackSeconds = p.AttackSeconds
	}
	if p.ReleaseSeconds > 0 {
		base.ReleaseSeconds = p.ReleaseSeconds
	}
	return base
}

type presetMetaJSON struct {
	Name string `json:"name"`
}
type presetMetaListJSON struct {
	Items []presetMetaJSON `json:"items"`
}

// PresetManager reads and writes presets under one directory: one JSON file
// per preset plus a _list.json index that preserves ordering. None of this
// is ever reachable from the render path.
type PresetManager struct {
	dir string
}

// NewPresetManager ...
func NewPresetManager(dir string) *PresetManager {
	return &PresetManager{dir: dir}
}

// List returns the preset names in index order.
func (pm *PresetManager) List() ([]string, error) {
	list, err := pm.loadList()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(list.Items))
	for i, item := range list.Items {
		names[i] = item.Name
	}
	return names, nil
}

// Load ...
func (pm *PresetManager) Load(name string) (*Preset, error) {
	bytes, err := os.ReadFile(filepath.Join(pm.dir, name+".json"))
	if err != nil {
		return nil, err
	}
	var p Preset
	if err := json.Unmarshal(bytes, &p); err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	return &p, nil
}

// Save writes the preset file and adds the name to the index if missing.
func (pm *PresetManager) Save(p *Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset has no name")
	}
	if err := os.MkdirAll(pm.dir, 0o755); err != nil {
		return err
	}
	bytes, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(pm.dir, p.Name+".json"), bytes, 0o644); err != nil {
		return err
	}
	list, err := pm.loadList()
	if err != nil {
		return err
	}
	for _, item := range list.Items {
		if item.Name == p.Name {
			return nil
		}
	}
	list.Items = append(list.Items, presetMetaJSON{Name: p.Name})
	return pm.saveList(list)
}

// Delete removes the preset file and its index entry.
func (pm *PresetManager) Delete(name string) error {
	if err := os.Remove(filepath.Join(pm.dir, name+".json")); err != nil {
		return err
	}
	list, err := pm.loadList()
	if err != nil {
		return err
	}
	kept := list.Items[:0]
	for _, item := range list.Items {
		if item.Name != name {
			kept = append(kept, item)
		}
	}
	list.Items = kept
	return pm.saveList(list)
}

func (pm *PresetManager) loadList() (*presetMetaListJSON, error) {
	bytes, err := os.ReadFile(filepath.Join(pm.dir, "_list.json"))
	if os.IsNotExist(err) {
		return &presetMetaListJSON{}, nil
	}
	if err != nil {
		return nil, err
	}
	list := &presetMetaListJSON{}
	if err := json.Unmarshal(bytes, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (pm *PresetManager) saveList(list *presetMetaListJSON) error {
	bytes, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(pm.dir, "_list.json"), bytes, 0o644)
}
