// Package catalog loads the user-authored shift-template catalog and
// settings from a YAML file.
package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rota-app/rota/internal/interval"
	"github.com/rota-app/rota/internal/state"
)

// File is the on-disk catalog document.
type File struct {
	Templates []Template `yaml:"templates"`
	Settings  Settings   `yaml:"settings"`
}

// Template is one template definition as authored in YAML. Times are
// "HH:MM" strings; an end before the start declares an overnight shift.
type Template struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Settings mirrors the user-tunable engine settings.
type Settings struct {
	RetentionDays int  `yaml:"retention_days"`
	UndoDepth     int  `yaml:"undo_depth"`
	CalendarSync  bool `yaml:"calendar_sync"`
}

// Catalog is the validated result of loading a catalog file.
type Catalog struct {
	Templates []state.ShiftTemplate
	Settings  state.SettingsState
}

// Load reads and validates a catalog file.
//
// Decoding is strict: unknown YAML fields are errors, so typos in a
// hand-edited file fail loudly instead of silently disappearing.
// Template IDs must be unique; spans are validated the same way the
// interval package will at scheduling time.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse validates a catalog document from memory.
func Parse(data []byte) (Catalog, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	if len(f.Templates) == 0 {
		return Catalog{}, fmt.Errorf("catalog: no templates defined")
	}

	seen := make(map[string]bool, len(f.Templates))
	templates := make([]state.ShiftTemplate, 0, len(f.Templates))
	for i, t := range f.Templates {
		if t.ID == "" {
			return Catalog{}, fmt.Errorf("catalog: template %d: missing id", i)
		}
		if seen[t.ID] {
			return Catalog{}, fmt.Errorf("catalog: duplicate template id %q", t.ID)
		}
		seen[t.ID] = true

		start, err := interval.ParseTimeOfDay(t.Start)
		if err != nil {
			return Catalog{}, fmt.Errorf("catalog: template %q: start: %w", t.ID, err)
		}
		end, err := interval.ParseTimeOfDay(t.End)
		if err != nil {
			return Catalog{}, fmt.Errorf("catalog: template %q: end: %w", t.ID, err)
		}

		tmpl := state.ShiftTemplate{ID: t.ID, Name: t.Name, Start: start, End: end}
		if err := tmpl.Validate(); err != nil {
			return Catalog{}, fmt.Errorf("catalog: %w", err)
		}
		templates = append(templates, tmpl)
	}

	settings := state.SettingsState{
		RetentionDays: f.Settings.RetentionDays,
		UndoDepth:     f.Settings.UndoDepth,
		CalendarSync:  f.Settings.CalendarSync,
	}
	if settings.UndoDepth <= 0 {
		settings.UndoDepth = state.DefaultUndoDepth
	}
	if settings.RetentionDays < 0 {
		return Catalog{}, fmt.Errorf("catalog: retention_days must not be negative")
	}

	return Catalog{Templates: templates, Settings: settings}, nil
}
