package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rota-app/rota/internal/state"
)

const validCatalog = `
templates:
  - id: day
    name: Day shift
    start: "09:00"
    end: "17:00"
  - id: night
    name: Night shift
    start: "23:00"
    end: "07:00"
settings:
  retention_days: 30
  undo_depth: 10
  calendar_sync: true
`

func TestParse_Valid(t *testing.T) {
	cat, err := Parse([]byte(validCatalog))
	require.NoError(t, err)

	require.Len(t, cat.Templates, 2)
	day := cat.Templates[0]
	assert.Equal(t, "day", day.ID)
	assert.Equal(t, "Day shift", day.Name)
	assert.Equal(t, 9, day.Start.Hour)
	assert.Equal(t, 17, day.End.Hour)
	assert.False(t, day.Overnight())

	night := cat.Templates[1]
	assert.True(t, night.Overnight())

	assert.Equal(t, state.SettingsState{RetentionDays: 30, UndoDepth: 10, CalendarSync: true}, cat.Settings)
}

func TestParse_DefaultsUndoDepth(t *testing.T) {
	cat, err := Parse([]byte(`
templates:
  - id: day
    name: Day
    start: "09:00"
    end: "17:00"
`))
	require.NoError(t, err)
	assert.Equal(t, state.DefaultUndoDepth, cat.Settings.UndoDepth)
	assert.Equal(t, 0, cat.Settings.RetentionDays, "zero means keep forever")
	assert.False(t, cat.Settings.CalendarSync)
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty document", ``},
		{"no templates", `settings: {undo_depth: 5}`},
		{"missing id", `
templates:
  - name: Day
    start: "09:00"
    end: "17:00"
`},
		{"duplicate id", `
templates:
  - {id: day, name: A, start: "09:00", end: "17:00"}
  - {id: day, name: B, start: "18:00", end: "22:00"}
`},
		{"bad start time", `
templates:
  - {id: day, name: Day, start: "9am", end: "17:00"}
`},
		{"equal start and end", `
templates:
  - {id: allday, name: All day, start: "08:00", end: "08:00"}
`},
		{"unknown field", `
templates:
  - {id: day, name: Day, start: "09:00", end: "17:00", colour: red}
`},
		{"negative retention", `
templates:
  - {id: day, name: Day, start: "09:00", end: "17:00"}
settings:
  retention_days: -1
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rota.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validCatalog), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cat.Templates, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
