package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/fanlife/internal/content"
)

func TestNewWorldDefaults(t *testing.T) {
	tables := content.Default()
	w := NewWorld("fresh", tables)
	assert.Equal(t, SaveVersion, w.Version)
	assert.Equal(t, 500, w.Player.Money)
	assert.Equal(t, w.Player.MaxStamina, w.Player.Stamina)
	assert.Equal(t, 1, w.Player.CurrentWeek)
	assert.Equal(t, 1, w.Player.CurrentDay)
	assert.ElementsMatch(t, tables.StarterGenres(), w.Player.UnlockedGenres)
}

func TestApplyClampsEveryMeter(t *testing.T) {
	p := PlayerState{Stamina: 5, MaxStamina: 100, Money: 3, Popularity: 1, Deokryeok: 98, WritingSkill: 99}
	p.Apply(StatDelta{Stamina: -50, Money: -10, Popularity: -5, Deokryeok: 10, Skill: 5, Controversy: -1})
	assert.Zero(t, p.Stamina)
	assert.Zero(t, p.Money)
	assert.Zero(t, p.Popularity)
	assert.Zero(t, p.ControversyScore)
	assert.Equal(t, 100, p.Deokryeok)
	assert.Equal(t, 100.0, p.WritingSkill)

	p.Apply(StatDelta{Stamina: 500})
	assert.Equal(t, 100, p.Stamina)
	p.Apply(StatDelta{MaxStamina: -60})
	assert.Equal(t, 40, p.MaxStamina)
	assert.Equal(t, 40, p.Stamina)
}

func TestNormalizeRepairsOldShape(t *testing.T) {
	tables := content.Default()
	var w World
	require.NoError(t, json.Unmarshal([]byte(`{
		"player": {"money": 42, "stamina": 900, "current_week": 0},
		"fandom_sets": {
			"fandom-a": {"work_title": "A", "pairing": "X/Y", "base_work_id": "fandom-gone"},
			"fandom-b": {"work_title": "B", "pairing": "Y/X", "is_primary": true, "created_week": 2}
		},
		"projects": {"project-1": {"title": "P", "progress": 300, "target_progress": 100}},
		"registered_event_id": "event-stale",
		"schedule": {"days": [{"action": "teleport"}, {"action": "write", "project_id": "project-gone"}]}
	}`), &w))

	w.Normalize(tables)

	assert.Equal(t, legacySeed, w.SeedText)
	assert.Equal(t, SaveVersion, w.Version)
	assert.Equal(t, 42, w.Player.Money)
	assert.Equal(t, tables.Balance.MaxStamina, w.Player.Stamina)
	assert.Equal(t, 1, w.Player.CurrentWeek)
	assert.NotNil(t, w.Player.GenreProficiency)
	assert.Empty(t, w.FandomSets["fandom-a"].BaseWorkID)
	assert.NotNil(t, w.FandomSets["fandom-a"].PenaltyLedger)
	assert.True(t, w.FandomSets["fandom-b"].IsPrimary)
	assert.False(t, w.FandomSets["fandom-a"].IsPrimary)
	p := w.Projects["project-1"]
	assert.Equal(t, 100, p.Progress)
	assert.True(t, p.Complete)
	assert.Empty(t, w.RegisteredEventID)
	assert.Equal(t, ScheduleSlot{}, w.Schedule.Days[0])
	assert.Equal(t, ScheduleSlot{Action: "write"}, w.Schedule.Days[1])
	assert.NotNil(t, w.Fics)
	assert.NotNil(t, w.Posts)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	tables := content.Default()
	g := newTestGame(t, WithRoller(floats(0.3)))
	fandom := addFandom(t, g, "Moonlit", "A/B")
	addProject(t, g, fandom)
	addFic(g, fandom, 4)
	g.SuggestSchedule()

	once, err := json.Marshal(g.w)
	require.NoError(t, err)

	var w World
	require.NoError(t, json.Unmarshal(once, &w))
	w.Normalize(tables)
	twice, err := json.Marshal(&w)
	require.NoError(t, err)
	w.Normalize(tables)
	thrice, err := json.Marshal(&w)
	require.NoError(t, err)

	assert.JSONEq(t, string(once), string(twice))
	assert.JSONEq(t, string(twice), string(thrice))
}

func TestTrimLogKeepsNewest(t *testing.T) {
	w := NewWorld("log", content.Default())
	for i := 0; i < 10; i++ {
		w.logf(i, "line %d", i)
	}
	w.trimLog(3)
	require.Len(t, w.Log, 3)
	assert.Equal(t, "line 9", w.Log[2].Text)
	assert.Equal(t, "line 7", w.Log[0].Text)
}

func TestIDKinds(t *testing.T) {
	assert.Equal(t, KindFandom, fandomIDs.New().Kind())
	assert.Equal(t, KindComment, commentIDs.New().Kind())
	assert.NotEqual(t, postIDs.New(), postIDs.New())
	assert.Equal(t, Kind(""), ID("nokind").Kind())
}

func TestNormalizeDropsBaseLinkToNilFandom(t *testing.T) {
	tables := content.Default()
	var w World
	require.NoError(t, json.Unmarshal([]byte(`{
		"fandom_sets": {
			"fandom-b": {"work_title": "B", "favorite_character": "x", "pairing": "A/B", "base_work_id": "fandom-a"},
			"fandom-c": {"work_title": "C", "favorite_character": "y", "pairing": "C/D", "base_work_id": "fandom-c"},
			"fandom-a": null
		}
	}`), &w))

	w.Normalize(tables)
	require.Len(t, w.FandomSets, 2)
	assert.Empty(t, w.FandomSets["fandom-b"].BaseWorkID)
	assert.Empty(t, w.FandomSets["fandom-c"].BaseWorkID, "a fandom is never its own base")

	once, err := json.Marshal(&w)
	require.NoError(t, err)
	w.Normalize(tables)
	twice, err := json.Marshal(&w)
	require.NoError(t, err)
	assert.JSONEq(t, string(once), string(twice))
}

func TestNormalizeClearsProjectOnNonWriteDay(t *testing.T) {
	g := newTestGame(t)
	p := addProject(t, g, addFandom(t, g, "Moonlit", "A/B"))
	g.w.Schedule.Days[0] = ScheduleSlot{Action: content.ActionRest, ProjectID: p.ID}
	g.w.Schedule.Days[1] = ScheduleSlot{Action: content.ActionWrite, ProjectID: p.ID}
	raw, err := json.Marshal(g.w)
	require.NoError(t, err)

	var w World
	require.NoError(t, json.Unmarshal(raw, &w))
	loaded, err := LoadGame(&w, content.Default(), WithClock(testClock))
	require.NoError(t, err)

	assert.Equal(t, ScheduleSlot{Action: content.ActionRest}, w.Schedule.Days[0])
	assert.Equal(t, p.ID, w.Schedule.Days[1].ProjectID)
	_, err = loaded.StartWeek(context.Background())
	require.NoError(t, err)
}
