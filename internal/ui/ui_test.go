package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/fanlife/internal/content"
	"github.com/DaanHessen/fanlife/internal/engine"
	"github.com/DaanHessen/fanlife/internal/store"
)

func testModel(t *testing.T) model {
	t.Helper()
	g, err := engine.NewGame("ui-seed", content.Default())
	require.NoError(t, err)
	saves := store.NewSaves(store.NewMemoryBackend(), content.Default(), "ui", nil)
	return newModel(context.Background(), g, saves, "nope", nil)
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestUnknownThemeFallsBack(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, defaultTheme, m.theme)
	m = press(t, m, "t")
	assert.NotEqual(t, defaultTheme, m.theme)
}

func TestSuggestFillsSchedule(t *testing.T) {
	m := press(t, testModel(t), "a")
	assert.True(t, m.snap.ScheduleValid)
	assert.Contains(t, m.View(), "THIS WEEK")
}

func TestCycleActionSetsSelectedDay(t *testing.T) {
	m := press(t, testModel(t), "3", "]")
	first := m.game.Tables().Actions[0].ID
	assert.Equal(t, first, m.snap.Schedule.Days[2].Action)
	m = press(t, m, "[")
	assert.Equal(t, "", m.snap.Schedule.Days[2].Action)
}

func TestFandomFormCreatesSet(t *testing.T) {
	m := press(t, testModel(t), "n")
	require.NotNil(t, m.form)
	m = press(t, m, "Skyfall", "enter", "enter", "Ren", "enter", "Ren/Kai", "enter", "enter", "enter", "enter")
	assert.Nil(t, m.form)
	assert.False(t, m.failed, m.status)
	require.Len(t, m.snap.FandomSets, 1)
	assert.True(t, m.snap.FandomSets[0].IsPrimary)
	assert.Contains(t, m.View(), "Skyfall")
}

func TestFormErrorsShowAsStatus(t *testing.T) {
	m := press(t, testModel(t), "n", "Skyfall", "enter", "enter", "Ren", "enter", "Ren", "enter", "enter", "enter", "enter")
	assert.True(t, m.failed)
	assert.Empty(t, m.snap.FandomSets)
}

func TestEscCancelsForm(t *testing.T) {
	m := press(t, testModel(t), "o", "esc")
	assert.Nil(t, m.form)
	assert.Equal(t, "cancelled", m.status)
}

func TestWeekCommandProducesReport(t *testing.T) {
	m := press(t, testModel(t), "a")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("w")})
	m = next.(model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	next, saveCmd := m.Update(cmd())
	m = next.(model)
	assert.False(t, m.busy)
	require.NotNil(t, m.report)
	assert.Equal(t, 1, m.report.Week)
	assert.Equal(t, 2, m.snap.Player.CurrentWeek)
	require.NotNil(t, saveCmd)

	next, _ = m.Update(saveCmd())
	m = next.(model)
	assert.Equal(t, "saved to ui", m.status)
	_, found, err := m.saves.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
}

func TestEmptyWeekSkipsEveryDay(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("w")})
	next, _ := m.Update(cmd())
	m = next.(model)
	require.NotNil(t, m.report)
	for _, d := range m.report.Days {
		assert.Equal(t, engine.DaySkipped, d.Outcome)
	}
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	m := testModel(t)
	m.busy = true
	m = press(t, m, "a")
	assert.False(t, m.snap.ScheduleValid)
}

func TestNextViewCycles(t *testing.T) {
	assert.Equal(t, viewWorks, nextView(viewDashboard))
	assert.Equal(t, viewDashboard, nextView(viewLog))
	assert.Equal(t, viewDashboard, nextView(viewHelp))
}

func TestLogMarkdownGroupsByWeek(t *testing.T) {
	md := logMarkdown([]engine.LogLine{
		{Week: 1, Day: 2, Text: "wrote"},
		{Week: 1, Text: "rent paid"},
		{Week: 2, Day: 1, Text: "rested"},
	})
	assert.Equal(t, 2, strings.Count(md, "## Week"))
	assert.Contains(t, md, "- **Day 2** wrote")
	assert.Contains(t, md, "- rent paid")
	assert.Contains(t, logMarkdown(nil), "Nothing has happened")
}

func TestRandomSeedText(t *testing.T) {
	s := RandomSeedText()
	assert.Len(t, s, 16)
	assert.Equal(t, strings.ToLower(s), s)
	assert.NotEqual(t, s, RandomSeedText())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"romance", "fluff"}, splitList(" romance, ,fluff "))
	assert.Nil(t, splitList(""))
}

func TestSaveSnapshotsWorldWhenRequested(t *testing.T) {
	m := testModel(t)
	money := m.game.World().Player.Money
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.NotNil(t, cmd)

	m.game.World().Player.Money = money + 500
	next, _ := m.Update(cmd())
	m = next.(model)
	assert.Equal(t, "saved to ui", m.status)

	w, found, err := m.saves.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, money, w.Player.Money, "the save holds the world as it was when s was pressed")
}
