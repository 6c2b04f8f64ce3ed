package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/fanlife/internal/content"
)

func TestCheckStamina(t *testing.T) {
	write := content.Action{ID: content.ActionWrite, StaminaCost: 25}
	rest := content.Action{ID: content.ActionRest}

	assert.Equal(t, VerdictNormal, CheckStamina(PlayerState{Stamina: 0}, rest))
	assert.Equal(t, VerdictZeroStamina, CheckStamina(PlayerState{Stamina: 0}, write))
	assert.Equal(t, VerdictSubstitute, CheckStamina(PlayerState{Stamina: 15}, write))
	assert.Equal(t, VerdictNormal, CheckStamina(PlayerState{Stamina: 25}, write))
}

func TestZeroStaminaAbortsWithPenalties(t *testing.T) {
	g := newTestGame(t, WithRoller(floats(0.5)))
	g.w.Player.Stamina = 0
	g.w.Player.Popularity = 5
	g.w.Player.Deokryeok = 0
	g.w.BurnoutStreak = 2
	require.NoError(t, g.SetDay(1, ScheduleSlot{Action: "part_time"}))
	money := g.w.Player.Money

	res := g.runDay(context.Background(), 1)

	assert.Equal(t, DayZeroStamina, res.Outcome)
	assert.Equal(t, 4, g.w.Player.Popularity)
	assert.Equal(t, 0, g.w.Player.Deokryeok, "deokryeok floors at zero")
	assert.Equal(t, g.tables.Balance.ZeroStaminaRest, g.w.Player.Stamina)
	assert.Equal(t, money, g.w.Player.Money, "aborted action pays nothing")
	assert.Zero(t, g.w.BurnoutStreak)
}

func TestZeroStaminaPenaltyAppliesToEmptyWriteSlot(t *testing.T) {
	g := newTestGame(t, WithRoller(floats(0.5)))
	g.w.Player.Stamina = 0
	g.w.Player.Popularity = 5
	g.w.Player.Deokryeok = 5
	g.w.Schedule.Days[0] = ScheduleSlot{Action: content.ActionWrite}

	res := g.runDay(context.Background(), 1)

	assert.Equal(t, DayZeroStamina, res.Outcome)
	assert.Equal(t, 4, g.w.Player.Popularity)
	assert.Equal(t, 4, g.w.Player.Deokryeok)
	assert.Equal(t, g.tables.Balance.ZeroStaminaRest, g.w.Player.Stamina)
}

func TestEmptyWriteSlotSkippedWithStamina(t *testing.T) {
	g := newTestGame(t, WithRoller(floats(0.5)))
	g.w.Player.Stamina = 80
	g.w.Schedule.Days[0] = ScheduleSlot{Action: content.ActionWrite}

	res := g.runDay(context.Background(), 1)

	assert.Equal(t, DaySkipped, res.Outcome)
	assert.Equal(t, 80, g.w.Player.Stamina)
}

func TestInsufficientStaminaSubstitutesMinimalRest(t *testing.T) {
	tables := withAction(t, content.ActionWrite, func(a *content.Action) { a.StaminaCost = 25 })
	g, err := NewGame("substitute", tables, WithRoller(floats(0.5)))
	require.NoError(t, err)
	p := addProject(t, g, addFandom(t, g, "Moonlit", "A/B"))
	g.w.Player.Stamina = 15
	require.NoError(t, g.SetDay(1, ScheduleSlot{Action: content.ActionWrite, ProjectID: p.ID}))

	res := g.runDay(context.Background(), 1)

	assert.Equal(t, DaySubstituted, res.Outcome)
	assert.Greater(t, g.w.Player.Stamina, 15)
	assert.Equal(t, 15+tables.Balance.MinimalRest, g.w.Player.Stamina)
	assert.Zero(t, g.w.BurnoutStreak)
	assert.Zero(t, p.Progress)
}

func TestBurnoutNeedsThreeQualifyingDays(t *testing.T) {
	b := content.Default().Balance
	w := NewWorld("burnout", content.Default())
	w.Player.Deokryeok = 60
	w.Player.WritingSkill = 40
	always := floats(0)

	for i := 0; i < b.BurnoutStreakThreshold; i++ {
		_, hit := trackBurnout(w, true, always, b)
		require.False(t, hit, "day %d", i+1)
	}
	assert.Equal(t, b.BurnoutStreakThreshold, w.BurnoutStreak)

	pen, hit := trackBurnout(w, true, always, b)
	require.True(t, hit)
	assert.Zero(t, w.BurnoutStreak)
	assert.Equal(t, 12, pen.Deokryeok)
	assert.InDelta(t, 6.0, pen.Skill, 1e-9)
	assert.Equal(t, 48, w.Player.Deokryeok)
	assert.InDelta(t, 34.0, w.Player.WritingSkill, 1e-9)
}

func TestBurnoutStreakKeepsRollingUntilHit(t *testing.T) {
	b := content.Default().Balance
	w := NewWorld("streak", content.Default())
	miss := floats(0.99)

	for i := 0; i < 6; i++ {
		_, hit := trackBurnout(w, true, miss, b)
		require.False(t, hit)
	}
	assert.Equal(t, 6, w.BurnoutStreak)

	_, hit := trackBurnout(w, false, miss, b)
	assert.False(t, hit)
	assert.Zero(t, w.BurnoutStreak, "any other day resets the streak")
}

func TestBurnoutPenaltyFloors(t *testing.T) {
	b := content.Default().Balance
	pen := burnoutPenalty(PlayerState{Deokryeok: 10, WritingSkill: 10}, b)
	assert.Equal(t, b.BurnoutDeokryeokMin, pen.Deokryeok)
	assert.Equal(t, b.BurnoutSkillMin, pen.Skill)
	assert.Equal(t, b.BurnoutStaminaPenalty, pen.Stamina)
}

func TestLowStaminaWritingBuildsStreakThroughScheduler(t *testing.T) {
	g := newTestGame(t, WithRoller(floats(0.99)))
	p := addProject(t, g, addFandom(t, g, "Moonlit", "A/B"))
	p.TargetProgress = 1000
	g.w.Player.Stamina = g.tables.Balance.LowStaminaThreshold - 1
	for day := 1; day <= 3; day++ {
		require.NoError(t, g.SetDay(day, ScheduleSlot{Action: content.ActionWrite, ProjectID: p.ID}))
	}
	require.NoError(t, g.SetDay(4, ScheduleSlot{Action: content.ActionRest}))

	for day := 1; day <= 3; day++ {
		res := g.runDay(context.Background(), day)
		require.Equal(t, DayNormal, res.Outcome)
		assert.Equal(t, day, g.w.BurnoutStreak)
	}
	g.runDay(context.Background(), 4)
	assert.Zero(t, g.w.BurnoutStreak)
}
