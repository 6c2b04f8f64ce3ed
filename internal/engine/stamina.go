package engine

import (
	"math"

	"github.com/DaanHessen/fanlife/internal/content"
)

// StaminaVerdict is the Stamina & Burnout Model's decision for a day.
type StaminaVerdict int

const (
	VerdictNormal StaminaVerdict = iota
	VerdictZeroStamina
	VerdictSubstitute
)

// CheckStamina decides whether action can run at the player's current stamina.
// Rest always runs.
func CheckStamina(p PlayerState, a content.Action) StaminaVerdict {
	if a.ID == content.ActionRest {
		return VerdictNormal
	}
	if p.Stamina == 0 {
		return VerdictZeroStamina
	}
	if p.Stamina < a.StaminaCost {
		return VerdictSubstitute
	}
	return VerdictNormal
}

// applyZeroStaminaFailure aborts the day: forced rest plus the fixed penalties.
func applyZeroStaminaFailure(w *World, b content.Balance) StatDelta {
	d := StatDelta{Stamina: b.ZeroStaminaRest, Popularity: -1, Deokryeok: -1}
	w.Player.Apply(d)
	w.BurnoutStreak = 0
	return d
}

// applyMinimalRest replaces an unaffordable action with a free short rest.
func applyMinimalRest(w *World, b content.Balance) StatDelta {
	d := StatDelta{Stamina: b.MinimalRest}
	w.Player.Apply(d)
	w.BurnoutStreak = 0
	return d
}

// BurnoutPenalty records what a burnout event took away.
type BurnoutPenalty struct {
	Deokryeok int
	Skill     float64
	Stamina   int
}

// trackBurnout updates the low-stamina streak after a day. lowWrite is true when
// the day ran the write action below the low-stamina threshold. Once the streak
// has reached the threshold, every further qualifying day rolls for burnout.
func trackBurnout(w *World, lowWrite bool, r Roller, b content.Balance) (BurnoutPenalty, bool) {
	if !lowWrite {
		w.BurnoutStreak = 0
		return BurnoutPenalty{}, false
	}
	eligible := w.BurnoutStreak >= b.BurnoutStreakThreshold
	w.BurnoutStreak++
	if !eligible || !chance(r, b.BurnoutChance) {
		return BurnoutPenalty{}, false
	}
	pen := burnoutPenalty(w.Player, b)
	w.Player.Apply(StatDelta{Deokryeok: -pen.Deokryeok, Skill: -pen.Skill, Stamina: -pen.Stamina})
	w.BurnoutStreak = 0
	return pen, true
}

func burnoutPenalty(p PlayerState, b content.Balance) BurnoutPenalty {
	deok := int(math.Round(float64(p.Deokryeok) * b.BurnoutDeokryeokRatio))
	if deok < b.BurnoutDeokryeokMin {
		deok = b.BurnoutDeokryeokMin
	}
	skill := p.WritingSkill * b.BurnoutSkillRatio
	if skill < b.BurnoutSkillMin {
		skill = b.BurnoutSkillMin
	}
	return BurnoutPenalty{Deokryeok: deok, Skill: skill, Stamina: b.BurnoutStaminaPenalty}
}
