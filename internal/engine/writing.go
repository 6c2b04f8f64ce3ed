package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/DaanHessen/fanlife/internal/content"
)

// ProgressResult reports one day of work on a project.
type ProgressResult struct {
	Band          DayBand
	Gained        int
	SkillGain     float64
	JustCompleted bool
}

// AdvanceProject applies one writing day to p. Progress never exceeds the
// target; reaching it marks the manuscript complete but leaves finalizing to
// FinalizeProject.
func AdvanceProject(w *World, p *Project, r Roller, b content.Balance) (ProgressResult, error) {
	if p == nil {
		return ProgressResult{}, invalid("no project to write")
	}
	if p.Complete || p.Progress >= p.TargetProgress {
		return ProgressResult{}, invalid("%q is already complete", p.Title)
	}
	skill := w.Player.WritingSkill
	band, gained := rollProgress(skill, r, b)
	before := p.Progress
	p.Progress = clampInt(p.Progress+gained, 0, p.TargetProgress)
	res := ProgressResult{Band: band, Gained: p.Progress - before}

	res.SkillGain = skillGain(w.Player, p.Genres, res.Gained, b)
	w.Player.Apply(StatDelta{Skill: res.SkillGain})
	if w.Player.GenreProficiency == nil {
		w.Player.GenreProficiency = map[string]int{}
	}
	for _, g := range p.Genres {
		w.Player.GenreProficiency[g]++
	}
	if p.Progress >= p.TargetProgress {
		p.Complete = true
		res.JustCompleted = true
	}
	return res, nil
}

// rollProgress maps a uniform draw through three bands. Higher skill shrinks the
// bad band and grows the great band.
func rollProgress(skill float64, r Roller, b content.Balance) (DayBand, int) {
	s := int(skill)
	bad := clampFloat(0.25-skill/400, 0, 1)
	great := clampFloat(0.15+skill/400, 0, 1)
	roll := r.Float64()
	var band DayBand
	var gained int
	switch {
	case roll < bad:
		band, gained = BandBad, 5+s/20
	case roll >= 1-great:
		band, gained = BandGreat, 20+s/5
	default:
		band, gained = BandNormal, 10+s/10
	}
	if gained < b.MinDailyProgress {
		gained = b.MinDailyProgress
	}
	return band, gained
}

// skillGain scales the base gain by average genre proficiency and the day's output.
func skillGain(p PlayerState, genres []string, gained int, b content.Balance) float64 {
	if gained <= 0 {
		return 0
	}
	prof := 0.0
	for _, g := range genres {
		prof += float64(min(p.GenreProficiency[g], 20))
	}
	if len(genres) > 0 {
		prof /= float64(len(genres))
	}
	return b.SkillGainBase * (1 + prof/20) * float64(gained) / 10
}

// ProjectPlan is the input to PlanProject.
type ProjectPlan struct {
	FandomID  ID
	Title     string
	Genres    []string
	Materials []string
	Scenario  string
	SequelOf  ID // a published fic of the same fandom set
}

func validatePlan(w *World, t *content.Tables, plan ProjectPlan) error {
	if _, ok := w.FandomSets[plan.FandomID]; !ok {
		return invalid("choose a fandom set for the project")
	}
	if strings.TrimSpace(plan.Title) == "" {
		return invalid("the project needs a title")
	}
	if strings.TrimSpace(plan.Scenario) == "" {
		return invalid("the project needs a scenario plan")
	}
	if n := len(plan.Genres); n < 1 || n > 2 {
		return invalid("pick one or two genres (got %d)", n)
	}
	if plan.Genres[0] == plan.Genres[len(plan.Genres)-1] && len(plan.Genres) == 2 {
		return invalid("genres must differ")
	}
	for _, g := range plan.Genres {
		if !t.HasGenre(g) {
			return invalid("unknown genre %q", g)
		}
		if !w.Player.hasGenre(g) {
			return invalid("genre %q is not unlocked yet", g)
		}
	}
	for _, m := range plan.Materials {
		if !t.HasMaterial(m) {
			return invalid("unknown material %q", m)
		}
		if !w.Player.hasMaterial(m) {
			return invalid("material %q is not unlocked yet", m)
		}
	}
	if plan.SequelOf != "" {
		if !w.Player.SequelUnlocked {
			return invalid("sequels are not unlocked yet")
		}
		prior, ok := w.Fics[plan.SequelOf]
		if !ok {
			return invalid("unknown prior fic %q", plan.SequelOf)
		}
		if prior.FandomID != plan.FandomID {
			return invalid("a sequel must stay in the prior fic's fandom")
		}
	}
	return nil
}

// planTarget computes the target work units and a warning for every
// under-practiced genre, each of which inflates the target.
func planTarget(p PlayerState, genres []string, b content.Balance) (int, []string) {
	target := float64(b.BaseTargetProgress)
	var warnings []string
	for _, g := range genres {
		if p.GenreProficiency[g] < b.GenreProficiencyFloor {
			target *= b.UnderpracticedMultiplier
			warnings = append(warnings, fmt.Sprintf("you rarely write %s; this will take longer than usual", g))
		}
	}
	return int(math.Round(target)), warnings
}

// SkillTier buckets writing skill for prompts and display.
func SkillTier(skill float64) string {
	switch {
	case skill < 25:
		return "novice"
	case skill < 50:
		return "intermediate"
	case skill < 75:
		return "skilled"
	default:
		return "master"
	}
}

func styleGuidance(tier string) string {
	switch tier {
	case "novice":
		return "Write earnestly but plainly. Some clumsy phrasing and tell-not-show moments are fine."
	case "intermediate":
		return "Write with clear scenes and decent pacing; dialogue can be a little stiff."
	case "skilled":
		return "Write with confident pacing, distinct character voices and some memorable imagery."
	default:
		return "Write with polished prose, subtext, and a strong emotional payoff."
	}
}
