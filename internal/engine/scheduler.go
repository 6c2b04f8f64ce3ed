package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/content"
)

// DayResult records how one scheduled day resolved.
type DayResult struct {
	Day      int
	Action   string
	Outcome  DayOutcome
	Progress *ProgressResult
	Burnout  *BurnoutPenalty
	Unlocked string
	Post     *SocialPost
}

// WeekReport is everything StartWeek did.
type WeekReport struct {
	Week       int
	Days       []DayResult
	Decay      int
	Expense    int
	Subsidy    int
	Resolution *EventResolution
	Spawned    *GameEvent
	NPCPost    *SocialPost
}

// StartWeek resolves the seven scheduled days in order, then the week end. A
// week always runs to completion once started; ctx only bounds the calls to
// the text service.
func (g *Game) StartWeek(ctx context.Context) (WeekReport, error) {
	if err := validateSchedule(g.w, g.tables, g.w.Schedule); err != nil {
		return WeekReport{}, err
	}
	rep := WeekReport{Week: g.w.Player.CurrentWeek}
	for day := 1; day <= DaysPerWeek; day++ {
		rep.Days = append(rep.Days, g.runDay(ctx, day))
	}
	g.endWeek(ctx, &rep)
	g.log.Info("week resolved",
		zap.Int("week", rep.Week),
		zap.Int("money", g.w.Player.Money),
		zap.Int("stamina", g.w.Player.Stamina),
		zap.Int("popularity", g.w.Player.Popularity),
	)
	return rep, nil
}

func (g *Game) runDay(ctx context.Context, day int) DayResult {
	w, t := g.w, g.tables
	b := t.Balance
	w.Player.CurrentDay = day
	slot := w.Schedule.Slot(day)
	res := DayResult{Day: day, Action: slot.Action}
	r := g.rng("week:%d:day:%d", w.Player.CurrentWeek, day)

	a, ok := t.Action(slot.Action)
	if !ok {
		res.Outcome = DaySkipped
		w.BurnoutStreak = 0
		w.logf(day, "Nothing planned.")
		return res
	}
	switch CheckStamina(w.Player, a) {
	case VerdictZeroStamina:
		applyZeroStaminaFailure(w, b)
		res.Outcome = DayZeroStamina
		w.logf(day, "Too exhausted to %s. Slept it off instead (popularity -1, deokryeok -1).", a.Label)
		return res
	case VerdictSubstitute:
		applyMinimalRest(w, b)
		res.Outcome = DaySubstituted
		w.logf(day, "Not enough energy to %s. Took a short rest.", a.Label)
		return res
	}

	// An exhausted player pays the zero-stamina penalty even on an empty write slot.
	var project *Project
	if a.Effect == content.EffectWrite {
		project = w.Projects[slot.ProjectID]
		if project == nil || project.Complete {
			res.Outcome = DaySkipped
			w.BurnoutStreak = 0
			w.logf(day, "Sat down to write but had nothing to work on.")
			return res
		}
	}

	res.Outcome = DayNormal
	startStamina := w.Player.Stamina
	w.Player.Apply(StatDelta{
		Stamina:    a.Stamina,
		MaxStamina: a.MaxStamina,
		Money:      a.Money,
		Popularity: a.Popularity,
		Deokryeok:  a.Deokryeok,
	})
	lowWrite := false
	switch a.Effect {
	case content.EffectWrite:
		pr, err := AdvanceProject(w, project, r, b)
		if err == nil {
			res.Progress = &pr
			lowWrite = startStamina < b.LowStaminaThreshold
			w.logf(day, "Wrote %d units of %q (%s day, %d/%d).", pr.Gained, project.Title, pr.Band, project.Progress, project.TargetProgress)
			if pr.JustCompleted {
				w.logf(day, "The draft of %q is complete.", project.Title)
			}
		}
	case content.EffectSource:
		g.readSource(day, r)
	case content.EffectUnlock:
		res.Unlocked = unlockSomething(w, t, r)
		if res.Unlocked != "" {
			w.logf(day, "Research paid off: unlocked %s.", res.Unlocked)
		} else {
			w.logf(day, "Researched for hours without finding anything new.")
		}
	case content.EffectSocial:
		title, body := musing(w, t, r)
		post := g.newPost(PostMusing, title, body, nil)
		w.Posts = append(w.Posts, post)
		g.react(ctx, post, nil, r)
		res.Post = post
		w.logf(day, "Posted %q (%d likes).", post.Title, post.Likes)
	default:
		w.logf(day, "%s.", a.Label)
	}
	w.Player.Apply(StatDelta{Stamina: -a.StaminaCost})

	if pen, hit := trackBurnout(w, lowWrite, r, b); hit {
		res.Burnout = &pen
		w.logf(day, "Burnout. Deokryeok -%d, skill -%.1f, stamina -%d.", pen.Deokryeok, pen.Skill, pen.Stamina)
		g.log.Debug("burnout", zap.Int("week", w.Player.CurrentWeek), zap.Int("day", day))
	}
	return res
}

func (g *Game) readSource(day int, r Roller) {
	w, b := g.w, g.tables.Balance
	switch {
	case chance(r, b.SourceHealChance):
		w.Player.Apply(StatDelta{Stamina: b.SourceHealStamina})
		w.logf(day, "Rereading the source was a comfort (stamina +%d).", b.SourceHealStamina)
	case chance(r, b.SourcePenaltyChance):
		w.Player.Apply(StatDelta{Skill: -b.SourceSkillPenalty})
		w.logf(day, "Fell down a wiki hole instead of studying the source (skill -%.1f).", b.SourceSkillPenalty)
	default:
		w.logf(day, "Reread the source material.")
	}
}

// unlockSomething rolls for one locked genre, material or the sequel
// capability and returns its label, or "" when nothing unlocked.
func unlockSomething(w *World, t *content.Tables, r Roller) string {
	if !chance(r, t.Balance.UnlockChance) {
		return ""
	}
	type candidate struct {
		label string
		apply func()
	}
	var pool []candidate
	for _, g := range t.Genres {
		if !w.Player.hasGenre(g.Key) {
			key := g.Key
			pool = append(pool, candidate{"genre " + g.Label, func() {
				w.Player.UnlockedGenres = append(w.Player.UnlockedGenres, key)
			}})
		}
	}
	for _, m := range t.Materials {
		if !w.Player.hasMaterial(m.Key) {
			key := m.Key
			pool = append(pool, candidate{"material " + m.Label, func() {
				w.Player.UnlockedMaterials = append(w.Player.UnlockedMaterials, key)
			}})
		}
	}
	if !w.Player.SequelUnlocked {
		pool = append(pool, candidate{"sequels", func() { w.Player.SequelUnlocked = true }})
	}
	c, ok := pick(r, pool)
	if !ok {
		return ""
	}
	c.apply()
	return c.label
}

func (g *Game) endWeek(ctx context.Context, rep *WeekReport) {
	w, t := g.w, g.tables
	b := t.Balance
	completed := w.Player.CurrentWeek
	w.Player.CurrentWeek++
	w.Player.CurrentDay = 1

	rep.Decay = deokryeokDecay(completed, b)
	w.Player.Apply(StatDelta{Deokryeok: -rep.Decay})

	if b.LivingExpenseInterval > 0 && completed%b.LivingExpenseInterval == 0 {
		if w.Player.Money >= b.LivingExpense {
			rep.Expense = b.LivingExpense
			w.Player.Apply(StatDelta{Money: -b.LivingExpense})
			w.logf(0, "Paid living expenses (-%d).", b.LivingExpense)
		} else {
			rep.Subsidy = b.EmergencySubsidy
			w.Player.Apply(StatDelta{
				Stamina:   -b.ExpenseStaminaPenalty,
				Deokryeok: -b.ExpenseDeokryeokPenalty,
				Money:     b.EmergencySubsidy,
			})
			w.logf(0, "Couldn't cover living expenses. Skipped meals and took an emergency subsidy (+%d).", b.EmergencySubsidy)
			g.log.Info("emergency subsidy", zap.Int("week", completed))
		}
	}

	r := g.rng("week:%d:end", completed)
	if eventDue(w) {
		res := resolveEvent(w, t, r)
		rep.Resolution = &res
		g.log.Info("event resolved",
			zap.String("event", res.Event.Name),
			zap.Bool("registered", res.Registered),
			zap.Int("units", res.UnitsSold),
			zap.Int("revenue", res.Revenue),
		)
		switch {
		case res.Submitted:
			w.logf(0, "%s is over. Sold %d copies (+%d), popularity +%d.", res.Event.Name, res.UnitsSold, res.Revenue, res.PopularityGain)
		case res.Registered:
			w.logf(0, "%s came and went without your fic. Popularity -%d.", res.Event.Name, res.Penalty)
		default:
			w.logf(0, "%s took place without you.", res.Event.Name)
		}
		if res.Registered {
			title, body := res.summary()
			post := g.newPost(PostSummary, title, body, nil)
			w.Posts = append(w.Posts, post)
			g.react(ctx, post, nil, r)
		}
	}
	if ev := spawnEvent(w, t, r); ev != nil {
		rep.Spawned = ev
		w.logf(0, "Announced: %s (register by week %d, held in week %d, fee %d).",
			ev.Name, ev.RegistrationDeadline, ev.EventWeek, ev.RegistrationCost)
		g.log.Debug("event spawned", zap.String("event", ev.Name), zap.String("tier", string(ev.Tier)))
	}

	nr := g.rng("week:%d:npc", completed)
	if chance(nr, b.NPCPostChance) {
		if post := npcPost(w, t, nr, g.now()); post != nil {
			engagement(w, post, nil, nr)
			post.Comments = generateComments(w, t, post, nil, nr, g.now())
			w.Posts = append(w.Posts, post)
			rep.NPCPost = post
		}
	}

	w.Schedule = WeeklySchedule{}
	w.trimLog(b.LogLimit)
}

// deokryeokDecay grows by one every DeokryeokDecayWeeks weeks, up to the cap.
func deokryeokDecay(week int, b content.Balance) int {
	decay := b.DeokryeokDecayBase
	if b.DeokryeokDecayWeeks > 0 {
		decay += week / b.DeokryeokDecayWeeks
	}
	if b.DeokryeokDecayCap > 0 && decay > b.DeokryeokDecayCap {
		decay = b.DeokryeokDecayCap
	}
	return decay
}
