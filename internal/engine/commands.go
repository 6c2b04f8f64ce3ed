package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// SetSchedule replaces the whole week's plan.
func (g *Game) SetSchedule(s WeeklySchedule) error {
	if err := validateSchedule(g.w, g.tables, s); err != nil {
		return err
	}
	g.w.Schedule = s
	return nil
}

// SetDay replaces one day's slot.
func (g *Game) SetDay(day int, slot ScheduleSlot) error {
	if day < 1 || day > DaysPerWeek {
		return invalid("day must be between 1 and %d", DaysPerWeek)
	}
	next := g.w.Schedule
	next.Days[day-1] = slot
	return g.SetSchedule(next)
}

// ClearSchedule empties every slot.
func (g *Game) ClearSchedule() { g.w.Schedule = WeeklySchedule{} }

// SuggestSchedule fills the empty slots from current stats and returns the
// resulting plan. Slots the player already chose are kept.
func (g *Game) SuggestSchedule() WeeklySchedule {
	suggested := suggestSchedule(g.w, g.tables)
	for i, slot := range g.w.Schedule.Days {
		if slot.Action == "" {
			g.w.Schedule.Days[i] = suggested.Days[i]
		}
	}
	return g.w.Schedule
}

// PlanProject creates a project from plan. The returned warnings name every
// under-practiced genre that inflated the target.
func (g *Game) PlanProject(plan ProjectPlan) (ID, []string, error) {
	if err := validatePlan(g.w, g.tables, plan); err != nil {
		return "", nil, err
	}
	target, warnings := planTarget(g.w.Player, plan.Genres, g.tables.Balance)
	p := &Project{
		ID:             projectIDs.New(),
		FandomID:       plan.FandomID,
		Title:          strings.TrimSpace(plan.Title),
		Genres:         append([]string(nil), plan.Genres...),
		Materials:      append([]string(nil), plan.Materials...),
		Scenario:       strings.TrimSpace(plan.Scenario),
		TargetProgress: target,
		SequelOf:       plan.SequelOf,
		CreatedWeek:    g.w.Player.CurrentWeek,
	}
	g.w.Projects[p.ID] = p
	g.w.logf(0, "Started planning %q (%d work units).", p.Title, p.TargetProgress)
	return p.ID, warnings, nil
}

// FinalizeProject asks the text service for the body of a complete manuscript.
// On failure the project is left untouched and the call can be retried.
func (g *Game) FinalizeProject(ctx context.Context, id ID) error {
	p, ok := g.w.Projects[id]
	if !ok {
		return invalid("unknown project %q", id)
	}
	if !p.Complete {
		return invalid("%q is not complete yet (%d/%d)", p.Title, p.Progress, p.TargetProgress)
	}
	if p.Finalized {
		return invalid("%q is already finalized", p.Title)
	}
	if g.writer == nil {
		return externalFailure(&GenerationError{Category: GenConfig, Err: errNoWriter})
	}
	req := g.draftRequest(p)
	body, err := g.writer.DraftFic(ctx, req)
	if err != nil {
		g.log.Warn("finalize failed", zap.String("project", string(id)), zap.Error(err))
		return externalFailure(err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return externalFailure(&GenerationError{Category: GenParse, Err: errEmptyBody})
	}
	p.Body = body
	p.Finalized = true
	g.w.logf(0, "Finished the manuscript of %q.", p.Title)
	return nil
}

func (g *Game) draftRequest(p *Project) DraftRequest {
	tier := SkillTier(g.w.Player.WritingSkill)
	req := DraftRequest{
		Title:      p.Title,
		Genres:     p.Genres,
		Materials:  p.Materials,
		Scenario:   p.Scenario,
		SkillTier:  tier,
		StyleGuide: styleGuidance(tier),
	}
	if fs, ok := g.w.FandomSets[p.FandomID]; ok {
		req.WorkTitle = fs.WorkTitle
		req.Pairing = fs.Pairing
		req.Interpretation = fs.Interpretation
	}
	if prior, ok := g.w.Fics[p.SequelOf]; ok {
		req.Sequel = &SequelContext{Title: prior.Title, Excerpt: excerpt(prior.Body, 400)}
	}
	return req
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// PublishOptions controls how a fic is posted.
type PublishOptions struct {
	Paid  bool
	Price int
}

// PublishProject posts a finalized manuscript, retiring the project.
func (g *Game) PublishProject(ctx context.Context, id ID, opts PublishOptions) (*PublishedFic, error) {
	w := g.w
	p, ok := w.Projects[id]
	if !ok {
		return nil, invalid("unknown project %q", id)
	}
	if !p.Finalized {
		return nil, invalid("finalize %q before publishing", p.Title)
	}
	if opts.Price < 0 {
		return nil, invalid("price cannot be negative")
	}
	if opts.Paid && opts.Price == 0 {
		return nil, invalid("paid fics need a price")
	}
	r := g.rng("week:%d:publish:%s", w.Player.CurrentWeek, id)
	fic := &PublishedFic{
		ID:            ficIDs.New(),
		FandomID:      p.FandomID,
		Title:         p.Title,
		Genres:        p.Genres,
		Body:          p.Body,
		Rating:        rateFic(w.Player, r),
		PublishedAt:   g.now(),
		PublishedWeek: w.Player.CurrentWeek,
		Paid:          opts.Paid,
		Price:         opts.Price,
		SequelOf:      p.SequelOf,
	}
	w.Fics[fic.ID] = fic
	g.retireProject(id)
	gain := ratingPopularity[fic.Rating]
	w.Player.Apply(StatDelta{Popularity: gain, Controversy: ratingControversy[fic.Rating]})
	w.logf(0, "Published %q. Readers rate it %d/5.", fic.Title, fic.Rating)
	if fs, ok := w.FandomSets[fic.FandomID]; ok {
		if pen := ApplyReversePairingPenalty(w, fs, g.tables.Balance.ReversePairingPenalty); pen > 0 {
			w.logf(0, "The %s crowd noticed your reversed pairing. Popularity -%d.", fs.WorkTitle, pen)
		}
	}
	post := g.newPost(PostOwnFic, fic.Title, excerpt(fic.Body, 280), fic)
	g.react(ctx, post, fic, r)
	w.Posts = append(w.Posts, post)
	return fic, nil
}

var (
	ratingPopularity  = map[int]int{1: -2, 2: 0, 3: 2, 4: 5, 5: 9}
	ratingControversy = map[int]int{1: 3, 2: 1}
)

// rateFic draws the reader rating from skill, devotion and luck.
func rateFic(p PlayerState, r Roller) int {
	score := 1 + p.WritingSkill/30 + float64(p.Deokryeok)/50 + r.Float64()*1.5
	return clampInt(int(score), 1, 5)
}

// retireProject removes a project and any schedule slot that points at it.
func (g *Game) retireProject(id ID) {
	delete(g.w.Projects, id)
	for i := range g.w.Schedule.Days {
		if g.w.Schedule.Days[i].ProjectID == id {
			g.w.Schedule.Days[i] = ScheduleSlot{}
		}
	}
}

// RegisterForEvent pays the current event's fee.
func (g *Game) RegisterForEvent() error {
	if err := registerForEvent(g.w); err != nil {
		return err
	}
	ev := g.w.CurrentEvent
	g.w.logf(0, "Registered for %s (-%d).", ev.Name, ev.RegistrationCost)
	return nil
}

// QuoteSubmission prices a submission without committing it.
func (g *Game) QuoteSubmission(opts SubmitOptions) (PrintQuote, error) {
	q, _, err := quoteSubmission(g.w, g.tables, opts)
	return q, err
}

// SubmitToEvent commits a fic to the current event, printing if needed.
func (g *Game) SubmitToEvent(opts SubmitOptions) (PrintQuote, error) {
	q, err := submitToEvent(g.w, g.tables, opts)
	if err != nil {
		return PrintQuote{}, err
	}
	fic := g.w.Fics[opts.FicID]
	if q.ReRelease {
		g.w.logf(0, "Re-releasing %q at %s (-%d).", fic.Title, g.w.CurrentEvent.Name, q.Total)
	} else {
		g.w.logf(0, "Printed %d copies of %q for %s (-%d).", q.PrintRun, fic.Title, g.w.CurrentEvent.Name, q.Total)
	}
	return q, nil
}

// FandomSetInput is the editable part of a fandom set. An empty ID creates a
// new set.
type FandomSetInput struct {
	ID                ID
	WorkTitle         string
	WorkDescription   string
	FavoriteCharacter string
	Pairing           string
	Interpretation    string
	Primary           bool
	BaseWorkID        ID
}

// SaveFandomSet creates or updates a fandom set and returns its id plus any
// reverse-pairing penalty charged.
func (g *Game) SaveFandomSet(in FandomSetInput) (ID, int, error) {
	w := g.w
	if strings.TrimSpace(in.WorkTitle) == "" {
		return "", 0, invalid("the source work needs a title")
	}
	if strings.TrimSpace(in.FavoriteCharacter) == "" {
		return "", 0, invalid("pick a favorite character")
	}
	a, b, err := ParsePairing(in.Pairing)
	if err != nil {
		return "", 0, err
	}
	var fs *FandomSet
	if in.ID != "" {
		var ok bool
		if fs, ok = w.FandomSets[in.ID]; !ok {
			return "", 0, invalid("unknown fandom set %q", in.ID)
		}
	}
	if in.BaseWorkID != "" {
		if _, ok := w.FandomSets[in.BaseWorkID]; !ok || in.BaseWorkID == in.ID {
			return "", 0, invalid("base work %q does not exist", in.BaseWorkID)
		}
	}
	if fs == nil {
		fs = &FandomSet{ID: fandomIDs.New(), PenaltyLedger: map[string]bool{}, CreatedWeek: w.Player.CurrentWeek}
		w.FandomSets[fs.ID] = fs
	}
	fs.WorkTitle = strings.TrimSpace(in.WorkTitle)
	fs.WorkDescription = strings.TrimSpace(in.WorkDescription)
	fs.FavoriteCharacter = strings.TrimSpace(in.FavoriteCharacter)
	fs.Pairing = a + PairingSeparator + b
	fs.Interpretation = strings.TrimSpace(in.Interpretation)
	fs.BaseWorkID = in.BaseWorkID
	if in.Primary {
		for _, other := range w.FandomSets {
			other.IsPrimary = other.ID == fs.ID
		}
	}
	w.ensurePrimary()
	pen := ApplyReversePairingPenalty(w, fs, g.tables.Balance.ReversePairingPenalty)
	if pen > 0 {
		w.logf(0, "Fans of the original pairing are upset about %s. Popularity -%d.", fs.Pairing, pen)
	}
	return fs.ID, pen, nil
}

// DeleteFandomSet removes a set and everything that depends on it. Published
// fics stay as history.
func (g *Game) DeleteFandomSet(id ID, confirmed bool) error {
	w := g.w
	fs, ok := w.FandomSets[id]
	if !ok {
		return invalid("unknown fandom set %q", id)
	}
	if !confirmed {
		return invalid("deleting %s needs confirmation", fs.WorkTitle)
	}
	for _, pid := range sortedIDs(w.Projects) {
		if w.Projects[pid].FandomID == id {
			g.retireProject(pid)
		}
	}
	if w.CurrentEvent != nil && w.CurrentEvent.FandomID == id {
		w.CurrentEvent = nil
		w.RegisteredEventID = ""
	}
	delete(w.FandomSets, id)
	for _, other := range w.FandomSets {
		if other.BaseWorkID == id {
			other.BaseWorkID = ""
		}
	}
	w.ensurePrimary()
	w.logf(0, "Left the %s fandom.", fs.WorkTitle)
	return nil
}

// PostCustomContent publishes a free-form post, at most once per cooldown.
// Reactions are best effort: a failed text call still leaves the post.
func (g *Game) PostCustomContent(ctx context.Context, title, body string) (*SocialPost, error) {
	w := g.w
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, invalid("a post needs a title and a body")
	}
	cooldown := g.tables.Balance.CustomPostCooldownWeeks
	if last := w.Player.LastCustomPostWeek; last > 0 && w.Player.CurrentWeek-last < cooldown {
		return nil, invalid("you already posted this week; wait until week %d", last+cooldown)
	}
	post := g.newPost(PostMusing, title, body, nil)
	w.Player.LastCustomPostWeek = w.Player.CurrentWeek
	w.Posts = append(w.Posts, post)
	g.react(ctx, post, nil, g.rng("week:%d:custom", w.Player.CurrentWeek))
	return post, nil
}

// DeletePost removes one of the player's own posts.
func (g *Game) DeletePost(id ID) error {
	i, post := g.w.findPost(id)
	if post == nil {
		return invalid("unknown post %q", id)
	}
	if !post.PlayerAuthored {
		return invalid("you can only delete your own posts")
	}
	g.w.Posts = append(g.w.Posts[:i], g.w.Posts[i+1:]...)
	return nil
}

// Reset discards the world and starts over from seedText.
func (g *Game) Reset(confirmed bool, seedText string) error {
	if !confirmed {
		return invalid("resetting needs confirmation")
	}
	seed, err := NewRunSeed(seedText)
	if err != nil {
		return invalid("%v", err)
	}
	g.w = NewWorld(seedText, g.tables)
	g.seed = seed
	g.log.Info("world reset", zap.String("seed", seedText))
	return nil
}
