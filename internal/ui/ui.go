package ui

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/engine"
	"github.com/DaanHessen/fanlife/internal/store"
)

const (
	viewDashboard = "dashboard"
	viewWorks     = "works"
	viewFeed      = "feed"
	viewLog       = "log"
	viewHelp      = "help"
)

var primaryViews = []string{viewDashboard, viewWorks, viewFeed, viewLog}

var seedEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// RandomSeedText returns a fresh lowercase seed.
func RandomSeedText() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "fallback-seed"
	}
	return seedEncoding.EncodeToString(buf)
}

// opDoneMsg carries the outcome of a command run off the update loop.
type opDoneMsg struct {
	status string
	err    error
	report *engine.WeekReport
	save   bool
}

type model struct {
	ctx   context.Context
	game  *engine.Game
	saves *store.Saves
	log   *zap.Logger

	snap   engine.Snapshot
	view   string
	theme  string
	st     styles
	day    int // selected schedule row, 0-based
	form   *form
	busy   bool
	status string
	failed bool
	report *engine.WeekReport

	width, height int
	logScroll     int
}

func newModel(ctx context.Context, g *engine.Game, saves *store.Saves, theme string, log *zap.Logger) model {
	if log == nil {
		log = zap.NewNop()
	}
	if _, ok := palettes[theme]; !ok {
		theme = defaultTheme
	}
	m := model{ctx: ctx, game: g, saves: saves, log: log, view: viewDashboard, theme: theme, st: newStyles(theme)}
	m.refresh()
	return m
}

func (m *model) refresh() { m.snap = m.game.Snapshot() }

func (m *model) setStatus(msg string, err error) {
	if err != nil {
		m.status, m.failed = err.Error(), true
		return
	}
	m.status, m.failed = msg, false
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case opDoneMsg:
		m.busy = false
		if msg.report != nil {
			m.report = msg.report
		}
		m.refresh()
		m.setStatus(msg.status, msg.err)
		if msg.save && msg.err == nil {
			return m, m.saveCmd()
		}
		return m, nil
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.updateKeys(msg.String())
	}
	return m, nil
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.Type {
	case tea.KeyEsc:
		m.form = nil
		m.setStatus("cancelled", nil)
	case tea.KeyTab, tea.KeyDown:
		f.next()
	case tea.KeyShiftTab, tea.KeyUp:
		f.prev()
	case tea.KeyBackspace:
		f.backspace()
	case tea.KeyEnter:
		if !f.last() {
			f.next()
			return m, nil
		}
		status, err := f.submit(f.trimmed())
		m.form = nil
		m.refresh()
		m.setStatus(status, err)
	case tea.KeySpace:
		f.typeRunes(" ")
	case tea.KeyRunes:
		f.typeRunes(string(msg.Runes))
	}
	return m, nil
}

func (m model) updateKeys(k string) (tea.Model, tea.Cmd) {
	if m.view == viewLog {
		switch k {
		case "down", "j":
			m.logScroll++
			return m, nil
		case "up", "k":
			if m.logScroll > 0 {
				m.logScroll--
			}
			return m, nil
		}
	}
	switch k {
	case "ctrl+c", "q":
		if save := m.saveCmd(); save != nil {
			return m, tea.Sequence(save, tea.Quit)
		}
		return m, tea.Quit
	case "tab":
		m.view = nextView(m.view)
	case "?":
		if m.view == viewHelp {
			m.view = viewDashboard
		} else {
			m.view = viewHelp
		}
	case "esc":
		m.view = viewDashboard
	case "t":
		m.theme = nextThemeName(m.theme, 1)
		m.st = newStyles(m.theme)
	case "s":
		return m, m.saveCmd()
	case "1", "2", "3", "4", "5", "6", "7":
		m.day = int(k[0] - '1')
	case "down", "j":
		m.day = (m.day + 1) % engine.DaysPerWeek
	case "up", "k":
		m.day = (m.day + engine.DaysPerWeek - 1) % engine.DaysPerWeek
	case "]":
		m.cycleAction(1)
	case "[":
		m.cycleAction(-1)
	case "p":
		m.cycleProject()
	case "a":
		m.game.SuggestSchedule()
		m.refresh()
		m.setStatus("empty days filled with suggestions", nil)
	case "c":
		m.game.ClearSchedule()
		m.refresh()
		m.setStatus("schedule cleared", nil)
	case "w":
		m.busy = true
		m.setStatus("the week is underway...", nil)
		return m, m.weekCmd()
	case "r":
		err := m.game.RegisterForEvent()
		m.refresh()
		m.setStatus("registered for "+eventName(m.snap.Event), err)
	case "f":
		id, ok := m.firstProject(func(p engine.Project) bool { return p.Complete && !p.Finalized })
		if !ok {
			m.setStatus("no finished manuscript waiting for a final draft", nil)
			return m, nil
		}
		m.busy = true
		m.setStatus("drafting the final manuscript...", nil)
		return m, m.finalizeCmd(id)
	case "u":
		m.form = m.publishForm()
	case "n":
		m.form = m.fandomForm()
	case "d":
		m.form = m.deleteFandomForm()
	case "o":
		m.form = m.planForm()
	case "v":
		m.form = m.submitForm(false)
	case "b":
		m.form = m.submitForm(true)
	case "m":
		m.form = m.musingForm()
	case "x":
		m.form = m.deletePostForm()
	case "X":
		m.form = m.resetForm()
	}
	return m, nil
}

func nextView(current string) string {
	for i, v := range primaryViews {
		if v == current {
			return primaryViews[(i+1)%len(primaryViews)]
		}
	}
	return viewDashboard
}

func (m *model) cycleAction(step int) {
	ids := []string{""}
	for _, a := range m.game.Tables().Actions {
		ids = append(ids, a.ID)
	}
	slot := m.snap.Schedule.Days[m.day]
	idx := 0
	for i, id := range ids {
		if id == slot.Action {
			idx = i
		}
	}
	idx = (idx + step + len(ids)) % len(ids)
	next := engine.ScheduleSlot{Action: ids[idx]}
	if next.Action == "write" {
		if id, ok := m.firstProject(func(p engine.Project) bool { return !p.Complete }); ok {
			next.ProjectID = id
		}
	}
	m.setStatus("", m.game.SetDay(m.day+1, next))
	m.refresh()
}

func (m *model) cycleProject() {
	slot := m.snap.Schedule.Days[m.day]
	if slot.Action != "write" {
		m.setStatus("only writing days take a project", nil)
		return
	}
	var open []engine.ID
	for _, p := range m.snap.Projects {
		if !p.Complete {
			open = append(open, p.ID)
		}
	}
	if len(open) == 0 {
		m.setStatus("no project to write; plan one with o", nil)
		return
	}
	idx := -1
	for i, id := range open {
		if id == slot.ProjectID {
			idx = i
		}
	}
	slot.ProjectID = open[(idx+1)%len(open)]
	m.setStatus("", m.game.SetDay(m.day+1, slot))
	m.refresh()
}

func (m *model) firstProject(match func(engine.Project) bool) (engine.ID, bool) {
	for _, p := range m.snap.Projects {
		if match(p) {
			return p.ID, true
		}
	}
	return "", false
}

// pick resolves a 1-based list number typed into a form.
func pick[T any](items []T, raw string, what string) (T, error) {
	var zero T
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(items) {
		return zero, fmt.Errorf("pick a %s between 1 and %d", what, len(items))
	}
	return items[n-1], nil
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return n, nil
}

func yes(raw string) bool {
	switch strings.ToLower(raw) {
	case "y", "yes":
		return true
	}
	return false
}

func eventName(ev *engine.GameEvent) string {
	if ev == nil {
		return "the event"
	}
	return ev.Name
}

// Commands ------------------------------------------------------------------

func (m model) weekCmd() tea.Cmd {
	ctx, g := m.ctx, m.game
	return func() tea.Msg {
		rep, err := g.StartWeek(ctx)
		if err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: weekHeadline(rep), report: &rep, save: true}
	}
}

func (m model) finalizeCmd(id engine.ID) tea.Cmd {
	ctx, g := m.ctx, m.game
	return func() tea.Msg {
		if err := g.FinalizeProject(ctx, id); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "final manuscript ready; publish it with u", save: true}
	}
}

// saveCmd snapshots the world on the update goroutine; only the write to the
// backend runs in the returned command.
func (m model) saveCmd() tea.Cmd {
	if m.saves == nil {
		return nil
	}
	ctx, saves := m.ctx, m.saves
	raw, err := store.Encode(m.game.World())
	if err != nil {
		return func() tea.Msg { return opDoneMsg{err: engine.PersistenceFailure("save", err)} }
	}
	return func() tea.Msg {
		if err := saves.SaveEncoded(ctx, raw); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "saved to " + saves.Key()}
	}
}

func weekHeadline(rep engine.WeekReport) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("week %d done", rep.Week))
	if rep.Expense > 0 {
		parts = append(parts, fmt.Sprintf("paid %d in living costs", rep.Expense))
	}
	if rep.Subsidy > 0 {
		parts = append(parts, fmt.Sprintf("got a %d emergency subsidy", rep.Subsidy))
	}
	if rep.Resolution != nil {
		parts = append(parts, rep.Resolution.Event.Name+" is over")
	}
	if rep.Spawned != nil {
		parts = append(parts, rep.Spawned.Name+" announced")
	}
	return strings.Join(parts, "; ")
}

// Forms ---------------------------------------------------------------------

func (m *model) fandomForm() *form {
	g := m.game
	sets := m.snap.FandomSets
	return newForm("New fandom set", func(v []string) (string, error) {
		in := engine.FandomSetInput{
			WorkTitle:         v[0],
			WorkDescription:   v[1],
			FavoriteCharacter: v[2],
			Pairing:           v[3],
			Interpretation:    v[4],
			Primary:           yes(v[5]),
		}
		if v[6] != "" {
			base, err := pick(sets, v[6], "fandom set")
			if err != nil {
				return "", err
			}
			in.BaseWorkID = base.ID
		}
		_, penalty, err := g.SaveFandomSet(in)
		if err != nil {
			return "", err
		}
		if penalty > 0 {
			return fmt.Sprintf("fandom set saved; the reverse pairing cost you %d popularity", penalty), nil
		}
		return "fandom set saved", nil
	}, "Work title", "Description", "Favorite character", "Pairing (A/B)", "Interpretation", "Primary? (y/n)", "Reuses work of set # (blank for none)")
}

func (m *model) deleteFandomForm() *form {
	g := m.game
	sets := m.snap.FandomSets
	return newForm("Delete fandom set", func(v []string) (string, error) {
		fs, err := pick(sets, v[0], "fandom set")
		if err != nil {
			return "", err
		}
		if err := g.DeleteFandomSet(fs.ID, v[1] == "yes"); err != nil {
			return "", err
		}
		return "deleted " + fs.WorkTitle, nil
	}, "Fandom set #", "Type yes to confirm")
}

func (m *model) planForm() *form {
	g := m.game
	sets, fics := m.snap.FandomSets, m.snap.Fics
	return newForm("Plan a project", func(v []string) (string, error) {
		fs, err := pick(sets, v[0], "fandom set")
		if err != nil {
			return "", err
		}
		plan := engine.ProjectPlan{FandomID: fs.ID, Title: v[1], Genres: splitList(v[2]), Materials: splitList(v[3]), Scenario: v[4]}
		if v[5] != "" {
			prior, err := pick(fics, v[5], "fic")
			if err != nil {
				return "", err
			}
			plan.SequelOf = prior.ID
		}
		_, warnings, err := g.PlanProject(plan)
		if err != nil {
			return "", err
		}
		if len(warnings) > 0 {
			return "project planned; " + strings.Join(warnings, "; "), nil
		}
		return "project planned", nil
	}, "Fandom set #", "Title", "Genres (comma separated)", "Materials (comma separated)", "Scenario", "Sequel of fic # (blank for none)")
}

func (m *model) publishForm() *form {
	id, ok := m.firstProject(func(p engine.Project) bool { return p.Finalized })
	if !ok {
		m.setStatus("nothing to publish; finalize a finished project with f", nil)
		return nil
	}
	ctx, g := m.ctx, m.game
	return newForm("Publish", func(v []string) (string, error) {
		price, err := optionalInt(v[0])
		if err != nil {
			return "", err
		}
		fic, err := g.PublishProject(ctx, id, engine.PublishOptions{Paid: price > 0, Price: price})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s is out: readers rate it %d/5", fic.Title, fic.Rating), nil
	}, "Price (blank for free)")
}

func (m *model) submitForm(commit bool) *form {
	g := m.game
	fics := m.snap.Fics
	title := "Quote a submission"
	if commit {
		title = "Submit to " + eventName(m.snap.Event)
	}
	return newForm(title, func(v []string) (string, error) {
		fic, err := pick(fics, v[0], "fic")
		if err != nil {
			return "", err
		}
		run, err := optionalInt(v[1])
		if err != nil {
			return "", err
		}
		price, err := optionalInt(v[4])
		if err != nil {
			return "", err
		}
		opts := engine.SubmitOptions{FicID: fic.ID, PrintRun: run, Paper: v[2], Cover: v[3], Price: price, Reprint: yes(v[5])}
		var q engine.PrintQuote
		if commit {
			q, err = g.SubmitToEvent(opts)
		} else {
			q, err = g.QuoteSubmission(opts)
		}
		if err != nil {
			return "", err
		}
		return formatQuote(q, commit), nil
	}, "Fic #", "Print run", "Paper ("+strings.Join(g.Tables().PaperKeys(), "/")+")",
		"Cover ("+strings.Join(g.Tables().CoverKeys(), "/")+")", "Price per copy (blank keeps)", "Reprint? (y/n)")
}

func formatQuote(q engine.PrintQuote, committed bool) string {
	verb := "would cost"
	if committed {
		verb = "paid"
	}
	if q.ReRelease {
		return fmt.Sprintf("re-release from stock %s %d (table fee)", verb, q.Total)
	}
	return fmt.Sprintf("%d pages x %d copies at %.2f: print %d + fee %d - discount %d, %s %d",
		q.Pages, q.PrintRun, q.UnitCost, q.PrintCost, q.Fee, q.Discount, verb, q.Total)
}

func (m *model) musingForm() *form {
	ctx, g := m.ctx, m.game
	return newForm("Post something", func(v []string) (string, error) {
		post, err := g.PostCustomContent(ctx, v[0], v[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("posted; %d comments so far", len(post.Comments)), nil
	}, "Title", "Body")
}

func (m *model) deletePostForm() *form {
	g := m.game
	posts := ownPosts(m.snap.Posts)
	return newForm("Delete one of your posts", func(v []string) (string, error) {
		post, err := pick(posts, v[0], "post")
		if err != nil {
			return "", err
		}
		if err := g.DeletePost(post.ID); err != nil {
			return "", err
		}
		return "post deleted", nil
	}, "Post #")
}

func (m *model) resetForm() *form {
	g, log := m.game, m.log
	return newForm("Start over", func(v []string) (string, error) {
		seed := v[1]
		if seed == "" {
			seed = RandomSeedText()
		}
		if err := g.Reset(v[0] == "reset", seed); err != nil {
			return "", err
		}
		log.Info("game reset from ui")
		return "fresh start with seed " + seed, nil
	}, "Type reset to confirm", "Seed (blank for random)")
}

func ownPosts(posts []engine.SocialPost) []engine.SocialPost {
	var out []engine.SocialPost
	for _, p := range posts {
		if p.PlayerAuthored {
			out = append(out, p)
		}
	}
	return out
}
