package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/DaanHessen/fanlife/internal/engine"
)

func (m model) View() string {
	if m.form != nil {
		return m.renderForm()
	}
	var body string
	switch m.view {
	case viewWorks:
		body = m.renderWorks()
	case viewFeed:
		body = m.renderFeed()
	case viewLog:
		body = m.renderLog()
	case viewHelp:
		body = m.renderHelp()
	default:
		body = m.renderDashboard()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTopBar(), body, m.renderBottomBar())
}

func (m model) screenWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

func (m model) renderTopBar() string {
	p := m.snap.Player
	left := fmt.Sprintf("FANLIFE • week %d • day %d", p.CurrentWeek, p.CurrentDay)
	if fs := primaryOf(m.snap.FandomSets); fs != nil {
		left += " • " + fs.WorkTitle + " (" + fs.Pairing + ")"
	}
	right := "seed " + m.snap.Seed
	gap := m.screenWidth() - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.st.title.Render(left + strings.Repeat(" ", gap) + right)
}

func (m model) renderBottomBar() string {
	keys := m.st.muted.Render("[1-7/j/k] day  [ ] action  [p] project  [a] suggest  [w] run week  [tab] views  [?] help  [q] quit")
	status := m.status
	if m.busy {
		status = "… " + status
	}
	if m.failed {
		status = m.st.warn.Render(status)
	} else {
		status = m.st.good.Render(status)
	}
	return keys + "\n" + status
}

func (m model) renderDashboard() string {
	w := m.screenWidth()
	sideWidth := 34
	if w < 90 {
		sideWidth = 28
	}
	main := lipgloss.NewStyle().Width(w - sideWidth - 2).Render(m.renderSchedule() + "\n" + m.renderReport())
	side := m.st.panel.Width(sideWidth).Render(m.renderStats() + "\n" + m.renderEvent())
	return lipgloss.JoinHorizontal(lipgloss.Top, main, side)
}

func (m model) renderSchedule() string {
	var b strings.Builder
	b.WriteString(m.st.accent.Render("THIS WEEK") + "\n")
	for i, slot := range m.snap.Schedule.Days {
		label := m.st.muted.Render("(empty)")
		if slot.Action != "" {
			label = actionLabel(m, slot.Action)
			if slot.ProjectID != "" {
				label += " → " + projectTitle(m.snap.Projects, slot.ProjectID)
			}
		}
		line := fmt.Sprintf("  %d  %s", i+1, label)
		if i == m.day {
			line = m.st.selected.Render(fmt.Sprintf("▸ %d  ", i+1)) + label
		}
		b.WriteString(line + "\n")
	}
	if !m.snap.ScheduleValid {
		for _, p := range m.snap.Problems {
			b.WriteString(m.st.warn.Render("  ! "+p) + "\n")
		}
	}
	return b.String()
}

func (m model) renderReport() string {
	rep := m.report
	if rep == nil {
		return m.st.muted.Render("Plan the week, then press w.")
	}
	var b strings.Builder
	b.WriteString(m.st.accent.Render(fmt.Sprintf("LAST WEEK (%d)", rep.Week)) + "\n")
	for _, d := range rep.Days {
		line := fmt.Sprintf("  day %d  %-10s %s", d.Day, d.Action, d.Outcome)
		if d.Progress != nil {
			line += fmt.Sprintf("  +%d (%s)", d.Progress.Gained, d.Progress.Band)
			if d.Progress.JustCompleted {
				line += " done!"
			}
		}
		if d.Unlocked != "" {
			line += "  unlocked " + d.Unlocked
		}
		if d.Burnout != nil {
			line += m.st.warn.Render(fmt.Sprintf("  burnout -%d stamina", d.Burnout.Stamina))
		}
		b.WriteString(line + "\n")
	}
	if res := rep.Resolution; res != nil {
		b.WriteString(fmt.Sprintf("  %s: sold %d for %d, popularity %+d\n", res.Event.Name, res.UnitsSold, res.Revenue, res.PopularityGain-res.Penalty))
	}
	return b.String()
}

func (m model) renderStats() string {
	p := m.snap.Player
	var b strings.Builder
	b.WriteString(m.st.accent.Render("YOU") + "\n")
	b.WriteString(m.meter("Stamina", p.Stamina, p.MaxStamina))
	b.WriteString(m.meter("Deok", p.Deokryeok, 100))
	b.WriteString(m.meter("Skill", int(p.WritingSkill), 100))
	b.WriteString(fmt.Sprintf("Money %d\n", p.Money))
	b.WriteString(fmt.Sprintf("Popularity %d  Controversy %d\n", p.Popularity, p.ControversyScore))
	b.WriteString(fmt.Sprintf("Genres %s\n", strings.Join(p.UnlockedGenres, ", ")))
	if p.SequelUnlocked {
		b.WriteString("Sequels unlocked\n")
	}
	return b.String()
}

func (m model) meter(label string, v, top int) string {
	const width = 12
	fill := 0
	if top > 0 {
		fill = int(float64(v)/float64(top)*width + 0.5)
	}
	fill = min(max(fill, 0), width)
	return fmt.Sprintf("%-8s %s%s %3d\n", label,
		m.st.fill.Render(strings.Repeat("█", fill)),
		m.st.empty.Render(strings.Repeat("·", width-fill)), v)
}

func (m model) renderEvent() string {
	ev := m.snap.Event
	if ev == nil {
		return m.st.muted.Render("No event announced.")
	}
	var b strings.Builder
	b.WriteString(m.st.accent.Render("EVENT") + "\n")
	b.WriteString(ev.Name + " (" + string(ev.Tier) + ")\n")
	b.WriteString(fmt.Sprintf("Register by week %d for %d\n", ev.RegistrationDeadline, ev.RegistrationCost))
	b.WriteString(fmt.Sprintf("Held in week %d\n", ev.EventWeek))
	switch {
	case ev.SubmittedFicID != "":
		b.WriteString(m.st.good.Render("Submitted: "+ficTitle(m.snap.Fics, ev.SubmittedFicID)) + "\n")
	case m.snap.Registered:
		b.WriteString(m.st.good.Render("Registered; submit with b") + "\n")
	default:
		b.WriteString(m.st.muted.Render("Register with r") + "\n")
	}
	return b.String()
}

func (m model) renderWorks() string {
	var b strings.Builder
	b.WriteString(m.st.accent.Render("FANDOM SETS") + m.st.muted.Render("  [n] new  [d] delete") + "\n")
	for i, fs := range m.snap.FandomSets {
		mark := " "
		if fs.IsPrimary {
			mark = "★"
		}
		b.WriteString(fmt.Sprintf(" %s %d. %s — %s, %s\n", mark, i+1, fs.WorkTitle, fs.FavoriteCharacter, fs.Pairing))
	}
	b.WriteString("\n" + m.st.accent.Render("PROJECTS") + m.st.muted.Render("  [o] plan  [f] finalize  [u] publish") + "\n")
	for _, p := range m.snap.Projects {
		state := fmt.Sprintf("%d/%d", p.Progress, p.TargetProgress)
		switch {
		case p.Finalized:
			state = m.st.good.Render("ready to publish")
		case p.Complete:
			state = m.st.alt.Render("needs a final draft")
		}
		b.WriteString(fmt.Sprintf("   %s [%s] %s\n", p.Title, strings.Join(p.Genres, "/"), state))
	}
	b.WriteString("\n" + m.st.accent.Render("PUBLISHED") + m.st.muted.Render("  [v] quote  [b] submit to event") + "\n")
	for i, f := range m.snap.Fics {
		price := "free"
		if f.Paid || f.Price > 0 {
			price = fmt.Sprintf("%d", f.Price)
		}
		b.WriteString(fmt.Sprintf("   %d. %s  %d/5  %s  stock %d\n", i+1, f.Title, f.Rating, price, f.Inventory))
	}
	return b.String()
}

func (m model) renderFeed() string {
	var b strings.Builder
	b.WriteString(m.st.accent.Render("FEED") + m.st.muted.Render("  [m] post  [x] delete yours") + "\n")
	own := len(ownPosts(m.snap.Posts))
	for i := len(m.snap.Posts) - 1; i >= 0; i-- {
		post := m.snap.Posts[i]
		head := fmt.Sprintf("%s — %s (week %d)", post.Author, post.Title, post.Week)
		if post.PlayerAuthored {
			head = fmt.Sprintf("#%d ", own) + head
			own--
		}
		b.WriteString(m.st.alt.Render(head) + "\n")
		for _, c := range post.Comments {
			b.WriteString(m.st.muted.Render("   "+c.Author+": ") + c.Body + "\n")
		}
	}
	if len(m.snap.Posts) == 0 {
		b.WriteString(m.st.muted.Render("Nothing posted yet.") + "\n")
	}
	return b.String()
}

// logMarkdown groups the recent log lines by week.
func logMarkdown(lines []engine.LogLine) string {
	var b strings.Builder
	week := -1
	for _, l := range lines {
		if l.Week != week {
			week = l.Week
			fmt.Fprintf(&b, "\n## Week %d\n\n", week)
		}
		if l.Day > 0 {
			fmt.Fprintf(&b, "- **Day %d** %s\n", l.Day, l.Text)
		} else {
			fmt.Fprintf(&b, "- %s\n", l.Text)
		}
	}
	if b.Len() == 0 {
		return "_Nothing has happened yet._\n"
	}
	return b.String()
}

func (m model) renderLog() string {
	md := logMarkdown(m.snap.Log)
	out := md
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(m.screenWidth()-4))
	if err == nil {
		if rendered, err := renderer.Render(md); err == nil {
			out = rendered
		}
	}
	lines := strings.Split(out, "\n")
	offset := min(m.logScroll, max(len(lines)-1, 0))
	if avail := m.height - 4; avail > 5 && len(lines)-offset > avail {
		lines = lines[offset : offset+avail]
	} else {
		lines = lines[offset:]
	}
	return strings.Join(lines, "\n")
}

func (m model) renderHelp() string {
	return m.st.panel.Render(strings.Join([]string{
		m.st.accent.Render("SCHEDULE"),
		"1-7 / j k   pick a day",
		"[ ]         change that day's action",
		"p           switch the project a writing day works on",
		"a / c       suggest empty days / clear the week",
		"w           run the week",
		"",
		m.st.accent.Render("WORKS"),
		"n / d       new / delete fandom set",
		"o           plan a project",
		"f / u       finalize / publish a manuscript",
		"r           register for the current event",
		"v / b       quote / submit a fic for the event",
		"",
		m.st.accent.Render("SOCIAL"),
		"m / x       post a musing / delete your post",
		"",
		m.st.accent.Render("OTHER"),
		"tab         dashboard, works, feed, log",
		"t           theme",
		"s           save",
		"X           start over",
		"q           save and quit",
	}, "\n"))
}

func (m model) renderForm() string {
	f := m.form
	var b strings.Builder
	b.WriteString(m.st.title.Render(f.title) + "\n\n")
	for i, label := range f.labels {
		value := f.values[i]
		if i == f.index {
			b.WriteString(m.st.selected.Render("▸ "+label+": ") + value + "█\n")
			continue
		}
		b.WriteString("  " + m.st.muted.Render(label+": ") + value + "\n")
	}
	b.WriteString("\n" + m.st.muted.Render("enter next/submit • tab/shift+tab move • esc cancel"))
	return m.st.panel.Render(b.String())
}

func actionLabel(m model, id string) string {
	if a, ok := m.game.Tables().Action(id); ok && a.Label != "" {
		return a.Label
	}
	return id
}

func projectTitle(projects []engine.Project, id engine.ID) string {
	for _, p := range projects {
		if p.ID == id {
			return p.Title
		}
	}
	return "?"
}

func ficTitle(fics []engine.PublishedFic, id engine.ID) string {
	for _, f := range fics {
		if f.ID == id {
			return f.Title
		}
	}
	return "?"
}

func primaryOf(sets []engine.FandomSet) *engine.FandomSet {
	for i := range sets {
		if sets[i].IsPrimary {
			return &sets[i]
		}
	}
	return nil
}
