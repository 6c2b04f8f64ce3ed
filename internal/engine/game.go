// Package engine is the simulation core: the world record, the weekly tick
// scheduler and the components it drives, plus the command surface the
// presentation layer calls into.
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/content"
)

// Game owns the World and is the only writer to it. It is not safe for
// concurrent use; callers serialize commands.
type Game struct {
	w      *World
	tables *content.Tables
	seed   RunSeed
	writer Ghostwriter
	log    *zap.Logger
	now    func() time.Time
	roller Roller
}

// Option customizes a Game.
type Option func(*Game)

// WithGhostwriter sets the text-generation service. Without one, finalizing a
// manuscript fails with a config failure and reactions stay pooled only.
func WithGhostwriter(gw Ghostwriter) Option { return func(g *Game) { g.writer = gw } }

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// WithRoller replaces the seeded streams with r for every draw.
func WithRoller(r Roller) Option { return func(g *Game) { g.roller = r } }

// WithClock sets the timestamp source for posts and fics.
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGame starts a fresh world from seedText.
func NewGame(seedText string, t *content.Tables, opts ...Option) (*Game, error) {
	if t == nil {
		t = content.Default()
	}
	return LoadGame(NewWorld(seedText, t), t, opts...)
}

// LoadGame wraps an existing world, normalizing it first.
func LoadGame(w *World, t *content.Tables, opts ...Option) (*Game, error) {
	if w == nil {
		return nil, invalid("no world to load")
	}
	if t == nil {
		t = content.Default()
	}
	w.Normalize(t)
	seed, err := NewRunSeed(w.SeedText)
	if err != nil {
		return nil, invalid("%v", err)
	}
	g := &Game{
		w:      w,
		tables: t,
		seed:   seed,
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// World exposes the underlying record for persistence.
func (g *Game) World() *World { return g.w }

// Tables returns the content tables the game runs on.
func (g *Game) Tables() *content.Tables { return g.tables }

// rng returns the roller for a labelled draw site.
func (g *Game) rng(format string, args ...any) Roller {
	if g.roller != nil {
		return g.roller
	}
	return g.seed.Stream(fmt.Sprintf(format, args...))
}

// Snapshot is the read-only view handed to the presentation layer after every
// command.
type Snapshot struct {
	Seed          string
	Player        PlayerState
	Event         *GameEvent
	Registered    bool
	Schedule      WeeklySchedule
	ScheduleValid bool
	Problems      []string
	FandomSets    []FandomSet
	Projects      []Project
	Fics          []PublishedFic
	Posts         []SocialPost
	Log           []LogLine
}

// SnapshotLogLines is how many recent log lines a Snapshot carries.
const SnapshotLogLines = 40

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	w := g.w
	s := Snapshot{
		Seed:     w.SeedText,
		Player:   w.Player,
		Schedule: w.Schedule,
	}
	s.Player.UnlockedGenres = append([]string(nil), w.Player.UnlockedGenres...)
	s.Player.UnlockedMaterials = append([]string(nil), w.Player.UnlockedMaterials...)
	s.Player.GenreProficiency = make(map[string]int, len(w.Player.GenreProficiency))
	for k, v := range w.Player.GenreProficiency {
		s.Player.GenreProficiency[k] = v
	}
	if w.CurrentEvent != nil {
		ev := *w.CurrentEvent
		s.Event = &ev
		s.Registered = w.RegisteredEventID == ev.ID
	}
	s.Problems = w.Schedule.Problems(w, g.tables)
	s.ScheduleValid = len(s.Problems) == 0
	for _, fs := range w.orderedFandoms() {
		s.FandomSets = append(s.FandomSets, *fs)
	}
	for _, id := range sortedIDs(w.Projects) {
		s.Projects = append(s.Projects, *w.Projects[id])
	}
	for _, id := range sortedIDs(w.Fics) {
		s.Fics = append(s.Fics, *w.Fics[id])
	}
	for _, p := range w.Posts {
		s.Posts = append(s.Posts, *p)
	}
	from := max(0, len(w.Log)-SnapshotLogLines)
	s.Log = append([]LogLine(nil), w.Log[from:]...)
	return s
}
