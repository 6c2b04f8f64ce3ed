package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/DaanHessen/fanlife/internal/content"
)

// SaveVersion is bumped whenever the saved shape changes.
const SaveVersion = 2

const legacySeed = "legacy-save"

// World is the single mutable record of a save: the player plus every entity
// arena. It is owned by Game and passed explicitly to each component.
type World struct {
	Version           int                  `json:"version"`
	SeedText          string               `json:"seed"`
	Player            PlayerState          `json:"player"`
	FandomSets        map[ID]*FandomSet    `json:"fandom_sets"`
	Projects          map[ID]*Project      `json:"projects"`
	Fics              map[ID]*PublishedFic `json:"fics"`
	Posts             []*SocialPost        `json:"posts"`
	CurrentEvent      *GameEvent           `json:"current_event,omitempty"`
	RegisteredEventID ID                   `json:"registered_event_id,omitempty"`
	Schedule          WeeklySchedule       `json:"schedule"`
	BurnoutStreak     int                  `json:"burnout_streak"`
	EventsHeld        int                  `json:"events_held"`
	Log               []LogLine            `json:"log"`
}

// PlayerState holds the player's meters. Every decrement is clamped at zero.
type PlayerState struct {
	Money              int            `json:"money"`
	Stamina            int            `json:"stamina"`
	MaxStamina         int            `json:"max_stamina"`
	WritingSkill       float64        `json:"writing_skill"` // 0-100
	Popularity         int            `json:"popularity"`
	Deokryeok          int            `json:"deokryeok"` // 0-100
	ControversyScore   int            `json:"controversy_score"`
	CurrentWeek        int            `json:"current_week"`
	CurrentDay         int            `json:"current_day"`
	GenreProficiency   map[string]int `json:"genre_proficiency"`
	UnlockedGenres     []string       `json:"unlocked_genres"`
	UnlockedMaterials  []string       `json:"unlocked_materials"`
	SequelUnlocked     bool           `json:"sequel_unlocked"`
	LastCustomPostWeek int            `json:"last_custom_post_week"`
}

// StatDelta is an additive change applied through PlayerState.Apply.
type StatDelta struct {
	Stamina     int
	MaxStamina  int
	Money       int
	Popularity  int
	Deokryeok   int
	Controversy int
	Skill       float64
}

// FandomSet is an author's claimed focus on one source work.
type FandomSet struct {
	ID                ID              `json:"id"`
	WorkTitle         string          `json:"work_title"`
	WorkDescription   string          `json:"work_description"`
	FavoriteCharacter string          `json:"favorite_character"`
	Pairing           string          `json:"pairing"`
	Interpretation    string          `json:"interpretation"`
	IsPrimary         bool            `json:"is_primary"`
	BaseWorkID        ID              `json:"base_work_id,omitempty"`
	PenaltyLedger     map[string]bool `json:"penalty_ledger"`
	CreatedWeek       int             `json:"created_week"`
}

// Project is a fan work in progress.
type Project struct {
	ID             ID       `json:"id"`
	FandomID       ID       `json:"fandom_id"`
	Title          string   `json:"title"`
	Genres         []string `json:"genres"`
	Materials      []string `json:"materials"`
	Scenario       string   `json:"scenario"`
	Progress       int      `json:"progress"`
	TargetProgress int      `json:"target_progress"`
	Complete       bool     `json:"complete"`
	Finalized      bool     `json:"finalized"`
	Body           string   `json:"body,omitempty"`
	SequelOf       ID       `json:"sequel_of,omitempty"`
	CreatedWeek    int      `json:"created_week"`
}

// PublishedFic is the immutable record of a posted work; only its printed
// inventory and event appearances change afterwards.
type PublishedFic struct {
	ID               ID        `json:"id"`
	FandomID         ID        `json:"fandom_id"`
	Title            string    `json:"title"`
	Genres           []string  `json:"genres"`
	Body             string    `json:"body"`
	Rating           int       `json:"rating"` // 1-5
	PublishedAt      time.Time `json:"published_at"`
	PublishedWeek    int       `json:"published_week"`
	Paid             bool      `json:"paid"`
	Price            int       `json:"price"`
	Inventory        int       `json:"inventory"`
	Printed          bool      `json:"printed"`
	EventAppearances int       `json:"event_appearances"`
	SequelOf         ID        `json:"sequel_of,omitempty"`
}

// GameEvent is a timed community event. At most one is current.
type GameEvent struct {
	ID                   ID        `json:"id"`
	FandomID             ID        `json:"fandom_id"`
	Name                 string    `json:"name"`
	Tier                 EventTier `json:"tier"`
	AnnouncedWeek        int       `json:"announced_week"`
	RegistrationDeadline int       `json:"registration_deadline"`
	EventWeek            int       `json:"event_week"`
	RegistrationCost     int       `json:"registration_cost"`
	SubmittedFicID       ID        `json:"submitted_fic_id,omitempty"`
	Fresh                bool      `json:"fresh"`
	PaperQuality         string    `json:"paper_quality,omitempty"`
	CoverQuality         string    `json:"cover_quality,omitempty"`
}

// SocialPost is append-only once created.
type SocialPost struct {
	ID             ID              `json:"id"`
	Author         string          `json:"author"`
	PlayerAuthored bool            `json:"player_authored"`
	Kind           PostKind        `json:"kind"`
	Title          string          `json:"title"`
	Body           string          `json:"body"`
	FicID          ID              `json:"fic_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Week           int             `json:"week"`
	Likes          int             `json:"likes"`
	Shares         int             `json:"shares"`
	Comments       []SocialComment `json:"comments"`
}

type SocialComment struct {
	ID        ID            `json:"id"`
	Author    string        `json:"author"`
	Commenter CommenterType `json:"commenter"`
	Body      string        `json:"body"`
	Sentiment Sentiment     `json:"sentiment"`
	Generated bool          `json:"generated"` // drafted by the text service
	CreatedAt time.Time     `json:"created_at"`
}

// LogLine is one narrative line for display.
type LogLine struct {
	Week int    `json:"week"`
	Day  int    `json:"day"` // 0 for week-level lines
	Text string `json:"text"`
}

// NewWorld returns a fresh save seeded from seedText.
func NewWorld(seedText string, t *content.Tables) *World {
	b := t.Balance
	return &World{
		Version:  SaveVersion,
		SeedText: seedText,
		Player: PlayerState{
			Money:             b.StartMoney,
			Stamina:           b.StartStamina,
			MaxStamina:        b.MaxStamina,
			WritingSkill:      b.StartSkill,
			Popularity:        b.StartPopularity,
			Deokryeok:         b.StartDeokryeok,
			CurrentWeek:       1,
			CurrentDay:        1,
			GenreProficiency:  map[string]int{},
			UnlockedGenres:    t.StarterGenres(),
			UnlockedMaterials: t.StarterMaterials(),
		},
		FandomSets: map[ID]*FandomSet{},
		Projects:   map[ID]*Project{},
		Fics:       map[ID]*PublishedFic{},
		Posts:      []*SocialPost{},
		Log:        []LogLine{},
	}
}

// Apply adds d to the player's meters and clamps every meter to its range.
func (p *PlayerState) Apply(d StatDelta) {
	p.MaxStamina += d.MaxStamina
	if p.MaxStamina < 1 {
		p.MaxStamina = 1
	}
	p.Stamina = clampInt(p.Stamina+d.Stamina, 0, p.MaxStamina)
	p.Money = atLeastZero(p.Money + d.Money)
	p.Popularity = atLeastZero(p.Popularity + d.Popularity)
	p.Deokryeok = clampInt(p.Deokryeok+d.Deokryeok, 0, 100)
	p.ControversyScore = atLeastZero(p.ControversyScore + d.Controversy)
	p.WritingSkill = clampFloat(p.WritingSkill+d.Skill, 0, 100)
}

func (p PlayerState) hasGenre(key string) bool    { return containsString(p.UnlockedGenres, key) }
func (p PlayerState) hasMaterial(key string) bool { return containsString(p.UnlockedMaterials, key) }

// Normalize repairs a decoded save: missing collections are recreated, meters
// are clamped and dangling references dropped. Normalize is idempotent.
func (w *World) Normalize(t *content.Tables) {
	if w.Version == 0 {
		w.Version = SaveVersion
	}
	if w.SeedText == "" {
		w.SeedText = legacySeed
	}
	p := &w.Player
	if p.MaxStamina <= 0 {
		p.MaxStamina = t.Balance.MaxStamina
	}
	p.Apply(StatDelta{})
	if p.CurrentWeek < 1 {
		p.CurrentWeek = 1
	}
	if p.CurrentDay < 1 || p.CurrentDay > DaysPerWeek {
		p.CurrentDay = 1
	}
	if p.GenreProficiency == nil {
		p.GenreProficiency = map[string]int{}
	}
	if p.UnlockedGenres == nil {
		p.UnlockedGenres = t.StarterGenres()
	}
	if p.UnlockedMaterials == nil {
		p.UnlockedMaterials = t.StarterMaterials()
	}
	if w.FandomSets == nil {
		w.FandomSets = map[ID]*FandomSet{}
	}
	for id, fs := range w.FandomSets {
		if fs == nil {
			delete(w.FandomSets, id)
			continue
		}
		fs.ID = id
		if fs.PenaltyLedger == nil {
			fs.PenaltyLedger = map[string]bool{}
		}
	}
	// Base links are checked only once every nil entry is gone.
	for id, fs := range w.FandomSets {
		if _, ok := w.FandomSets[fs.BaseWorkID]; !ok || fs.BaseWorkID == id {
			fs.BaseWorkID = ""
		}
	}
	w.ensurePrimary()
	if w.Projects == nil {
		w.Projects = map[ID]*Project{}
	}
	for id, pr := range w.Projects {
		if pr == nil {
			delete(w.Projects, id)
			continue
		}
		pr.ID = id
		if pr.TargetProgress <= 0 {
			pr.TargetProgress = t.Balance.BaseTargetProgress
		}
		pr.Progress = clampInt(pr.Progress, 0, pr.TargetProgress)
		pr.Complete = pr.Progress >= pr.TargetProgress
	}
	if w.Fics == nil {
		w.Fics = map[ID]*PublishedFic{}
	}
	for id, f := range w.Fics {
		if f == nil {
			delete(w.Fics, id)
			continue
		}
		f.ID = id
		f.Inventory = atLeastZero(f.Inventory)
	}
	if w.Posts == nil {
		w.Posts = []*SocialPost{}
	}
	kept := w.Posts[:0]
	for _, post := range w.Posts {
		if post != nil {
			kept = append(kept, post)
		}
	}
	w.Posts = kept
	if w.CurrentEvent == nil || w.CurrentEvent.ID != w.RegisteredEventID {
		w.RegisteredEventID = ""
	}
	for i := range w.Schedule.Days {
		slot := &w.Schedule.Days[i]
		if slot.Action == "" {
			*slot = ScheduleSlot{}
			continue
		}
		if _, ok := t.Action(slot.Action); !ok {
			*slot = ScheduleSlot{}
			continue
		}
		if _, ok := w.Projects[slot.ProjectID]; !ok || slot.Action != content.ActionWrite {
			slot.ProjectID = ""
		}
	}
	if w.BurnoutStreak < 0 {
		w.BurnoutStreak = 0
	}
	if w.Log == nil {
		w.Log = []LogLine{}
	}
	w.trimLog(t.Balance.LogLimit)
}

// PrimaryFandom returns the primary fandom set, or nil when there are none.
func (w *World) PrimaryFandom() *FandomSet {
	for _, id := range sortedIDs(w.FandomSets) {
		if fs := w.FandomSets[id]; fs.IsPrimary {
			return fs
		}
	}
	return nil
}

// orderedFandoms returns fandom sets by creation week, then id.
func (w *World) orderedFandoms() []*FandomSet {
	out := make([]*FandomSet, 0, len(w.FandomSets))
	for _, id := range sortedIDs(w.FandomSets) {
		out = append(out, w.FandomSets[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedWeek < out[j].CreatedWeek })
	return out
}

// ensurePrimary keeps exactly one primary set whenever any exist.
func (w *World) ensurePrimary() {
	ordered := w.orderedFandoms()
	if len(ordered) == 0 {
		return
	}
	var primary *FandomSet
	for _, fs := range ordered {
		if fs.IsPrimary && primary == nil {
			primary = fs
			continue
		}
		fs.IsPrimary = false
	}
	if primary == nil {
		ordered[0].IsPrimary = true
	}
}

func (w *World) findPost(id ID) (int, *SocialPost) {
	for i, p := range w.Posts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (w *World) logf(day int, format string, args ...any) {
	w.Log = append(w.Log, LogLine{Week: w.Player.CurrentWeek, Day: day, Text: fmt.Sprintf(format, args...)})
}

func (w *World) trimLog(limit int) {
	if limit > 0 && len(w.Log) > limit {
		w.Log = append([]LogLine{}, w.Log[len(w.Log)-limit:]...)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func atLeastZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
