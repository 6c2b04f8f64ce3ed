// Package content holds the static tables the simulation reads: the action
// catalog, genre and material pools, event name templates, the NPC roster,
// comment pools and balance constants. Tables are embedded YAML and may be
// overridden by a file on disk.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yml
var defaultTables []byte

// Effect names the side effect an action triggers on normal execution.
type Effect string

const (
	EffectNone   Effect = ""
	EffectWrite  Effect = "write"
	EffectSource Effect = "source"
	EffectUnlock Effect = "unlock"
	EffectSocial Effect = "social"
)

// Well-known action ids the engine special-cases.
const (
	ActionRest  = "rest"
	ActionWrite = "write"
)

// Tables is the root of tables.yml.
type Tables struct {
	Version   int          `yaml:"version"`
	Balance   Balance      `yaml:"balance"`
	Actions   []Action     `yaml:"actions"`
	Genres    []Unlockable `yaml:"genres"`
	Materials []Unlockable `yaml:"materials"`
	Printing  Printing     `yaml:"printing"`
	Events    Events       `yaml:"events"`
	NPCs      []NPC        `yaml:"npcs"`
	Pools     Pools        `yaml:"pools"`
	Musings   []Musing     `yaml:"musings"`
	NPCPosts  []Musing     `yaml:"npc_posts"` // timeline posts by roster members
}

type Balance struct {
	StartMoney      int     `yaml:"start_money"`
	StartStamina    int     `yaml:"start_stamina"`
	MaxStamina      int     `yaml:"max_stamina"`
	StartSkill      float64 `yaml:"start_skill"`
	StartPopularity int     `yaml:"start_popularity"`
	StartDeokryeok  int     `yaml:"start_deokryeok"`

	LowStaminaThreshold    int     `yaml:"low_stamina_threshold"`
	BurnoutStreakThreshold int     `yaml:"burnout_streak_threshold"`
	BurnoutChance          float64 `yaml:"burnout_chance"`
	BurnoutStaminaPenalty  int     `yaml:"burnout_stamina_penalty"`
	BurnoutDeokryeokMin    int     `yaml:"burnout_deokryeok_min"`
	BurnoutDeokryeokRatio  float64 `yaml:"burnout_deokryeok_ratio"`
	BurnoutSkillMin        float64 `yaml:"burnout_skill_min"`
	BurnoutSkillRatio      float64 `yaml:"burnout_skill_ratio"`
	ZeroStaminaRest        int     `yaml:"zero_stamina_rest"`
	MinimalRest            int     `yaml:"minimal_rest"`

	BaseTargetProgress       int     `yaml:"base_target_progress"`
	GenreProficiencyFloor    int     `yaml:"genre_proficiency_floor"`
	UnderpracticedMultiplier float64 `yaml:"underpracticed_multiplier"`
	SkillGainBase            float64 `yaml:"skill_gain_base"`
	MinDailyProgress         int     `yaml:"min_daily_progress"`

	DeokryeokDecayBase      int `yaml:"deokryeok_decay_base"`
	DeokryeokDecayWeeks     int `yaml:"deokryeok_decay_weeks"`
	DeokryeokDecayCap       int `yaml:"deokryeok_decay_cap"`
	LivingExpense           int `yaml:"living_expense"`
	LivingExpenseInterval   int `yaml:"living_expense_interval"`
	ExpenseStaminaPenalty   int `yaml:"expense_stamina_penalty"`
	ExpenseDeokryeokPenalty int `yaml:"expense_deokryeok_penalty"`
	EmergencySubsidy        int `yaml:"emergency_subsidy"`

	SourceHealChance    float64 `yaml:"source_heal_chance"`
	SourceHealStamina   int     `yaml:"source_heal_stamina"`
	SourcePenaltyChance float64 `yaml:"source_penalty_chance"`
	SourceSkillPenalty  float64 `yaml:"source_skill_penalty"`
	UnlockChance        float64 `yaml:"unlock_chance"`

	CustomPostCooldownWeeks  int     `yaml:"custom_post_cooldown_weeks"`
	ReversePairingPenalty    float64 `yaml:"reverse_pairing_penalty"`
	CanonComplaintThreshold  int     `yaml:"canon_complaint_threshold"`
	CanonComplaintHarshBelow int     `yaml:"canon_complaint_harsh_below"`
	CanonComplaintChance     float64 `yaml:"canon_complaint_chance"`
	CriticalDeokryeok        int     `yaml:"critical_deokryeok"`
	HighControversy          int     `yaml:"high_controversy"`
	PaymentComplaintChance   float64 `yaml:"payment_complaint_chance"`
	MaxComments              int     `yaml:"max_comments"`
	NPCPostChance            float64 `yaml:"npc_post_chance"`
	LogLimit                 int     `yaml:"log_limit"`
}

// Action is one schedulable daily activity and its declared stat deltas.
type Action struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	StaminaCost int    `yaml:"stamina_cost"`
	Stamina     int    `yaml:"stamina"`
	Money       int    `yaml:"money"`
	Popularity  int    `yaml:"popularity"`
	Deokryeok   int    `yaml:"deokryeok"`
	MaxStamina  int    `yaml:"max_stamina"`
	Effect      Effect `yaml:"effect"`
}

// Unlockable is a genre or material entry.
type Unlockable struct {
	Key     string `yaml:"key"`
	Label   string `yaml:"label"`
	Starter bool   `yaml:"starter"`
}

type Printing struct {
	MinPages      int              `yaml:"min_pages"`
	CharsPerPage  int              `yaml:"chars_per_page"`
	ReReleaseFee  int              `yaml:"re_release_fee"`
	NewWorkFee    int              `yaml:"new_work_fee"`
	EarlyDiscount float64          `yaml:"early_discount"`
	Paper         map[string]Paper `yaml:"paper"`
	Cover         map[string]Cover `yaml:"cover"`
}

type Paper struct {
	PerPage    float64 `yaml:"per_page"`
	SalesBonus float64 `yaml:"sales_bonus"`
}

type Cover struct {
	PerUnit    float64 `yaml:"per_unit"`
	SalesBonus float64 `yaml:"sales_bonus"`
}

type Events struct {
	SpawnChance         float64 `yaml:"spawn_chance"`
	DeadlineOffset      int     `yaml:"deadline_offset"`
	EventOffset         int     `yaml:"event_offset"`
	UnregisteredPenalty int     `yaml:"unregistered_penalty"`
	FreshnessBonus      int     `yaml:"freshness_bonus"`
	Tiers               []Tier  `yaml:"tiers"`
}

// Tier describes one of the three event scales.
type Tier struct {
	Key             string   `yaml:"key"`
	Label           string   `yaml:"label"`
	Weight          int      `yaml:"weight"`
	Fee             int      `yaml:"fee"`
	PopularityBonus int      `yaml:"popularity_bonus"`
	SalesMultiplier float64  `yaml:"sales_multiplier"`
	Names           []string `yaml:"names"`
}

// NPC is a simulated community member who comments on posts.
type NPC struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Pools struct {
	Positive   []string `yaml:"positive"`
	Neutral    []string `yaml:"neutral"`
	Negative   []string `yaml:"negative"`
	Hostile    []string `yaml:"hostile"`
	Sarcastic  []string `yaml:"sarcastic"`
	Payment    []string `yaml:"payment"`
	Backhanded []string `yaml:"backhanded"`
	Gloating   string   `yaml:"gloating"`
	CanonMild  []string `yaml:"canon_mild"`
	CanonHarsh []string `yaml:"canon_harsh"`
}

type Musing struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Default returns the embedded tables. It panics only if the embedded file is
// broken, which the package tests guard against.
func Default() *Tables {
	t, err := Parse(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("content: embedded tables invalid: %v", err))
	}
	return t
}

// Load reads tables from path, or the embedded defaults when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Parse(defaultTables)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a tables document.
func Parse(raw []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the cross references the engine relies on.
func (t *Tables) Validate() error {
	if t.Balance.MaxStamina <= 0 {
		return fmt.Errorf("balance.max_stamina must be positive")
	}
	seen := make(map[string]bool, len(t.Actions))
	for _, a := range t.Actions {
		if a.ID == "" {
			return fmt.Errorf("action with empty id")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate action %q", a.ID)
		}
		seen[a.ID] = true
	}
	for _, id := range []string{ActionRest, ActionWrite} {
		if !seen[id] {
			return fmt.Errorf("missing required action %q", id)
		}
	}
	if len(t.Events.Tiers) == 0 {
		return fmt.Errorf("events.tiers is empty")
	}
	for _, tier := range t.Events.Tiers {
		if tier.Weight <= 0 || len(tier.Names) == 0 {
			return fmt.Errorf("event tier %q needs a positive weight and names", tier.Key)
		}
	}
	supporters := 0
	for _, n := range t.NPCs {
		if n.Type == "supporter" {
			supporters++
		}
	}
	if supporters != 1 {
		return fmt.Errorf("npc roster needs exactly one supporter, got %d", supporters)
	}
	if len(t.Printing.Paper) == 0 || len(t.Printing.Cover) == 0 {
		return fmt.Errorf("printing needs paper and cover options")
	}
	return nil
}

// Action looks up an action by id.
func (t *Tables) Action(id string) (Action, bool) {
	for _, a := range t.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// Tier looks up an event tier by key.
func (t *Tables) Tier(key string) (Tier, bool) {
	for _, tier := range t.Events.Tiers {
		if tier.Key == key {
			return tier, true
		}
	}
	return Tier{}, false
}

// HasGenre reports whether key is a catalogued genre.
func (t *Tables) HasGenre(key string) bool { return hasKey(t.Genres, key) }

// HasMaterial reports whether key is a catalogued material.
func (t *Tables) HasMaterial(key string) bool { return hasKey(t.Materials, key) }

// StarterGenres lists genres unlocked on a fresh save.
func (t *Tables) StarterGenres() []string { return starters(t.Genres) }

// StarterMaterials lists materials unlocked on a fresh save.
func (t *Tables) StarterMaterials() []string { return starters(t.Materials) }

// Supporter returns the designated always-supportive NPC.
func (t *Tables) Supporter() NPC {
	for _, n := range t.NPCs {
		if n.Type == "supporter" {
			return n
		}
	}
	return NPC{}
}

// PaperKeys returns the sorted paper quality keys.
func (t *Tables) PaperKeys() []string { return sortedKeys(t.Printing.Paper) }

// CoverKeys returns the sorted cover quality keys.
func (t *Tables) CoverKeys() []string { return sortedKeys(t.Printing.Cover) }

func hasKey(list []Unlockable, key string) bool {
	for _, u := range list {
		if u.Key == key {
			return true
		}
	}
	return false
}

func starters(list []Unlockable) []string {
	var out []string
	for _, u := range list {
		if u.Starter {
			out = append(out, u.Key)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
