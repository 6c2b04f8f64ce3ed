package engine

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/DaanHessen/fanlife/internal/content"
)

// spawnEvent rolls for a new event when none is current. The event belongs to
// a random fandom set; its tier is weighted toward the minor online tier.
func spawnEvent(w *World, t *content.Tables, r Roller) *GameEvent {
	if w.CurrentEvent != nil || len(w.FandomSets) == 0 {
		return nil
	}
	if !chance(r, t.Events.SpawnChance) {
		return nil
	}
	fandoms := w.orderedFandoms()
	fs, _ := pick(r, fandoms)
	weights := make([]int, len(t.Events.Tiers))
	for i, tier := range t.Events.Tiers {
		weights[i] = tier.Weight
	}
	tier := t.Events.Tiers[weighted(r, weights)]
	name, _ := pick(r, tier.Names)
	week := w.Player.CurrentWeek
	ev := &GameEvent{
		ID:                   eventIDs.New(),
		FandomID:             fs.ID,
		Name:                 strings.ReplaceAll(name, "{work}", fs.WorkTitle),
		Tier:                 EventTier(tier.Key),
		AnnouncedWeek:        week,
		RegistrationDeadline: week + t.Events.DeadlineOffset,
		EventWeek:            week + t.Events.EventOffset,
		RegistrationCost:     tier.Fee,
	}
	w.CurrentEvent = ev
	return ev
}

// registerForEvent charges the registration fee for the current event.
func registerForEvent(w *World) error {
	ev := w.CurrentEvent
	if ev == nil {
		return invalid("there is no event to register for")
	}
	if w.RegisteredEventID == ev.ID {
		return invalid("already registered for %s", ev.Name)
	}
	if w.Player.CurrentWeek > ev.RegistrationDeadline {
		return invalid("registration for %s closed in week %d", ev.Name, ev.RegistrationDeadline)
	}
	if w.Player.Money < ev.RegistrationCost {
		return shortOf("money", ev.RegistrationCost, w.Player.Money)
	}
	w.Player.Apply(StatDelta{Money: -ev.RegistrationCost})
	w.RegisteredEventID = ev.ID
	return nil
}

// SubmitOptions selects the fic and print job for the current event.
type SubmitOptions struct {
	FicID    ID
	Reprint  bool // print more even when copies are in stock
	PrintRun int
	Paper    string
	Cover    string
	Price    int // sale price per copy; 0 keeps the fic's price
}

// PrintQuote is the cost breakdown of a submission.
type PrintQuote struct {
	ReRelease bool
	Pages     int
	UnitCost  float64
	PrintRun  int
	PrintCost int
	Fee       int
	Discount  int
	Total     int
}

func quoteSubmission(w *World, t *content.Tables, opts SubmitOptions) (PrintQuote, *PublishedFic, error) {
	ev := w.CurrentEvent
	if ev == nil {
		return PrintQuote{}, nil, invalid("there is no event to submit to")
	}
	if w.RegisteredEventID != ev.ID {
		return PrintQuote{}, nil, invalid("register for %s before submitting", ev.Name)
	}
	if w.Player.CurrentWeek > ev.EventWeek {
		return PrintQuote{}, nil, invalid("%s has already taken place", ev.Name)
	}
	if ev.SubmittedFicID != "" {
		return PrintQuote{}, nil, invalid("a fic was already submitted to %s", ev.Name)
	}
	fic, ok := w.Fics[opts.FicID]
	if !ok {
		return PrintQuote{}, nil, invalid("unknown fic %q", opts.FicID)
	}
	if fic.FandomID != ev.FandomID {
		return PrintQuote{}, nil, invalid("%q is not from this event's fandom", fic.Title)
	}
	if opts.Price < 0 {
		return PrintQuote{}, nil, invalid("price cannot be negative")
	}
	if opts.Price == 0 && fic.Price == 0 {
		return PrintQuote{}, nil, invalid("set a sale price for %q", fic.Title)
	}
	p := t.Printing
	if fic.Inventory > 0 && !opts.Reprint {
		q := PrintQuote{ReRelease: true, Fee: p.ReReleaseFee, Total: p.ReReleaseFee}
		return q, fic, nil
	}
	if opts.PrintRun < 1 || opts.PrintRun > 1000 {
		return PrintQuote{}, nil, invalid("print run must be between 1 and 1000")
	}
	paper, ok := p.Paper[opts.Paper]
	if !ok {
		return PrintQuote{}, nil, invalid("unknown paper %q", opts.Paper)
	}
	cover, ok := p.Cover[opts.Cover]
	if !ok {
		return PrintQuote{}, nil, invalid("unknown cover %q", opts.Cover)
	}
	q := PrintQuote{Pages: pageCount(fic.Body, p), PrintRun: opts.PrintRun}
	q.UnitCost = float64(q.Pages)*paper.PerPage + cover.PerUnit
	q.PrintCost = int(math.Ceil(math.Round(q.UnitCost*float64(q.PrintRun)*100) / 100))
	if !fic.Printed {
		q.Fee = p.NewWorkFee
	}
	subtotal := q.PrintCost + q.Fee
	if w.Player.CurrentWeek < ev.RegistrationDeadline {
		q.Discount = int(math.Round(float64(subtotal) * p.EarlyDiscount))
	}
	q.Total = subtotal - q.Discount
	return q, fic, nil
}

// pageCount rounds the body up to whole four-page signatures.
func pageCount(body string, p content.Printing) int {
	per := max(1, p.CharsPerPage)
	pages := (utf8.RuneCountInString(body) + per - 1) / per
	pages = max(pages, p.MinPages)
	if rem := pages % 4; rem != 0 {
		pages += 4 - rem
	}
	return pages
}

func submitToEvent(w *World, t *content.Tables, opts SubmitOptions) (PrintQuote, error) {
	q, fic, err := quoteSubmission(w, t, opts)
	if err != nil {
		return PrintQuote{}, err
	}
	if w.Player.Money < q.Total {
		return PrintQuote{}, shortOf("money", q.Total, w.Player.Money)
	}
	ev := w.CurrentEvent
	w.Player.Apply(StatDelta{Money: -q.Total})
	if opts.Price > 0 {
		fic.Price = opts.Price
	}
	if !q.ReRelease {
		fic.Inventory += q.PrintRun
		fic.Printed = true
		ev.PaperQuality, ev.CoverQuality = opts.Paper, opts.Cover
	}
	ev.SubmittedFicID = fic.ID
	ev.Fresh = fic.EventAppearances == 0
	fic.EventAppearances++
	return q, nil
}

// EventResolution summarizes a finished event.
type EventResolution struct {
	Event          GameEvent
	Registered     bool
	Submitted      bool
	FicTitle       string
	PopularityGain int
	Penalty        int
	UnitsSold      int
	Revenue        int
}

// eventDue reports whether the current event's week has passed.
func eventDue(w *World) bool {
	return w.CurrentEvent != nil && w.Player.CurrentWeek > w.CurrentEvent.EventWeek
}

// resolveEvent settles the current event once and clears it.
func resolveEvent(w *World, t *content.Tables, r Roller) EventResolution {
	ev := w.CurrentEvent
	res := EventResolution{Event: *ev, Registered: w.RegisteredEventID == ev.ID}
	tier, _ := t.Tier(string(ev.Tier))
	fic := w.Fics[ev.SubmittedFicID]
	switch {
	case res.Registered && fic != nil:
		res.Submitted = true
		res.FicTitle = fic.Title
		res.PopularityGain = fic.Rating*2 + tier.PopularityBonus
		if ev.Fresh {
			res.PopularityGain += t.Events.FreshnessBonus
		}
		quality := 1.0
		if paper, ok := t.Printing.Paper[ev.PaperQuality]; ok {
			quality += paper.SalesBonus
		}
		if cover, ok := t.Printing.Cover[ev.CoverQuality]; ok {
			quality += cover.SalesBonus
		}
		scale := (1 + float64(w.Player.Popularity)/200) * (float64(fic.Rating) / 5) * tier.SalesMultiplier * quality
		fraction := 0.4 + 0.6*r.Float64()
		units := int(math.Round(float64(fic.Inventory) * fraction * scale))
		res.UnitsSold = clampInt(units, 0, fic.Inventory)
		res.Revenue = res.UnitsSold * fic.Price
		fic.Inventory -= res.UnitsSold
		w.Player.Apply(StatDelta{Popularity: res.PopularityGain, Money: res.Revenue})
	case res.Registered:
		res.Penalty = t.Events.UnregisteredPenalty
		w.Player.Apply(StatDelta{Popularity: -res.Penalty})
	}
	w.CurrentEvent = nil
	w.RegisteredEventID = ""
	w.EventsHeld++
	return res
}

func (res EventResolution) summary() (string, string) {
	title := fmt.Sprintf("%s report", res.Event.Name)
	switch {
	case res.Submitted:
		return title, fmt.Sprintf("Brought %q to %s. Sold %d copies for %d. Thank you to everyone who stopped by!",
			res.FicTitle, res.Event.Name, res.UnitsSold, res.Revenue)
	default:
		return title, fmt.Sprintf("Couldn't bring anything to %s in the end. Sorry to everyone who came looking for my booth.",
			res.Event.Name)
	}
}
