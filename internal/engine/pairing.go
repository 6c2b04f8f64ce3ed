package engine

import (
	"math"
	"strings"
)

// PairingSeparator joins the two names of a pairing.
const PairingSeparator = "/"

// ParsePairing splits "A/B" into its two trimmed names. Only the two-token form
// is accepted.
func ParsePairing(s string) (string, string, error) {
	parts := strings.Split(s, PairingSeparator)
	if len(parts) != 2 {
		return "", "", invalid("pairing %q must be two names joined by %q", s, PairingSeparator)
	}
	a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if a == "" || b == "" {
		return "", "", invalid("pairing %q has an empty name", s)
	}
	return a, b, nil
}

// reversedPrimary returns the primary pairing that fs reverses, if any. The
// primary is looked up among the other fandom sets.
func reversedPrimary(w *World, fs *FandomSet) (string, bool) {
	a, b, err := ParsePairing(fs.Pairing)
	if err != nil || a == b {
		return "", false
	}
	for _, id := range sortedIDs(w.FandomSets) {
		other := w.FandomSets[id]
		if other.ID == fs.ID || !other.IsPrimary {
			continue
		}
		pa, pb, err := ParsePairing(other.Pairing)
		if err != nil {
			continue
		}
		if pa == b && pb == a {
			return pa + PairingSeparator + pb, true
		}
	}
	return "", false
}

// ApplyReversePairingPenalty deducts the reverse-pairing share of popularity
// once per original pairing for fs and records the trigger in fs's ledger.
// It returns the amount deducted.
func ApplyReversePairingPenalty(w *World, fs *FandomSet, ratio float64) int {
	original, ok := reversedPrimary(w, fs)
	if !ok {
		return 0
	}
	if fs.PenaltyLedger == nil {
		fs.PenaltyLedger = map[string]bool{}
	}
	if fs.PenaltyLedger[original] {
		return 0
	}
	penalty := int(math.Round(float64(w.Player.Popularity) * ratio))
	w.Player.Apply(StatDelta{Popularity: -penalty})
	fs.PenaltyLedger[original] = true
	return penalty
}
