package text

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/DaanHessen/fanlife/internal/engine"
)

// templateWriter is a deterministic, offline ghostwriter used when no API key
// is configured. Output depends only on the request.
type templateWriter struct{}

// NewTemplateWriter returns the offline writer.
func NewTemplateWriter() engine.Ghostwriter { return templateWriter{} }

var openings = []string{
	"It started, as these things always do, with %s refusing to admit anything.",
	"Nobody expected %s to be the one who noticed first.",
	"The rain had been falling for three days when %s finally knocked.",
}

var closings = []string{
	"Later, neither of them could say who had laughed first.",
	"It wasn't an ending, exactly. It was a place to start.",
	"Outside, the city kept going, unaware that anything had changed.",
}

func (templateWriter) DraftFic(_ context.Context, req engine.DraftRequest) (string, error) {
	h := pickIndex(req.Title + req.Scenario)
	lead := "they"
	if a, _, err := engine.ParsePairing(req.Pairing); err == nil {
		lead = a
	}
	var b strings.Builder
	fmt.Fprintf(&b, openings[h%len(openings)], lead)
	b.WriteString("\n\n")
	if req.Sequel != nil {
		fmt.Fprintf(&b, "After everything in %q, the quiet felt earned.\n\n", req.Sequel.Title)
	}
	b.WriteString(req.Scenario)
	b.WriteString("\n\n")
	if len(req.Materials) > 0 {
		fmt.Fprintf(&b, "Somewhere along the way it became a story about %s.\n\n",
			strings.ReplaceAll(strings.Join(req.Materials, " and "), "_", " "))
	}
	b.WriteString(closings[h%len(closings)])
	return b.String(), nil
}

func (templateWriter) ReactComments(_ context.Context, req engine.ReactionRequest) ([]string, error) {
	pool := []string{
		"saving this for later!!",
		fmt.Sprintf("%q had me thinking all day", req.PostTitle),
		"the way you write them is so specific, I love it",
		"okay but when is the next one",
	}
	n := min(max(1, req.Count), len(pool))
	start := pickIndex(req.PostTitle) % len(pool)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pool[(start+i)%len(pool)])
	}
	return out, nil
}

func pickIndex(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}
