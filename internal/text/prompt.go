package text

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/DaanHessen/fanlife/internal/engine"
)

const draftSystemPrompt = `You are ghostwriting a fan fiction for a hobbyist author.
Write only the story body in plain prose with paragraph breaks. No title, no notes, no markdown headings.
Stay inside the given genres and tropes and respect the pairing and its interpretation.`

const reactionSystemPrompt = `You write short comments that readers leave under fandom posts.
Reply with a JSON array of strings and nothing else. Each comment is one or two sentences, casual, in the voice of a different reader.`

func draftMessages(req engine.DraftRequest) []openai.ChatCompletionMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	if req.WorkTitle != "" {
		fmt.Fprintf(&b, "Source work: %s\n", req.WorkTitle)
	}
	if req.Pairing != "" {
		fmt.Fprintf(&b, "Pairing: %s\n", req.Pairing)
	}
	if req.Interpretation != "" {
		fmt.Fprintf(&b, "Interpretation: %s\n", req.Interpretation)
	}
	fmt.Fprintf(&b, "Genres: %s\n", strings.Join(req.Genres, ", "))
	if len(req.Materials) > 0 {
		fmt.Fprintf(&b, "Tropes: %s\n", strings.Join(req.Materials, ", "))
	}
	fmt.Fprintf(&b, "Plan: %s\n", req.Scenario)
	if req.Sequel != nil {
		fmt.Fprintf(&b, "\nThis continues %q. It ended like this:\n%s\n", req.Sequel.Title, req.Sequel.Excerpt)
	}
	fmt.Fprintf(&b, "\nAuthor level: %s. %s\n", req.SkillTier, req.StyleGuide)
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: draftSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: b.String()},
	}
}

func reactionMessages(req engine.ReactionRequest) []openai.ChatCompletionMessage {
	p := req.Player
	mood := "lukewarm"
	switch {
	case p.ControversyScore >= 50:
		mood = "suspicious and a little hostile"
	case p.Popularity >= 100:
		mood = "excited, the author is well known"
	case p.Popularity >= 30:
		mood = "friendly"
	}
	user := fmt.Sprintf("Post title: %s\nPost:\n%s\n\nReaders are %s toward this author. Write %d comments.",
		req.PostTitle, req.PostBody, mood, max(1, req.Count))
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: reactionSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}
}

// parseComments reads a JSON array of strings, tolerating a surrounding code
// fence, and keeps at most count non-empty entries.
func parseComments(raw string, count int) ([]string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Wrap(err, "decode comment array")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no comments in response")
	}
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}
