package engine

import "context"

// Ghostwriter is the external text-generation service. Implementations return
// *GenerationError on failure; the engine never retries.
type Ghostwriter interface {
	DraftFic(ctx context.Context, req DraftRequest) (string, error)
	ReactComments(ctx context.Context, req ReactionRequest) ([]string, error)
}

// DraftRequest is the structured plan for a fan-work body.
type DraftRequest struct {
	Title          string         `json:"title"`
	WorkTitle      string         `json:"work_title"`
	Pairing        string         `json:"pairing"`
	Interpretation string         `json:"interpretation"`
	Genres         []string       `json:"genres"`
	Materials      []string       `json:"materials"`
	Scenario       string         `json:"scenario"`
	SkillTier      string         `json:"skill_tier"`
	StyleGuide     string         `json:"style_guide"`
	Sequel         *SequelContext `json:"sequel,omitempty"`
}

// SequelContext carries the prior work when a project continues one.
type SequelContext struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// ReactionRequest asks for count short reactions to a post.
type ReactionRequest struct {
	PostTitle string      `json:"post_title"`
	PostBody  string      `json:"post_body"`
	Count     int         `json:"count"`
	Player    PlayerState `json:"player"`
}
