package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/content"
)

const playerAuthor = "you"

// generateComments fabricates the pooled reactions to post. fic is nil for
// posts that are not fic announcements.
func generateComments(w *World, t *content.Tables, post *SocialPost, fic *PublishedFic, r Roller, now time.Time) []SocialComment {
	b := t.Balance
	n := clampInt(2+w.Player.Popularity/40, 1, max(1, b.MaxComments))
	commenters := pickCommenters(t, post.PlayerAuthored, n, r)
	base := CommentContext{
		PostKind:         post.Kind,
		OwnPost:          post.PlayerAuthored,
		Deokryeok:        w.Player.Deokryeok,
		PrimaryDeokryeok: w.Player.Deokryeok,
		Controversy:      w.Player.ControversyScore,
	}
	if fic != nil {
		base.Rating = fic.Rating
		base.Paid = fic.Paid
	}
	out := make([]SocialComment, 0, len(commenters))
	// Position counts non-supporter replies only; the supporter's opener does not shift it.
	pos := 0
	for _, npc := range commenters {
		c := base
		c.Commenter = npc
		c.Position = pos
		if CommenterType(npc.Type) != CommenterSupporter {
			pos++
		}
		text, sentiment := ComposeComment(c, r, t)
		if text == "" {
			continue
		}
		out = append(out, SocialComment{
			ID:        commentIDs.New(),
			Author:    npc.Name,
			Commenter: CommenterType(npc.Type),
			Body:      text,
			Sentiment: sentiment,
			CreatedAt: now,
		})
	}
	return out
}

// pickCommenters draws n roster members. The supporter always opens the thread
// on the player's own posts and otherwise never appears.
func pickCommenters(t *content.Tables, own bool, n int, r Roller) []content.NPC {
	var others []content.NPC
	for _, npc := range t.NPCs {
		if CommenterType(npc.Type) != CommenterSupporter {
			others = append(others, npc)
		}
	}
	var out []content.NPC
	if own {
		out = append(out, t.Supporter())
	}
	pool := append([]content.NPC{}, others...)
	for len(out) < n && len(pool) > 0 {
		i := r.Intn(len(pool))
		out = append(out, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return out
}

// engagement sets likes and shares from popularity and, for fics, the rating.
func engagement(w *World, post *SocialPost, fic *PublishedFic, r Roller) {
	likes := w.Player.Popularity/4 + r.Intn(5)
	if fic != nil {
		likes += fic.Rating * 3
	}
	post.Likes = likes
	post.Shares = likes / 5
}

func (g *Game) newPost(kind PostKind, title, body string, fic *PublishedFic) *SocialPost {
	post := &SocialPost{
		ID:             postIDs.New(),
		Author:         playerAuthor,
		PlayerAuthored: true,
		Kind:           kind,
		Title:          title,
		Body:           body,
		CreatedAt:      g.now(),
		Week:           g.w.Player.CurrentWeek,
	}
	if fic != nil {
		post.FicID = fic.ID
	}
	return post
}

// react fills post's comments: pooled reactions first, then a best-effort
// request to the text service. A failed request leaves only pooled comments.
func (g *Game) react(ctx context.Context, post *SocialPost, fic *PublishedFic, r Roller) {
	engagement(g.w, post, fic, r)
	post.Comments = append(post.Comments, generateComments(g.w, g.tables, post, fic, r, g.now())...)
	if g.writer == nil {
		return
	}
	lines, err := g.writer.ReactComments(ctx, ReactionRequest{
		PostTitle: post.Title,
		PostBody:  post.Body,
		Count:     2,
		Player:    g.w.Player,
	})
	if err != nil {
		g.log.Warn("reaction comments unavailable", zap.String("post", string(post.ID)), zap.Error(err))
		return
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		post.Comments = append(post.Comments, SocialComment{
			ID:        commentIDs.New(),
			Author:    "reader",
			Commenter: CommenterCasual,
			Body:      line,
			Sentiment: SentimentNeutral,
			Generated: true,
			CreatedAt: g.now(),
		})
	}
}

// musing builds a free-form post from the templates and the primary fandom.
func musing(w *World, t *content.Tables, r Roller) (string, string) {
	m, ok := pick(r, t.Musings)
	if !ok {
		return "Thoughts", "Just thinking about my fandom today."
	}
	return m.Title, fillTemplate(w, m.Body, r)
}

// npcPost has a non-supporter roster member post about the primary fandom.
// It returns nil when there is no fandom, no template or no eligible author.
func npcPost(w *World, t *content.Tables, r Roller, now time.Time) *SocialPost {
	if w.PrimaryFandom() == nil {
		return nil
	}
	var authors []content.NPC
	for _, npc := range t.NPCs {
		if CommenterType(npc.Type) != CommenterSupporter {
			authors = append(authors, npc)
		}
	}
	author, ok := pick(r, authors)
	if !ok {
		return nil
	}
	m, ok := pick(r, t.NPCPosts)
	if !ok {
		return nil
	}
	return &SocialPost{
		ID:        postIDs.New(),
		Author:    author.Name,
		Kind:      PostNPC,
		Title:     m.Title,
		Body:      fillTemplate(w, m.Body, r),
		CreatedAt: now,
		Week:      w.Player.CurrentWeek,
	}
}

// fillTemplate substitutes the primary fandom's details into body.
func fillTemplate(w *World, body string, r Roller) string {
	work, character, pairing := "my fandom", "my favorite", "my OTP"
	if fs := w.PrimaryFandom(); fs != nil {
		work, character, pairing = fs.WorkTitle, fs.FavoriteCharacter, fs.Pairing
	}
	event := "the next con"
	if w.CurrentEvent != nil {
		event = w.CurrentEvent.Name
	}
	material := "AU"
	if mat, ok := pick(r, w.Player.UnlockedMaterials); ok {
		material = strings.ReplaceAll(mat, "_", " ")
	}
	return strings.NewReplacer(
		"{work}", work,
		"{character}", character,
		"{pairing}", pairing,
		"{material}", material,
		"{event}", event,
	).Replace(body)
}
