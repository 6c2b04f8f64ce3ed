package engine

import (
	"strings"

	"github.com/DaanHessen/fanlife/internal/content"
)

// CommentContext is everything the Content Sentiment Engine looks at when it
// picks a comment.
type CommentContext struct {
	PostKind         PostKind
	OwnPost          bool // authored by the player
	Commenter        content.NPC
	Rating           int // 0 when the post is not a rated fic
	Paid             bool
	Deokryeok        int // owning fandom's devotion
	PrimaryDeokryeok int
	Controversy      int
	Position         int // 0 for the first non-supporter comment on the post
}

func (c CommentContext) commenter() CommenterType { return CommenterType(c.Commenter.Type) }

// sentimentRule is one row of the precedence table. The first rule whose
// applies returns true chooses the pool.
type sentimentRule struct {
	name    string
	applies func(c CommentContext, b content.Balance) bool
	choose  func(c CommentContext, r Roller, b content.Balance) Sentiment
}

var sentimentRules = []sentimentRule{
	{
		name: "supporter-on-own-post",
		applies: func(c CommentContext, _ content.Balance) bool {
			return c.commenter() == CommenterSupporter && c.OwnPost
		},
		choose: func(CommentContext, Roller, content.Balance) Sentiment { return SentimentPositive },
	},
	{
		name: "anti",
		applies: func(c CommentContext, _ content.Balance) bool {
			return c.commenter() == CommenterAnti
		},
		choose: func(_ CommentContext, r Roller, _ content.Balance) Sentiment {
			if chance(r, 0.7) {
				return SentimentSarcastic
			}
			return SentimentHostile
		},
	},
	{
		name: "rival-high-rating",
		applies: func(c CommentContext, _ content.Balance) bool {
			return c.commenter() == CommenterRival && c.Rating >= 4
		},
		choose: func(CommentContext, Roller, content.Balance) Sentiment { return SentimentBackhand },
	},
	{
		name: "rival-low-rating",
		applies: func(c CommentContext, _ content.Balance) bool {
			return c.commenter() == CommenterRival && c.Rating >= 1 && c.Rating <= 2
		},
		choose: func(CommentContext, Roller, content.Balance) Sentiment { return SentimentGloating },
	},
	{
		name: "rating-1",
		applies: func(c CommentContext, _ content.Balance) bool {
			return c.Rating == 1
		},
		choose: func(c CommentContext, r Roller, b content.Balance) Sentiment {
			if c.PrimaryDeokryeok < b.CriticalDeokryeok || c.Controversy >= b.HighControversy {
				return SentimentHostile
			}
			if chance(r, 0.5) {
				return SentimentHostile
			}
			return SentimentSarcastic
		},
	},
	{
		name: "rating-2",
		applies: func(c CommentContext, _ content.Balance) bool {
			return c.Rating == 2
		},
		choose: func(_ CommentContext, r Roller, _ content.Balance) Sentiment {
			roll := r.Float64()
			switch {
			case roll < 0.7:
				return SentimentSarcastic
			case roll < 0.85:
				return SentimentNeutral
			default:
				return SentimentNegative
			}
		},
	},
	{
		name: "rating-3",
		applies: func(c CommentContext, _ content.Balance) bool {
			return c.Rating == 3
		},
		choose: func(c CommentContext, r Roller, _ content.Balance) Sentiment {
			roll := r.Float64()
			if c.Position == 0 {
				switch {
				case roll < 0.45:
					return SentimentNegative
				case roll < 0.8:
					return SentimentSarcastic
				default:
					return SentimentNeutral
				}
			}
			switch {
			case roll < 0.5:
				return SentimentPositive
			case roll < 0.85:
				return SentimentNeutral
			default:
				return SentimentNegative
			}
		},
	},
	{
		name: "rating-4-5",
		applies: func(c CommentContext, _ content.Balance) bool {
			return c.Rating >= 4
		},
		choose: func(c CommentContext, r Roller, _ content.Balance) Sentiment {
			if c.commenter() == CommenterCasual && chance(r, 0.15) {
				return SentimentNeutral
			}
			return SentimentPositive
		},
	},
	{
		name:    "unrated",
		applies: func(CommentContext, content.Balance) bool { return true },
		choose: func(c CommentContext, r Roller, b content.Balance) Sentiment {
			roll := r.Float64()
			if c.Controversy >= b.HighControversy && roll < 0.3 {
				return SentimentSarcastic
			}
			if c.commenter() == CommenterSupporter || c.commenter() == CommenterFan || roll < 0.5 {
				return SentimentPositive
			}
			return SentimentNeutral
		},
	},
}

// ChooseSentiment evaluates the rule table top to bottom and returns the pool
// chosen by the first matching rule together with the rule's name.
func ChooseSentiment(c CommentContext, r Roller, b content.Balance) (Sentiment, string) {
	for _, rule := range sentimentRules {
		if rule.applies(c, b) {
			return rule.choose(c, r, b), rule.name
		}
	}
	return SentimentNeutral, ""
}

// ComposeComment picks a pooled comment for c, then applies either the payment
// replacement or the canon-accuracy complaint. A payment complaint stands alone
// and never replaces the rival's gloating.
func ComposeComment(c CommentContext, r Roller, t *content.Tables) (string, Sentiment) {
	b := t.Balance
	sentiment, _ := ChooseSentiment(c, r, b)
	text := poolLine(t.Pools, sentiment, r)

	who := c.commenter()
	exempt := who == CommenterSupporter || who == CommenterAnti || sentiment == SentimentGloating
	if c.Paid && c.Rating >= 1 && c.Rating <= 3 && !exempt && chance(r, b.PaymentComplaintChance) {
		return poolLine(t.Pools, SentimentPayment, r), SentimentPayment
	}
	if c.Rating > 0 && who != CommenterSupporter && c.Deokryeok < b.CanonComplaintThreshold && chance(r, b.CanonComplaintChance) {
		pool := t.Pools.CanonMild
		if c.Deokryeok < b.CanonComplaintHarshBelow {
			pool = t.Pools.CanonHarsh
		}
		if frag, ok := pick(r, pool); ok {
			text = strings.TrimSpace(text + " " + frag)
		}
	}
	return text, sentiment
}

func poolLine(p content.Pools, s Sentiment, r Roller) string {
	var pool []string
	switch s {
	case SentimentPositive:
		pool = p.Positive
	case SentimentNeutral:
		pool = p.Neutral
	case SentimentNegative:
		pool = p.Negative
	case SentimentHostile:
		pool = p.Hostile
	case SentimentSarcastic:
		pool = p.Sarcastic
	case SentimentPayment:
		pool = p.Payment
	case SentimentBackhand:
		pool = p.Backhanded
	case SentimentGloating:
		return p.Gloating
	}
	line, _ := pick(r, pool)
	return line
}
