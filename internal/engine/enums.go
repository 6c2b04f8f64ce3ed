package engine

// String backed enums for save-file interoperability.

type EventTier string
type CommenterType string
type Sentiment string
type PostKind string
type DayOutcome string
type DayBand string
type FailureKind string
type GenerationCategory string

const (
	TierOnline     EventTier = "online"
	TierMeetup     EventTier = "meetup"
	TierConvention EventTier = "convention"
)

var AllEventTiers = []EventTier{TierOnline, TierMeetup, TierConvention}

const (
	CommenterSupporter CommenterType = "supporter"
	CommenterAnti      CommenterType = "anti"
	CommenterRival     CommenterType = "rival"
	CommenterFan       CommenterType = "fan"
	CommenterCasual    CommenterType = "casual"
)

var AllCommenterTypes = []CommenterType{CommenterSupporter, CommenterAnti, CommenterRival, CommenterFan, CommenterCasual}

const (
	SentimentPositive  Sentiment = "positive"
	SentimentNeutral   Sentiment = "neutral"
	SentimentNegative  Sentiment = "negative"
	SentimentHostile   Sentiment = "hostile"
	SentimentSarcastic Sentiment = "sarcastic"
	SentimentPayment   Sentiment = "payment"
	SentimentBackhand  Sentiment = "backhanded"
	SentimentGloating  Sentiment = "gloating"
)

var AllSentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative, SentimentHostile, SentimentSarcastic, SentimentPayment, SentimentBackhand, SentimentGloating}

const (
	PostOwnFic  PostKind = "own_fic"
	PostNPC     PostKind = "npc"
	PostMusing  PostKind = "musing"
	PostSummary PostKind = "event_summary"
)

var AllPostKinds = []PostKind{PostOwnFic, PostNPC, PostMusing, PostSummary}

const (
	DaySkipped     DayOutcome = "skipped"
	DayNormal      DayOutcome = "normal"
	DayZeroStamina DayOutcome = "zero_stamina"
	DaySubstituted DayOutcome = "substituted"
)

var AllDayOutcomes = []DayOutcome{DaySkipped, DayNormal, DayZeroStamina, DaySubstituted}

const (
	BandBad    DayBand = "bad"
	BandNormal DayBand = "normal"
	BandGreat  DayBand = "great"
)

const (
	FailValidation  FailureKind = "validation"
	FailResource    FailureKind = "resource"
	FailExternal    FailureKind = "external"
	FailPersistence FailureKind = "persistence"
)

const (
	GenConfig  GenerationCategory = "config"
	GenSafety  GenerationCategory = "safety"
	GenNetwork GenerationCategory = "network"
	GenParse   GenerationCategory = "parse"
)

func contains[T ~string](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (t EventTier) Validate() bool     { return contains(AllEventTiers, t) }
func (c CommenterType) Validate() bool { return contains(AllCommenterTypes, c) }
func (s Sentiment) Validate() bool     { return contains(AllSentiments, s) }
func (k PostKind) Validate() bool      { return contains(AllPostKinds, k) }
func (o DayOutcome) Validate() bool    { return contains(AllDayOutcomes, o) }
