package engine

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ID is an opaque entity identifier of the form "<kind>-<uuid>". Random ids
// cannot collide with ids minted before a save was reloaded.
type ID string

// Kind names an entity arena.
type Kind string

const (
	KindFandom  Kind = "fandom"
	KindProject Kind = "project"
	KindFic     Kind = "fic"
	KindEvent   Kind = "event"
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

type idGenerator struct {
	kind Kind
	next func() uuid.UUID
}

// One generator per entity kind.
var (
	fandomIDs  = idGenerator{kind: KindFandom, next: uuid.New}
	projectIDs = idGenerator{kind: KindProject, next: uuid.New}
	ficIDs     = idGenerator{kind: KindFic, next: uuid.New}
	eventIDs   = idGenerator{kind: KindEvent, next: uuid.New}
	postIDs    = idGenerator{kind: KindPost, next: uuid.New}
	commentIDs = idGenerator{kind: KindComment, next: uuid.New}
)

func (g idGenerator) New() ID { return ID(string(g.kind) + "-" + g.next().String()) }

// Kind returns the arena prefix of id, or "" if it has none.
func (id ID) Kind() Kind {
	k, _, ok := strings.Cut(string(id), "-")
	if !ok {
		return ""
	}
	return Kind(k)
}

func sortedIDs[V any](m map[ID]V) []ID {
	out := make([]ID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
