package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/fanlife/internal/content"
)

var testClock = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func newTestGame(t *testing.T, opts ...Option) *Game {
	t.Helper()
	opts = append([]Option{WithClock(testClock)}, opts...)
	g, err := NewGame("test-seed", content.Default(), opts...)
	require.NoError(t, err)
	return g
}

func addFandom(t *testing.T, g *Game, work, pairing string) ID {
	t.Helper()
	id, _, err := g.SaveFandomSet(FandomSetInput{
		WorkTitle:         work,
		FavoriteCharacter: "Hero",
		Pairing:           pairing,
	})
	require.NoError(t, err)
	return id
}

func addProject(t *testing.T, g *Game, fandom ID) *Project {
	t.Helper()
	id, _, err := g.PlanProject(ProjectPlan{
		FandomID: fandom,
		Title:    "Tea for Two",
		Genres:   []string{"romance"},
		Scenario: "They run a tea shop together.",
	})
	require.NoError(t, err)
	return g.w.Projects[id]
}

func addFic(g *Game, fandom ID, rating int) *PublishedFic {
	fic := &PublishedFic{
		ID:       ficIDs.New(),
		FandomID: fandom,
		Title:    "Finished Work",
		Body:     "A short story body.",
		Rating:   rating,
		Price:    5,
	}
	g.w.Fics[fic.ID] = fic
	return fic
}

// withAction returns the default tables with one action replaced.
func withAction(t *testing.T, id string, edit func(*content.Action)) *content.Tables {
	t.Helper()
	tables := content.Default()
	for i := range tables.Actions {
		if tables.Actions[i].ID == id {
			edit(&tables.Actions[i])
			return tables
		}
	}
	t.Fatalf("no action %q", id)
	return nil
}

// fakeWriter is a scripted Ghostwriter.
type fakeWriter struct {
	body      string
	draftErr  error
	comments  []string
	reactErr  error
	drafts    []DraftRequest
	reactions int
}

func (f *fakeWriter) DraftFic(_ context.Context, req DraftRequest) (string, error) {
	f.drafts = append(f.drafts, req)
	if f.draftErr != nil {
		return "", f.draftErr
	}
	return f.body, nil
}

func (f *fakeWriter) ReactComments(context.Context, ReactionRequest) ([]string, error) {
	f.reactions++
	if f.reactErr != nil {
		return nil, f.reactErr
	}
	return f.comments, nil
}
