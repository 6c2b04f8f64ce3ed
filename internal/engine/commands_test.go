package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/fanlife/internal/content"
)

func completeProject(t *testing.T, g *Game) *Project {
	t.Helper()
	p := addProject(t, g, addFandom(t, g, "Moonlit", "A/B"))
	p.Progress = p.TargetProgress
	p.Complete = true
	return p
}

func TestFinalizeFailureLeavesProjectRetryable(t *testing.T) {
	writer := &fakeWriter{draftErr: &GenerationError{Category: GenSafety, Err: errors.New("blocked")}}
	g := newTestGame(t, WithGhostwriter(writer))
	p := completeProject(t, g)
	money := g.w.Player.Money

	err := g.FinalizeProject(context.Background(), p.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, FailExternal))
	assert.Equal(t, "safety: blocked", err.Error())
	assert.False(t, p.Finalized)
	assert.Empty(t, p.Body)
	assert.Equal(t, p.TargetProgress, p.Progress)
	assert.Equal(t, money, g.w.Player.Money)

	writer.draftErr = nil
	writer.body = "  The finished story.  "
	require.NoError(t, g.FinalizeProject(context.Background(), p.ID))
	assert.True(t, p.Finalized)
	assert.Equal(t, "The finished story.", p.Body)

	err = g.FinalizeProject(context.Background(), p.ID)
	assert.True(t, IsKind(err, FailValidation), "a project is finalized once")
	assert.Len(t, writer.drafts, 2)
}

func TestFinalizeRequiresCompleteDraftAndWriter(t *testing.T) {
	g := newTestGame(t)
	p := addProject(t, g, addFandom(t, g, "Moonlit", "A/B"))
	assert.True(t, IsKind(g.FinalizeProject(context.Background(), p.ID), FailValidation))

	p.Progress, p.Complete = p.TargetProgress, true
	err := g.FinalizeProject(context.Background(), p.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, FailExternal))
	assert.Contains(t, err.Error(), "config:")
}

func TestFinalizeSendsSequelContext(t *testing.T) {
	writer := &fakeWriter{body: "sequel"}
	g := newTestGame(t, WithGhostwriter(writer))
	fandom := addFandom(t, g, "Moonlit", "A/B")
	prior := addFic(g, fandom, 4)
	g.w.Player.SequelUnlocked = true
	id, _, err := g.PlanProject(ProjectPlan{
		FandomID: fandom, Title: "Part Two", Genres: []string{"fluff"}, Scenario: "After.", SequelOf: prior.ID,
	})
	require.NoError(t, err)
	p := g.w.Projects[id]
	p.Progress, p.Complete = p.TargetProgress, true

	require.NoError(t, g.FinalizeProject(context.Background(), id))
	req := writer.drafts[0]
	assert.Equal(t, "Moonlit", req.WorkTitle)
	assert.Equal(t, "A/B", req.Pairing)
	assert.Equal(t, "novice", req.SkillTier)
	require.NotNil(t, req.Sequel)
	assert.Equal(t, prior.Title, req.Sequel.Title)
}

func TestPublishProjectRetiresProject(t *testing.T) {
	g := newTestGame(t, WithRoller(floats(0.5)))
	p := completeProject(t, g)
	p.Finalized, p.Body = true, "Story text."
	require.NoError(t, g.SetDay(2, ScheduleSlot{Action: content.ActionWrite, ProjectID: p.ID}))

	_, err := g.PublishProject(context.Background(), p.ID, PublishOptions{Paid: true})
	require.Error(t, err, "paid needs a price")

	fic, err := g.PublishProject(context.Background(), p.ID, PublishOptions{Paid: true, Price: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, fic.Rating)
	assert.Equal(t, "Story text.", fic.Body)
	assert.Equal(t, testClock(), fic.PublishedAt)
	assert.NotContains(t, g.w.Projects, p.ID)
	assert.Contains(t, g.w.Fics, fic.ID)
	assert.Equal(t, ScheduleSlot{}, g.w.Schedule.Days[1])
	assert.Equal(t, 12, g.w.Player.Popularity)

	post := g.w.Posts[len(g.w.Posts)-1]
	assert.Equal(t, PostOwnFic, post.Kind)
	assert.Equal(t, fic.ID, post.FicID)
	require.NotEmpty(t, post.Comments)
	assert.Equal(t, SentimentPositive, post.Comments[0].Sentiment)
}

func TestPublishRequiresFinalizedManuscript(t *testing.T) {
	g := newTestGame(t)
	p := completeProject(t, g)
	_, err := g.PublishProject(context.Background(), p.ID, PublishOptions{})
	assert.True(t, IsKind(err, FailValidation))
	assert.Empty(t, g.w.Fics)
}

func TestPostCustomContentCooldown(t *testing.T) {
	writer := &fakeWriter{reactErr: &GenerationError{Category: GenNetwork, Err: errors.New("timeout")}}
	g := newTestGame(t, WithGhostwriter(writer))

	post, err := g.PostCustomContent(context.Background(), "Hello", "First post!")
	require.NoError(t, err)
	require.NotEmpty(t, post.Comments, "pooled reactions survive a failed text call")
	for _, c := range post.Comments {
		assert.False(t, c.Generated)
	}

	_, err = g.PostCustomContent(context.Background(), "Again", "Second post")
	require.Error(t, err)
	assert.True(t, IsKind(err, FailValidation))
	assert.Len(t, g.w.Posts, 1)

	g.w.Player.CurrentWeek++
	_, err = g.PostCustomContent(context.Background(), "Again", "Second post")
	require.NoError(t, err)
	assert.Len(t, g.w.Posts, 2)

	_, err = g.PostCustomContent(context.Background(), "", "body")
	assert.Error(t, err)
}

func TestDeletePostOwnOnly(t *testing.T) {
	g := newTestGame(t)
	post, err := g.PostCustomContent(context.Background(), "Hello", "World")
	require.NoError(t, err)
	npc := &SocialPost{ID: postIDs.New(), Author: "star_writer_yu", Kind: PostNPC}
	g.w.Posts = append(g.w.Posts, npc)

	assert.Error(t, g.DeletePost(npc.ID))
	assert.Error(t, g.DeletePost("post-missing"))
	require.NoError(t, g.DeletePost(post.ID))
	require.Len(t, g.w.Posts, 1)
	assert.Equal(t, npc.ID, g.w.Posts[0].ID)
}

func TestDeleteFandomSetCascades(t *testing.T) {
	g := newTestGame(t)
	doomed := addFandom(t, g, "Moonlit", "A/B")
	kept, _, err := g.SaveFandomSet(FandomSetInput{WorkTitle: "Starfall", FavoriteCharacter: "C", Pairing: "C/D", BaseWorkID: doomed})
	require.NoError(t, err)
	p := addProject(t, g, doomed)
	fic := addFic(g, doomed, 4)
	require.NoError(t, g.SetDay(1, ScheduleSlot{Action: content.ActionWrite, ProjectID: p.ID}))
	openEvent(g, doomed, TierOnline, 30)
	require.NoError(t, g.RegisterForEvent())

	require.Error(t, g.DeleteFandomSet(doomed, false))
	assert.Contains(t, g.w.FandomSets, doomed)

	require.NoError(t, g.DeleteFandomSet(doomed, true))
	assert.NotContains(t, g.w.FandomSets, doomed)
	assert.Empty(t, g.w.Projects)
	assert.Equal(t, ScheduleSlot{}, g.w.Schedule.Days[0])
	assert.Nil(t, g.w.CurrentEvent)
	assert.Empty(t, g.w.RegisteredEventID)
	assert.Contains(t, g.w.Fics, fic.ID, "published history is kept")
	assert.Empty(t, g.w.FandomSets[kept].BaseWorkID)
	assert.True(t, g.w.FandomSets[kept].IsPrimary)
}

func TestSuggestScheduleKeepsChosenSlots(t *testing.T) {
	g := newTestGame(t)
	addProject(t, g, addFandom(t, g, "Moonlit", "A/B"))
	require.NoError(t, g.SetDay(3, ScheduleSlot{Action: "exercise"}))

	s := g.SuggestSchedule()
	assert.Equal(t, "exercise", s.Slot(3).Action)
	for day := 1; day <= DaysPerWeek; day++ {
		assert.NotEmpty(t, s.Slot(day).Action, "day %d", day)
	}
	assert.True(t, g.Snapshot().ScheduleValid)

	g.ClearSchedule()
	snap := g.Snapshot()
	assert.False(t, snap.ScheduleValid)
	assert.Len(t, snap.Problems, DaysPerWeek)
}

func TestSetDayValidation(t *testing.T) {
	g := newTestGame(t)
	assert.Error(t, g.SetDay(0, ScheduleSlot{Action: content.ActionRest}))
	assert.Error(t, g.SetDay(1, ScheduleSlot{Action: "teleport"}))
	assert.Error(t, g.SetDay(1, ScheduleSlot{Action: content.ActionRest, ProjectID: "project-x"}))
	assert.Error(t, g.SetDay(1, ScheduleSlot{Action: content.ActionWrite, ProjectID: "project-x"}))
	assert.Equal(t, WeeklySchedule{}, g.w.Schedule)
}

func TestResetNeedsConfirmation(t *testing.T) {
	g := newTestGame(t)
	addFandom(t, g, "Moonlit", "A/B")
	require.Error(t, g.Reset(false, "again"))
	assert.Len(t, g.w.FandomSets, 1)

	require.Error(t, g.Reset(true, ""))
	require.NoError(t, g.Reset(true, "again"))
	assert.Empty(t, g.World().FandomSets)
	assert.Equal(t, "again", g.Snapshot().Seed)
}

func TestLoadGameNormalizes(t *testing.T) {
	w := &World{}
	g, err := LoadGame(w, nil)
	require.NoError(t, err)
	assert.Equal(t, legacySeed, g.World().SeedText)
	assert.NotNil(t, g.World().FandomSets)

	_, err = LoadGame(nil, nil)
	assert.Error(t, err)
}
