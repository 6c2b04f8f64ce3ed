package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaanHessen/fanlife/internal/content"
	"github.com/DaanHessen/fanlife/internal/engine"
)

func playedWorld(t *testing.T) *engine.World {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	g, err := engine.NewGame("store-seed", content.Default(), engine.WithClock(clock))
	require.NoError(t, err)
	_, _, err = g.SaveFandomSet(engine.FandomSetInput{WorkTitle: "Skyfall", FavoriteCharacter: "Ren", Pairing: "Ren/Kai"})
	require.NoError(t, err)
	g.SuggestSchedule()
	return g.World()
}

func TestDecodeIsIdempotent(t *testing.T) {
	tables := content.Default()
	raw, err := Encode(playedWorld(t))
	require.NoError(t, err)

	first, err := Decode(raw, tables)
	require.NoError(t, err)
	again, err := Encode(first)
	require.NoError(t, err)
	second, err := Decode(again, tables)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "store-seed", second.SeedText)
	assert.Len(t, second.FandomSets, 1)
}

func TestDecodeIsIdempotentWithNullBaseFandom(t *testing.T) {
	tables := content.Default()
	payload := []byte(`{"fandom_sets":{
		"fandom-b":{"work_title":"B","favorite_character":"x","pairing":"A/B","base_work_id":"fandom-a"},
		"fandom-a":null}}`)

	first, err := Decode(payload, tables)
	require.NoError(t, err)
	again, err := Encode(first)
	require.NoError(t, err)
	second, err := Decode(again, tables)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Contains(t, second.FandomSets, engine.ID("fandom-b"))
	assert.Empty(t, second.FandomSets["fandom-b"].BaseWorkID)
}

func TestDecodeFillsOldShape(t *testing.T) {
	tables := content.Default()
	w, err := Decode([]byte(`{"player":{"money":42,"current_week":0}}`), tables)
	require.NoError(t, err)

	assert.Equal(t, "legacy-save", w.SeedText)
	assert.Equal(t, 42, w.Player.Money)
	assert.Equal(t, 1, w.Player.CurrentWeek)
	assert.Equal(t, tables.Balance.StartStamina, w.Player.Stamina)
	assert.Equal(t, tables.StarterGenres(), w.Player.UnlockedGenres)
	assert.NotNil(t, w.FandomSets)
	assert.NotNil(t, w.Projects)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{not json"), content.Default())
	assert.Error(t, err)
	_, err = Decode(nil, content.Default())
	assert.Error(t, err)
}

func TestPayloadVersion(t *testing.T) {
	assert.Equal(t, 7, payloadVersion([]byte(`{"version":7}`)))
	assert.Equal(t, 0, payloadVersion([]byte(`nope`)))
}

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	payload := []byte("one")
	require.NoError(t, m.Put(ctx, "a", payload))
	payload[0] = 'X'
	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))

	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, m.Put(cancelled, "a", payload))
}

func TestSavesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSaves(NewMemoryBackend(), content.Default(), "", nil)
	assert.Equal(t, "default", s.Key())

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	w := playedWorld(t)
	require.NoError(t, s.Save(ctx, w))
	loaded, found, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, w.SeedText, loaded.SeedText)
	assert.Equal(t, w.Schedule, loaded.Schedule)

	require.NoError(t, s.Clear(ctx))
	_, found, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

type brokenBackend struct{ MemoryBackend }

func (*brokenBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("conn reset")
}
func (*brokenBackend) Put(context.Context, string, []byte) error { return errors.New("conn reset") }

func TestSavesFailuresArePersistenceKind(t *testing.T) {
	ctx := context.Background()
	s := NewSaves(&brokenBackend{}, content.Default(), "k", nil)

	err := s.Save(ctx, playedWorld(t))
	assert.True(t, engine.IsKind(err, engine.FailPersistence))
	raw, err := Encode(playedWorld(t))
	require.NoError(t, err)
	assert.True(t, engine.IsKind(s.SaveEncoded(ctx, raw), engine.FailPersistence))
	_, _, err = s.Load(ctx)
	assert.True(t, engine.IsKind(err, engine.FailPersistence))

	mem := NewMemoryBackend()
	require.NoError(t, mem.Put(ctx, "k", []byte("garbage")))
	_, _, err = NewSaves(mem, content.Default(), "k", nil).Load(ctx)
	assert.True(t, engine.IsKind(err, engine.FailPersistence))
}

func TestNewMigratorNeedsDSN(t *testing.T) {
	_, err := NewMigrator("")
	assert.Error(t, err)
}
