package store

import (
	"context"
	errs "errors"

	"go.uber.org/zap"

	"github.com/DaanHessen/fanlife/internal/content"
	"github.com/DaanHessen/fanlife/internal/engine"
)

// Saves reads and writes whole worlds under one key. Every error it returns
// is a persistence Failure; callers keep playing in memory.
type Saves struct {
	backend Backend
	tables  *content.Tables
	key     string
	log     *zap.Logger
}

func NewSaves(b Backend, t *content.Tables, key string, log *zap.Logger) *Saves {
	if log == nil {
		log = zap.NewNop()
	}
	if key == "" {
		key = "default"
	}
	return &Saves{backend: b, tables: t, key: key, log: log}
}

func (s *Saves) Key() string { return s.key }

// Save encodes and writes the world. It reads w, so it must not race with
// anything mutating it.
func (s *Saves) Save(ctx context.Context, w *engine.World) error {
	raw, err := Encode(w)
	if err != nil {
		return engine.PersistenceFailure("save", err)
	}
	return s.SaveEncoded(ctx, raw)
}

// SaveEncoded writes a payload produced by Encode.
func (s *Saves) SaveEncoded(ctx context.Context, raw []byte) error {
	if err := s.backend.Put(ctx, s.key, raw); err != nil {
		s.log.Warn("save failed", zap.String("key", s.key), zap.Error(err))
		return engine.PersistenceFailure("save", err)
	}
	s.log.Debug("saved", zap.String("key", s.key), zap.Int("bytes", len(raw)))
	return nil
}

// Load returns the stored world. found is false when no save exists.
func (s *Saves) Load(ctx context.Context) (w *engine.World, found bool, err error) {
	raw, err := s.backend.Get(ctx, s.key)
	if errs.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		s.log.Warn("load failed", zap.String("key", s.key), zap.Error(err))
		return nil, false, engine.PersistenceFailure("load", err)
	}
	w, err = Decode(raw, s.tables)
	if err != nil {
		s.log.Warn("corrupt save", zap.String("key", s.key), zap.Error(err))
		return nil, false, engine.PersistenceFailure("load", err)
	}
	return w, true, nil
}

// Clear removes the stored world.
func (s *Saves) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return engine.PersistenceFailure("delete", err)
	}
	return nil
}
