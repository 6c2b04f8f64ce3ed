package store

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/DaanHessen/fanlife/internal/content"
	"github.com/DaanHessen/fanlife/internal/engine"
)

// Encode serializes a world for storage.
func Encode(w *engine.World) ([]byte, error) {
	if w == nil {
		return nil, errors.New("nil world")
	}
	raw, err := json.Marshal(w)
	return raw, wrap(err, "encode world")
}

// Decode reads a stored world. Fields missing from older saves keep the
// values a fresh world starts with, and the result is normalized.
func Decode(payload []byte, t *content.Tables) (*engine.World, error) {
	if len(payload) == 0 {
		return nil, errors.New("empty save payload")
	}
	w := engine.NewWorld("", t)
	if err := json.Unmarshal(payload, w); err != nil {
		return nil, wrap(err, "decode world")
	}
	w.Normalize(t)
	return w, nil
}

// payloadVersion reads the version field without decoding the whole world.
func payloadVersion(payload []byte) int {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return 0
	}
	return head.Version
}
