package storage

import (
	"context"
	"time"

	"github.com/louisbranch/morphsheet/internal/character"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
)

// Snapshot is one stored character: the whole record serialized as an opaque
// payload plus the columns list views need.
type Snapshot struct {
	ID        string
	Name      string
	Level     int
	Data      []byte
	UpdatedAt time.Time
}

// Store saves and loads snapshots.
type Store interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	LoadSnapshot(ctx context.Context, id string) (Snapshot, error)
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

// SnapshotOf serializes a character into its stored form.
func SnapshotOf(c *character.Character) (Snapshot, error) {
	data, err := character.Encode(c)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ID:        c.ID,
		Name:      c.Name,
		Level:     c.Level,
		Data:      data,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

// LoadCharacterOrDefault loads and decodes a stored character. A missing
// snapshot returns def. Stored data that exists but cannot be read or
// decoded also returns def, with the second result true so the caller can
// tell the user their previous draft was unreadable.
func LoadCharacterOrDefault(ctx context.Context, store Store, id string, def *character.Character) (*character.Character, bool) {
	snap, err := store.LoadSnapshot(ctx, id)
	if err != nil {
		return def, !apperrors.Is(err, apperrors.CodeSnapshotNotFound)
	}
	c, err := character.Decode(snap.Data)
	if err != nil {
		return def, true
	}
	return c, false
}
