package character

import (
	"encoding/json"

	"github.com/louisbranch/morphsheet/internal/essence20"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
)

// Encode serializes the character snapshot for persistence.
func Encode(c *Character) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSnapshotEncodeFailed, "encode character snapshot", err)
	}
	return data, nil
}

// Decode deserializes a stored snapshot. Free-text fields are re-capped on
// the way in so an over-long or hand-edited stored value degrades instead of
// poisoning later validation.
func Decode(data []byte) (*Character, error) {
	var c Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSnapshotDecodeFailed, "decode character snapshot", err)
	}

	c.Name = CapText(c.Name, essence20.MaxNameLength)
	c.Pronouns = CapText(c.Pronouns, essence20.MaxNameLength)
	c.Concept = CapText(c.Concept, essence20.MaxTextLength)
	c.Description = CapText(c.Description, essence20.MaxTextLength)
	for skill, text := range c.Specializations {
		c.Specializations[skill] = CapText(text, essence20.MaxNameLength)
	}
	c.Zord.Name = CapText(c.Zord.Name, essence20.MaxNameLength)
	c.Zord.Description = CapText(c.Zord.Description, essence20.MaxTextLength)

	if c.Level < essence20.MinLevel {
		c.Level = essence20.MinLevel
	}
	if c.Level > essence20.MaxLevel {
		c.Level = essence20.MaxLevel
	}
	if c.Essences == nil {
		c.Essences = make(map[essence20.Essence]int)
	}

	return &c, nil
}
