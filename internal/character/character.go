// Package character defines the mutable draft record a player builds through
// the creation wizard, the numbered step inputs that mutate it, and the JSON
// snapshot codec used for persistence.
package character

import (
	"time"

	"github.com/louisbranch/morphsheet/internal/essence20"
	"github.com/louisbranch/morphsheet/internal/platform/id"
)

// InfluencePick is one selected influence with its per-influence choices.
// The first pick in a character's list never carries a hang-up.
type InfluencePick struct {
	Key              string `json:"key"`
	HangUpKey        string `json:"hang_up_key,omitempty"`
	BondIndices      []int  `json:"bond_indices,omitempty"`
	SpecialtyIndices []int  `json:"specialty_indices,omitempty"`
}

// LevelChoice records what a character took at one level-up. Milestone
// levels may carry both a perk and skill ranks; other levels carry one or
// the other.
type LevelChoice struct {
	PerkKey    string         `json:"perk_key,omitempty"`
	SkillRanks map[string]int `json:"skill_ranks,omitempty"`
}

// Zord is the companion mech entity.
type Zord struct {
	Name            string         `json:"name,omitempty"`
	FrameKey        string         `json:"frame_key,omitempty"`
	SpectrumFeature string         `json:"spectrum_feature,omitempty"`
	Features        []string       `json:"features,omitempty"`
	Description     string         `json:"description,omitempty"`
	Growth          map[int]string `json:"growth,omitempty"`
}

// Pools are the transient play-time resources. They stay nil until play
// begins; the creation tool stores them but never simulates them.
type Pools struct {
	Health     *int `json:"health,omitempty"`
	Power      *int `json:"power,omitempty"`
	IdeaPoints *int `json:"idea_points,omitempty"`
	Quips      *int `json:"quips,omitempty"`
	ZordHealth *int `json:"zord_health,omitempty"`
}

// Character is the mutable root entity for one in-progress or completed
// character. Selection fields stay zero until their wizard step sets them.
// Free-text fields hold raw input; escaping happens at markup boundaries.
type Character struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Pronouns string `json:"pronouns,omitempty"`

	Concept     string `json:"concept,omitempty"`
	Description string `json:"description,omitempty"`

	Level int `json:"level"`

	OriginKey           string            `json:"origin_key,omitempty"`
	OriginEssenceChoice essence20.Essence `json:"origin_essence_choice,omitempty"`
	RoleKey             string            `json:"role_key,omitempty"`
	RoleSkillChoice     string            `json:"role_skill_choice,omitempty"`

	Influences []InfluencePick `json:"influences,omitempty"`

	Essences        map[essence20.Essence]int `json:"essences"`
	SkillRanks      map[string]int            `json:"skill_ranks,omitempty"`
	Specializations map[string]string         `json:"specializations,omitempty"`

	Perks      []string            `json:"perks,omitempty"`
	GridPowers []string            `json:"grid_powers,omitempty"`
	Equipment  map[string]string   `json:"equipment,omitempty"`
	Choices    map[int]LevelChoice `json:"level_choices,omitempty"`

	Zord  Zord  `json:"zord"`
	Pools Pools `json:"pools"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultEssenceScore is the starting allocation for every essence.
const DefaultEssenceScore = 1

// New returns the default character shape with a fresh identifier.
func New() (*Character, error) {
	charID, err := id.NewID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Character{
		ID:    charID,
		Level: essence20.MinLevel,
		Essences: map[essence20.Essence]int{
			essence20.Strength: DefaultEssenceScore,
			essence20.Speed:    DefaultEssenceScore,
			essence20.Smarts:   DefaultEssenceScore,
			essence20.Social:   DefaultEssenceScore,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Touch updates the modification timestamp.
func (c *Character) Touch() {
	c.UpdatedAt = time.Now().UTC()
}

// HasPerk reports whether the character owns the general perk key, either
// picked directly or granted by a level-up choice.
func (c *Character) HasPerk(key string) bool {
	for _, p := range c.Perks {
		if p == key {
			return true
		}
	}
	for _, choice := range c.Choices {
		if choice.PerkKey == key {
			return true
		}
	}
	return false
}
