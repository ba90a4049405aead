// Package derive projects a character and the rule tables into the numbers a
// filled sheet shows. Every function is a pure computation: missing or
// unknown rule entries contribute nothing, and nothing here mutates the
// character or performs I/O.
package derive

import (
	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
)

// FinalEssences sums the raw allocation, the origin's essence-bonus choice,
// and the role's signed adjustments.
func FinalEssences(c *character.Character, rb *rulebook.Rulebook) map[essence20.Essence]int {
	out := make(map[essence20.Essence]int, len(essence20.Essences()))
	for _, essence := range essence20.Essences() {
		out[essence] = c.Essences[essence]
	}
	if c.OriginEssenceChoice != "" {
		if _, ok := rb.Origin(c.OriginKey); ok {
			out[c.OriginEssenceChoice]++
		}
	}
	if role, ok := rb.Role(c.RoleKey); ok {
		for essence, delta := range role.EssenceAdjustments {
			out[essence] += delta
		}
	}
	return out
}

// DefenseValues maps each defense to 10 plus its paired final essence.
func DefenseValues(c *character.Character, rb *rulebook.Rulebook) map[essence20.Defense]int {
	final := FinalEssences(c, rb)
	out := make(map[essence20.Defense]int, len(final))
	for essence, score := range final {
		if defense, ok := essence20.DefenseFor(essence); ok {
			out[defense] = essence20.BaseDefense + score
		}
	}
	return out
}

// TotalSkillRanks sums every source of ranks for one skill: the raw
// allocation, the role's starting ranks, the role skill choice, and level-up
// grants at or below the current level.
func TotalSkillRanks(c *character.Character, rb *rulebook.Rulebook, skill string) int {
	total := c.SkillRanks[skill]
	if role, ok := rb.Role(c.RoleKey); ok {
		total += role.StartingSkills[skill]
		if c.RoleSkillChoice == skill {
			total++
		}
	}
	for level, choice := range c.Choices {
		if level > c.Level {
			continue
		}
		total += choice.SkillRanks[skill]
	}
	return total
}

// PowerCapacity computes the grid-power capacity at the character's level
// using the role's growth class. Characters without a role grow slowly.
func PowerCapacity(c *character.Character, rb *rulebook.Rulebook) int {
	growth := essence20.GrowthSlow
	if role, ok := rb.Role(c.RoleKey); ok {
		growth = role.PowerGrowth
	}
	return essence20.PowerCapacity(c.Level, growth)
}

// MaxHealth is the origin's starting health plus one point per Conditioning
// rank from any source.
func MaxHealth(c *character.Character, rb *rulebook.Rulebook) int {
	health := 0
	if origin, ok := rb.Origin(c.OriginKey); ok {
		health = origin.StartingHealth
	}
	return health + TotalSkillRanks(c, rb, essence20.SkillConditioning)
}

// ArmorTraining is the armor proficiency a character has earned.
type ArmorTraining struct {
	Allowed  []essence20.ArmorTier
	MaxTier  essence20.ArmorTier
	MaxBonus int
}

// Armor starts from the role's armor training row and upgrades it through
// any owned perk that grants a tier. Upgrades are one-way: a perk granting a
// lower tier than the character already has changes nothing.
func Armor(c *character.Character, rb *rulebook.Rulebook) ArmorTraining {
	tier := essence20.ArmorNone
	bonus := 0
	if role, ok := rb.Role(c.RoleKey); ok {
		tier = role.ArmorTier
		bonus = role.ArmorBonus
	}

	for _, key := range ownedPerks(c) {
		perk, ok := rb.Perk(key)
		if !ok || perk.GrantsArmorTier == "" {
			continue
		}
		if essence20.ArmorTierRank(perk.GrantsArmorTier) > essence20.ArmorTierRank(tier) {
			tier = perk.GrantsArmorTier
			bonus = essence20.ArmorTierBonus(tier)
		}
	}

	return ArmorTraining{
		Allowed:  essence20.ArmorTiersThrough(tier),
		MaxTier:  tier,
		MaxBonus: bonus,
	}
}

func ownedPerks(c *character.Character) []string {
	keys := make([]string, 0, len(c.Perks)+len(c.Choices))
	keys = append(keys, c.Perks...)
	for level, choice := range c.Choices {
		if level > c.Level || choice.PerkKey == "" {
			continue
		}
		keys = append(keys, choice.PerkKey)
	}
	return keys
}
