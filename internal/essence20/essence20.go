// Package essence20 holds the system constants and primitive calculators for
// the Essence20-style ruleset: essences, defenses, the skill-die progression,
// power capacity growth, armor tiers, and level bounds.
package essence20

import (
	"strconv"
	"strings"
)

// Essence is one of the four core ability scores.
type Essence string

// The four essences.
const (
	Strength Essence = "strength"
	Speed    Essence = "speed"
	Smarts   Essence = "smarts"
	Social   Essence = "social"
)

// Defense is a derived defensive stat. Each essence feeds exactly one defense.
type Defense string

// The four defenses.
const (
	Toughness  Defense = "toughness"
	Evasion    Defense = "evasion"
	Willpower  Defense = "willpower"
	Cleverness Defense = "cleverness"
)

// Character shape bounds.
const (
	BaseDefense = 10

	MinLevel = 1
	MaxLevel = 20

	MinEssenceScore = 0
	MaxEssenceScore = 10

	MaxSkillRank = 6

	MaxInfluences = 3

	MaxNameLength = 50
	MaxTextLength = 500
)

// essenceOrder fixes display and iteration order.
var essenceOrder = []Essence{Strength, Speed, Smarts, Social}

// defenseByEssence is the fixed essence-to-defense mapping.
var defenseByEssence = map[Essence]Defense{
	Strength: Toughness,
	Speed:    Evasion,
	Smarts:   Willpower,
	Social:   Cleverness,
}

// Essences returns the four essences in display order.
func Essences() []Essence {
	out := make([]Essence, len(essenceOrder))
	copy(out, essenceOrder)
	return out
}

// DefenseFor returns the defense derived from the given essence.
func DefenseFor(essence Essence) (Defense, bool) {
	d, ok := defenseByEssence[essence]
	return d, ok
}

// DefenseValue computes a defense score from a final essence score.
func DefenseValue(essenceScore int) int {
	return BaseDefense + essenceScore
}

// ParseEssence resolves a case-insensitive essence name. Unknown names
// return false.
func ParseEssence(name string) (Essence, bool) {
	switch Essence(strings.ToLower(strings.TrimSpace(name))) {
	case Strength:
		return Strength, true
	case Speed:
		return Speed, true
	case Smarts:
		return Smarts, true
	case Social:
		return Social, true
	}
	return "", false
}

// skillDice is the rank-to-die progression. Rank 0 has no die. The mapping
// is explicit: rank N is always skillDice[N], and every rank from 1 up
// advances exactly one die size.
var skillDice = []string{"-", "d2", "d4", "d6", "d8", "d10", "d12"}

// NoDie is the die notation for an untrained skill.
const NoDie = "-"

// SkillDie returns the die notation for a rank count. Out-of-range ranks
// clamp to the untrained entry rather than erroring.
func SkillDie(ranks int) string {
	if ranks < 0 || ranks >= len(skillDice) {
		return skillDice[0]
	}
	return skillDice[ranks]
}

// DieSize returns the face count of a die notation such as "d8". The
// untrained marker and malformed notations return 0.
func DieSize(die string) int {
	if len(die) < 2 || (die[0] != 'd' && die[0] != 'D') {
		return 0
	}
	size, err := strconv.Atoi(die[1:])
	if err != nil || size < 0 {
		return 0
	}
	return size
}

// GrowthClass controls how a role's power capacity scales with level.
type GrowthClass string

// Growth classes.
const (
	GrowthSlow     GrowthClass = "slow"
	GrowthModerate GrowthClass = "moderate"
	GrowthFast     GrowthClass = "fast"
)

// BasePowerCapacity is the capacity every character has at level 1.
const BasePowerCapacity = 2

type growthRate struct {
	divisor int
	step    int
}

var growthRates = map[GrowthClass]growthRate{
	GrowthSlow:     {divisor: 5, step: 2},
	GrowthModerate: {divisor: 3, step: 1},
	GrowthFast:     {divisor: 4, step: 2},
}

// PowerCapacity computes the personal-power capacity at a level for a growth
// class. Unknown classes scale as slow; levels below the minimum count as
// the minimum.
func PowerCapacity(level int, class GrowthClass) int {
	if level < MinLevel {
		level = MinLevel
	}
	rate, ok := growthRates[class]
	if !ok {
		rate = growthRates[GrowthSlow]
	}
	return BasePowerCapacity + (level-1)/rate.divisor*rate.step
}

// ArmorTier is an armor weight class. Tiers are strictly ordered from
// ArmorNone up to ArmorUltraHeavy.
type ArmorTier string

// Armor tiers, lightest to heaviest.
const (
	ArmorNone       ArmorTier = "none"
	ArmorLight      ArmorTier = "light"
	ArmorMedium     ArmorTier = "medium"
	ArmorHeavy      ArmorTier = "heavy"
	ArmorUltraHeavy ArmorTier = "ultra-heavy"
)

var armorTierOrder = []ArmorTier{ArmorNone, ArmorLight, ArmorMedium, ArmorHeavy, ArmorUltraHeavy}

var armorTierBonus = map[ArmorTier]int{
	ArmorNone:       0,
	ArmorLight:      1,
	ArmorMedium:     2,
	ArmorHeavy:      3,
	ArmorUltraHeavy: 4,
}

// ArmorTierRank returns the ordinal position of a tier. Unknown tiers rank
// lowest.
func ArmorTierRank(tier ArmorTier) int {
	for i, t := range armorTierOrder {
		if t == tier {
			return i
		}
	}
	return 0
}

// ArmorTierBonus returns the defense bonus granted by a tier. Unknown tiers
// grant nothing.
func ArmorTierBonus(tier ArmorTier) int {
	return armorTierBonus[tier]
}

// ParseArmorTier matches a tier name regardless of case.
func ParseArmorTier(value string) (ArmorTier, bool) {
	tier := ArmorTier(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range armorTierOrder {
		if t == tier {
			return t, true
		}
	}
	return ArmorNone, false
}

// ArmorTiersThrough lists every tier from ArmorNone up to and including max.
func ArmorTiersThrough(max ArmorTier) []ArmorTier {
	rank := ArmorTierRank(max)
	out := make([]ArmorTier, 0, rank+1)
	for _, t := range armorTierOrder[:rank+1] {
		out = append(out, t)
	}
	return out
}

// Milestone reports whether a level grants both a perk and skill ranks on
// level-up. Non-milestone levels grant one or the other.
func Milestone(level int) bool {
	switch level {
	case 5, 10, 15, 20:
		return true
	}
	return false
}
