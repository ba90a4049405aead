package derive

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
)

// Prerequisite clauses as printed on perk and grid-power cards, for example
// "Level 6+, Conditioning d6+" or "Heavy Armor Training".
var (
	levelClause = regexp.MustCompile(`^[Ll]evel (\d+)\+$`)
	scoreClause = regexp.MustCompile(`^(.+?) (\d+)\+$`)
	dieClause   = regexp.MustCompile(`^(.+?) d(\d+)\+$`)
	armorClause = regexp.MustCompile(`^(.+?) [Aa]rmor [Tt]raining$`)
)

// Prerequisite reports whether the character meets a prerequisite line.
// Clauses are comma-separated and all of them must hold. A clause that
// matches none of the known forms is ignored, and an empty line is always
// met.
func Prerequisite(text string, c *character.Character, rb *rulebook.Rulebook) bool {
	for _, clause := range strings.Split(text, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if !meetsClause(clause, c, rb) {
			return false
		}
	}
	return true
}

func meetsClause(clause string, c *character.Character, rb *rulebook.Rulebook) bool {
	if m := levelClause.FindStringSubmatch(clause); m != nil {
		need, _ := strconv.Atoi(m[1])
		return c.Level >= need
	}
	// Die clauses must win over score clauses: a greedy name match would
	// otherwise read "Conditioning d6+" as the score "6+" of "Conditioning d".
	if m := dieClause.FindStringSubmatch(clause); m != nil {
		if skill, ok := essence20.SkillByName(m[1]); ok {
			need, _ := strconv.Atoi(m[2])
			have := essence20.DieSize(essence20.SkillDie(TotalSkillRanks(c, rb, skill.Key)))
			return have >= need
		}
		return true
	}
	if m := armorClause.FindStringSubmatch(clause); m != nil {
		if tier, ok := essence20.ParseArmorTier(m[1]); ok {
			return essence20.ArmorTierRank(Armor(c, rb).MaxTier) >= essence20.ArmorTierRank(tier)
		}
		return true
	}
	if m := scoreClause.FindStringSubmatch(clause); m != nil {
		if essence, ok := essence20.ParseEssence(m[1]); ok {
			need, _ := strconv.Atoi(m[2])
			return FinalEssences(c, rb)[essence] >= need
		}
		return true
	}
	return true
}
