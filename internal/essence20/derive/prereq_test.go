package derive

import (
	"testing"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
)

func TestPrerequisiteEmpty(t *testing.T) {
	rb := loadRules(t)
	c := character.New()

	if !Prerequisite("", c, rb) {
		t.Fatal("empty prerequisite should always be met")
	}
}

func TestPrerequisiteLevel(t *testing.T) {
	rb := loadRules(t)
	c := character.New()
	c.Level = 4

	if Prerequisite("Level 5+", c, rb) {
		t.Fatal("level 4 should not meet Level 5+")
	}
	c.Level = 5
	if !Prerequisite("Level 5+", c, rb) {
		t.Fatal("level 5 should meet Level 5+")
	}
}

func TestPrerequisiteEssenceScore(t *testing.T) {
	rb := loadRules(t)
	c := character.New()
	c.Essences[essence20.EssenceStrength] = 2
	c.RoleKey = "red"

	// 2 raw + 1 red adjustment = 3.
	if !Prerequisite("Strength 3+", c, rb) {
		t.Fatal("final strength 3 should meet Strength 3+")
	}
	if Prerequisite("Strength 4+", c, rb) {
		t.Fatal("final strength 3 should not meet Strength 4+")
	}
}

func TestPrerequisiteSkillDieComparesSize(t *testing.T) {
	rb := loadRules(t)

	c := character.New()
	c.SkillRanks = map[string]int{"conditioning": 3}
	if !Prerequisite("Conditioning d6+", c, rb) {
		t.Fatal("3 ranks roll d6 and should meet d6+")
	}

	c.SkillRanks["conditioning"] = 2
	if Prerequisite("Conditioning d6+", c, rb) {
		t.Fatal("2 ranks roll d4 and should not meet d6+")
	}

	c.SkillRanks = map[string]int{"alertness": 0}
	if Prerequisite("Alertness d2+", c, rb) {
		t.Fatal("no ranks means no die, which cannot meet d2+")
	}
}

func TestPrerequisiteArmorTraining(t *testing.T) {
	rb := loadRules(t)

	c := character.New()
	c.RoleKey = "black"
	if !Prerequisite("Heavy Armor Training", c, rb) {
		t.Fatal("black role trains heavy armor")
	}

	c.RoleKey = "red"
	if Prerequisite("Heavy Armor Training", c, rb) {
		t.Fatal("red role trains only medium armor")
	}

	c.Level = 6
	c.SkillRanks = map[string]int{"conditioning": 3}
	c.Perks = []string{"heavy-armor-shell"}
	if !Prerequisite("Heavy Armor Training", c, rb) {
		t.Fatal("heavy shell perk should grant heavy training")
	}
}

func TestPrerequisiteCombinedClauses(t *testing.T) {
	rb := loadRules(t)

	c := character.New()
	c.Level = 6
	c.SkillRanks = map[string]int{"conditioning": 3}
	if !Prerequisite("Level 6+, Conditioning d6+", c, rb) {
		t.Fatal("both clauses hold and should pass")
	}

	c.Level = 5
	if Prerequisite("Level 6+, Conditioning d6+", c, rb) {
		t.Fatal("one failed clause fails the whole line")
	}
}

func TestPrerequisiteUnrecognizedClause(t *testing.T) {
	rb := loadRules(t)
	c := character.New()

	if !Prerequisite("Ranger Spirit 3+", c, rb) {
		t.Fatal("unrecognized clauses are ignored")
	}
	if !Prerequisite("GM approval", c, rb) {
		t.Fatal("free-text clauses are ignored")
	}
}
