package essence20

import "strings"

// Skill is a fixed catalogue entry. Prefix is the three-letter stem used by
// sheet templates for rank checkboxes (for example ath1..ath6).
type Skill struct {
	Key     string
	Name    string
	Essence Essence
	Prefix  string
}

// SkillConditioning is the skill whose total ranks feed max health.
const SkillConditioning = "conditioning"

// skillCatalogue lists every skill grouped by essence in display order.
var skillCatalogue = []Skill{
	{Key: "athletics", Name: "Athletics", Essence: Strength, Prefix: "ath"},
	{Key: "brawn", Name: "Brawn", Essence: Strength, Prefix: "bra"},
	{Key: "conditioning", Name: "Conditioning", Essence: Strength, Prefix: "con"},
	{Key: "intimidation", Name: "Intimidation", Essence: Strength, Prefix: "int"},
	{Key: "might", Name: "Might", Essence: Strength, Prefix: "mig"},

	{Key: "acrobatics", Name: "Acrobatics", Essence: Speed, Prefix: "acr"},
	{Key: "driving", Name: "Driving", Essence: Speed, Prefix: "dri"},
	{Key: "finesse", Name: "Finesse", Essence: Speed, Prefix: "fin"},
	{Key: "infiltration", Name: "Infiltration", Essence: Speed, Prefix: "inf"},
	{Key: "initiative", Name: "Initiative", Essence: Speed, Prefix: "ini"},
	{Key: "targeting", Name: "Targeting", Essence: Speed, Prefix: "tar"},

	{Key: "alertness", Name: "Alertness", Essence: Smarts, Prefix: "ale"},
	{Key: "culture", Name: "Culture", Essence: Smarts, Prefix: "cul"},
	{Key: "science", Name: "Science", Essence: Smarts, Prefix: "sci"},
	{Key: "survival", Name: "Survival", Essence: Smarts, Prefix: "sur"},
	{Key: "technology", Name: "Technology", Essence: Smarts, Prefix: "tec"},

	{Key: "animal-handling", Name: "Animal Handling", Essence: Social, Prefix: "ani"},
	{Key: "deception", Name: "Deception", Essence: Social, Prefix: "dec"},
	{Key: "performance", Name: "Performance", Essence: Social, Prefix: "per"},
	{Key: "persuasion", Name: "Persuasion", Essence: Social, Prefix: "prs"},
	{Key: "streetwise", Name: "Streetwise", Essence: Social, Prefix: "str"},
}

var skillsByKey = func() map[string]Skill {
	index := make(map[string]Skill, len(skillCatalogue))
	for _, s := range skillCatalogue {
		index[s.Key] = s
	}
	return index
}()

// Skills returns the full skill catalogue in display order.
func Skills() []Skill {
	out := make([]Skill, len(skillCatalogue))
	copy(out, skillCatalogue)
	return out
}

// SkillByKey resolves a skill by its key. Unknown keys return false.
func SkillByKey(key string) (Skill, bool) {
	s, ok := skillsByKey[key]
	return s, ok
}

// SkillByName resolves a skill by its display name, case-insensitively.
// Unknown names return false.
func SkillByName(name string) (Skill, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, s := range skillCatalogue {
		if strings.ToLower(s.Name) == want {
			return s, true
		}
	}
	return Skill{}, false
}

// SkillsForEssence lists the skills governed by one essence in display order.
func SkillsForEssence(essence Essence) []Skill {
	var out []Skill
	for _, s := range skillCatalogue {
		if s.Essence == essence {
			out = append(out, s)
		}
	}
	return out
}
