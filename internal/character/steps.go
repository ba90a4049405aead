package character

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/morphsheet/internal/essence20"
	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
)

// Creation step numbers. Each step owns one field of StepInput.
const (
	StepIdentityNum   = 1
	StepOriginNum     = 2
	StepRoleNum       = 3
	StepEssencesNum   = 4
	StepSkillsNum     = 5
	StepInfluencesNum = 6
	StepUnlocksNum    = 7
	StepGearNum       = 8
	StepZordNum       = 9
	StepLevelUpsNum   = 10

	StepCount = 10
)

// StepIdentity sets the character's name, pronouns, level, and free text.
type StepIdentity struct {
	Name        string `json:"name"`
	Pronouns    string `json:"pronouns,omitempty"`
	Concept     string `json:"concept,omitempty"`
	Description string `json:"description,omitempty"`
	Level       int    `json:"level"`
}

// StepOrigin selects the origin and its essence-bonus choice.
type StepOrigin struct {
	OriginKey     string `json:"origin"`
	EssenceChoice string `json:"essence_choice,omitempty"`
}

// StepRole selects the role and its bonus-skill choice.
type StepRole struct {
	RoleKey     string `json:"role"`
	SkillChoice string `json:"skill_choice,omitempty"`
}

// StepEssences replaces the raw essence allocation.
type StepEssences struct {
	Scores map[essence20.Essence]int `json:"scores"`
}

// StepSkills replaces raw skill ranks and specializations.
type StepSkills struct {
	Ranks           map[string]int    `json:"ranks"`
	Specializations map[string]string `json:"specializations,omitempty"`
}

// StepInfluences replaces the ordered influence list.
type StepInfluences struct {
	Picks []InfluencePick `json:"picks"`
}

// StepUnlocks replaces general perk and grid power selections.
type StepUnlocks struct {
	Perks      []string `json:"perks,omitempty"`
	GridPowers []string `json:"grid_powers,omitempty"`
}

// StepGear replaces equipment choices, keyed by gear slot.
type StepGear struct {
	Equipment map[string]string `json:"equipment"`
}

// StepZord configures the companion zord.
type StepZord struct {
	Name            string         `json:"name,omitempty"`
	FrameKey        string         `json:"frame,omitempty"`
	SpectrumFeature string         `json:"spectrum_feature,omitempty"`
	Features        []string       `json:"features,omitempty"`
	Description     string         `json:"description,omitempty"`
	Growth          map[int]string `json:"growth,omitempty"`
}

// StepLevelUps records the choice made at one level-up.
type StepLevelUps struct {
	Level  int         `json:"level"`
	Choice LevelChoice `json:"choice"`
}

// StepInput carries one creation-step submission. Exactly one field is set,
// matching the step number it was parsed for.
type StepInput struct {
	Identity   *StepIdentity   `json:"identity,omitempty"`
	Origin     *StepOrigin     `json:"origin,omitempty"`
	Role       *StepRole       `json:"role,omitempty"`
	Essences   *StepEssences   `json:"essences,omitempty"`
	Skills     *StepSkills     `json:"skills,omitempty"`
	Influences *StepInfluences `json:"influences,omitempty"`
	Unlocks    *StepUnlocks    `json:"unlocks,omitempty"`
	Gear       *StepGear       `json:"gear,omitempty"`
	Zord       *StepZord       `json:"zord,omitempty"`
	LevelUps   *StepLevelUps   `json:"level_ups,omitempty"`
}

// Apply validates the step input against the rulebook and mutates the
// character. Validation runs before any mutation, so a failed step leaves
// the character untouched.
func (in StepInput) Apply(c *Character, rb *rulebook.Rulebook) error {
	switch {
	case in.Identity != nil:
		return applyIdentity(c, *in.Identity)
	case in.Origin != nil:
		return applyOrigin(c, rb, *in.Origin)
	case in.Role != nil:
		return applyRole(c, rb, *in.Role)
	case in.Essences != nil:
		return applyEssences(c, *in.Essences)
	case in.Skills != nil:
		return applySkills(c, *in.Skills)
	case in.Influences != nil:
		return applyInfluences(c, rb, *in.Influences)
	case in.Unlocks != nil:
		return applyUnlocks(c, rb, *in.Unlocks)
	case in.Gear != nil:
		return applyGear(c, rb, *in.Gear)
	case in.Zord != nil:
		return applyZord(c, rb, *in.Zord)
	case in.LevelUps != nil:
		return applyLevelUps(c, rb, *in.LevelUps)
	}
	return apperrors.New(apperrors.CodeCharacterInvalidStep, "step input has no payload")
}

func applyIdentity(c *Character, in StepIdentity) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.New(apperrors.CodeCharacterEmptyName, "character name is required")
	}
	if err := checkLength("Name", name, essence20.MaxNameLength); err != nil {
		return err
	}
	pronouns := strings.TrimSpace(in.Pronouns)
	if err := checkLength("Pronouns", pronouns, essence20.MaxNameLength); err != nil {
		return err
	}
	concept := strings.TrimSpace(in.Concept)
	if err := checkLength("Concept", concept, essence20.MaxTextLength); err != nil {
		return err
	}
	description := strings.TrimSpace(in.Description)
	if err := checkLength("Description", description, essence20.MaxTextLength); err != nil {
		return err
	}
	if in.Level < essence20.MinLevel || in.Level > essence20.MaxLevel {
		return apperrors.WithMetadata(apperrors.CodeCharacterInvalidLevel,
			fmt.Sprintf("level %d out of range %d..%d", in.Level, essence20.MinLevel, essence20.MaxLevel),
			map[string]string{
				"Min": strconv.Itoa(essence20.MinLevel),
				"Max": strconv.Itoa(essence20.MaxLevel),
			})
	}

	c.Name = name
	c.Pronouns = pronouns
	c.Concept = concept
	c.Description = description
	c.Level = in.Level
	return nil
}

func applyOrigin(c *Character, rb *rulebook.Rulebook, in StepOrigin) error {
	origin, ok := rb.Origin(in.OriginKey)
	if !ok {
		return unknownKey(apperrors.CodeCharacterUnknownOrigin, "origin", in.OriginKey)
	}

	var choice essence20.Essence
	if strings.TrimSpace(in.EssenceChoice) != "" {
		essence, ok := essence20.ParseEssence(in.EssenceChoice)
		if !ok {
			return apperrors.WithMetadata(apperrors.CodeCharacterInvalidEssence,
				fmt.Sprintf("unknown essence %q", in.EssenceChoice),
				map[string]string{"Key": in.EssenceChoice})
		}
		allowed := false
		for _, option := range origin.EssenceChoices {
			if option == essence {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperrors.WithMetadata(apperrors.CodeCharacterInvalidEssence,
				fmt.Sprintf("origin %q does not offer a %s bonus", origin.Key, essence),
				map[string]string{"Key": string(essence)})
		}
		choice = essence
	}

	c.OriginKey = origin.Key
	c.OriginEssenceChoice = choice
	return nil
}

func applyRole(c *Character, rb *rulebook.Rulebook, in StepRole) error {
	role, ok := rb.Role(in.RoleKey)
	if !ok {
		return unknownKey(apperrors.CodeCharacterUnknownRole, "role", in.RoleKey)
	}

	var skillChoice string
	if strings.TrimSpace(in.SkillChoice) != "" {
		allowed := false
		for _, option := range role.SkillChoices {
			if option == in.SkillChoice {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperrors.WithMetadata(apperrors.CodeCharacterUnknownSkill,
				fmt.Sprintf("role %q does not offer skill choice %q", role.Key, in.SkillChoice),
				map[string]string{"Key": in.SkillChoice})
		}
		skillChoice = in.SkillChoice
	}

	c.RoleKey = role.Key
	c.RoleSkillChoice = skillChoice
	return nil
}

func applyEssences(c *Character, in StepEssences) error {
	scores := make(map[essence20.Essence]int, len(in.Scores))
	for essence, score := range in.Scores {
		if _, ok := essence20.DefenseFor(essence); !ok {
			return apperrors.WithMetadata(apperrors.CodeCharacterInvalidEssence,
				fmt.Sprintf("unknown essence %q", essence),
				map[string]string{"Key": string(essence)})
		}
		if score < essence20.MinEssenceScore || score > essence20.MaxEssenceScore {
			return apperrors.WithMetadata(apperrors.CodeCharacterInvalidEssence,
				fmt.Sprintf("essence %s score %d out of range %d..%d",
					essence, score, essence20.MinEssenceScore, essence20.MaxEssenceScore),
				map[string]string{
					"Min": strconv.Itoa(essence20.MinEssenceScore),
					"Max": strconv.Itoa(essence20.MaxEssenceScore),
				})
		}
		scores[essence] = score
	}

	c.Essences = scores
	return nil
}

func applySkills(c *Character, in StepSkills) error {
	ranks := make(map[string]int, len(in.Ranks))
	for skill, count := range in.Ranks {
		if _, ok := essence20.SkillByKey(skill); !ok {
			return unknownKey(apperrors.CodeCharacterUnknownSkill, "skill", skill)
		}
		if count < 0 || count > essence20.MaxSkillRank {
			return apperrors.WithMetadata(apperrors.CodeCharacterInvalidSkillRank,
				fmt.Sprintf("skill %s has %d ranks, maximum is %d", skill, count, essence20.MaxSkillRank),
				map[string]string{"Max": strconv.Itoa(essence20.MaxSkillRank)})
		}
		ranks[skill] = count
	}

	specializations := make(map[string]string, len(in.Specializations))
	for skill, text := range in.Specializations {
		if _, ok := essence20.SkillByKey(skill); !ok {
			return unknownKey(apperrors.CodeCharacterUnknownSkill, "skill", skill)
		}
		text = strings.TrimSpace(text)
		if err := checkLength("Specialization", text, essence20.MaxNameLength); err != nil {
			return err
		}
		if text != "" {
			specializations[skill] = text
		}
	}

	c.SkillRanks = ranks
	c.Specializations = specializations
	return nil
}

func applyInfluences(c *Character, rb *rulebook.Rulebook, in StepInfluences) error {
	if len(in.Picks) > essence20.MaxInfluences {
		return apperrors.WithMetadata(apperrors.CodeCharacterInfluenceLimit,
			fmt.Sprintf("%d influences selected, maximum is %d", len(in.Picks), essence20.MaxInfluences),
			map[string]string{"Max": strconv.Itoa(essence20.MaxInfluences)})
	}

	seen := make(map[string]bool, len(in.Picks))
	picks := make([]InfluencePick, 0, len(in.Picks))
	for i, pick := range in.Picks {
		influence, ok := rb.Influence(pick.Key)
		if !ok {
			return unknownKey(apperrors.CodeCharacterUnknownInfluence, "influence", pick.Key)
		}
		if seen[pick.Key] {
			return apperrors.WithMetadata(apperrors.CodeCharacterInfluenceDuplicate,
				fmt.Sprintf("influence %q selected twice", pick.Key),
				map[string]string{"Key": pick.Key})
		}
		seen[pick.Key] = true

		if i == 0 && pick.HangUpKey != "" {
			return apperrors.New(apperrors.CodeCharacterInfluenceHangUp,
				"first influence does not take a hang-up")
		}
		if pick.HangUpKey != "" {
			found := false
			for _, h := range influence.HangUps {
				if h.Key == pick.HangUpKey {
					found = true
					break
				}
			}
			if !found {
				return apperrors.WithMetadata(apperrors.CodeCharacterInfluenceHangUp,
					fmt.Sprintf("influence %q has no hang-up %q", pick.Key, pick.HangUpKey),
					map[string]string{"Key": pick.HangUpKey})
			}
		}
		for _, idx := range pick.BondIndices {
			if idx < 0 || idx >= len(influence.Bonds) {
				return apperrors.WithMetadata(apperrors.CodeCharacterUnknownInfluence,
					fmt.Sprintf("influence %q bond index %d out of range", pick.Key, idx),
					map[string]string{"Key": pick.Key})
			}
		}
		for _, idx := range pick.SpecialtyIndices {
			if idx < 0 || idx >= len(influence.Specialties) {
				return apperrors.WithMetadata(apperrors.CodeCharacterUnknownInfluence,
					fmt.Sprintf("influence %q specialty index %d out of range", pick.Key, idx),
					map[string]string{"Key": pick.Key})
			}
		}
		picks = append(picks, pick)
	}

	c.Influences = picks
	return nil
}

func applyUnlocks(c *Character, rb *rulebook.Rulebook, in StepUnlocks) error {
	perks := make([]string, 0, len(in.Perks))
	for _, key := range in.Perks {
		if _, ok := rb.Perk(key); !ok {
			return unknownKey(apperrors.CodeCharacterUnknownPerk, "perk", key)
		}
		perks = append(perks, key)
	}
	powers := make([]string, 0, len(in.GridPowers))
	for _, key := range in.GridPowers {
		if _, ok := rb.GridPower(key); !ok {
			return unknownKey(apperrors.CodeCharacterUnknownGridPower, "grid power", key)
		}
		powers = append(powers, key)
	}

	c.Perks = perks
	c.GridPowers = powers
	return nil
}

func applyGear(c *Character, rb *rulebook.Rulebook, in StepGear) error {
	equipment := make(map[string]string, len(in.Equipment))
	for slot, key := range in.Equipment {
		item, ok := rb.Gear(key)
		if !ok {
			return unknownKey(apperrors.CodeCharacterUnknownGear, "gear item", key)
		}
		if item.Slot != slot {
			return apperrors.WithMetadata(apperrors.CodeCharacterUnknownGear,
				fmt.Sprintf("gear %q is a %s item, not %s", key, item.Slot, slot),
				map[string]string{"Key": key})
		}
		equipment[slot] = key
	}

	c.Equipment = equipment
	return nil
}

func applyZord(c *Character, rb *rulebook.Rulebook, in StepZord) error {
	frame, ok := rb.ZordFrame(in.FrameKey)
	if !ok {
		return unknownKey(apperrors.CodeCharacterUnknownZordFrame, "zord frame", in.FrameKey)
	}
	name := strings.TrimSpace(in.Name)
	if err := checkLength("Zord name", name, essence20.MaxNameLength); err != nil {
		return err
	}
	description := strings.TrimSpace(in.Description)
	if err := checkLength("Zord description", description, essence20.MaxTextLength); err != nil {
		return err
	}
	if in.SpectrumFeature != "" && !contains(frame.SpectrumFeatures, in.SpectrumFeature) {
		return apperrors.WithMetadata(apperrors.CodeCharacterUnknownZordFrame,
			fmt.Sprintf("frame %q has no spectrum feature %q", frame.Key, in.SpectrumFeature),
			map[string]string{"Key": frame.Key})
	}
	for _, feature := range in.Features {
		if !contains(frame.Features, feature) {
			return apperrors.WithMetadata(apperrors.CodeCharacterUnknownZordFrame,
				fmt.Sprintf("frame %q has no feature %q", frame.Key, feature),
				map[string]string{"Key": frame.Key})
		}
	}
	growth := make(map[int]string, len(in.Growth))
	for slot, stat := range in.Growth {
		if slot < 1 || slot > frame.GrowthSlots {
			return apperrors.WithMetadata(apperrors.CodeCharacterUnknownZordFrame,
				fmt.Sprintf("frame %q growth slot %d out of range 1..%d", frame.Key, slot, frame.GrowthSlots),
				map[string]string{"Key": frame.Key})
		}
		switch stat {
		case "health", "power", "speed", "armor":
		default:
			return apperrors.WithMetadata(apperrors.CodeCharacterUnknownZordFrame,
				fmt.Sprintf("unknown zord growth stat %q", stat),
				map[string]string{"Key": frame.Key})
		}
		growth[slot] = stat
	}

	c.Zord = Zord{
		Name:            name,
		FrameKey:        frame.Key,
		SpectrumFeature: in.SpectrumFeature,
		Features:        in.Features,
		Description:     description,
		Growth:          growth,
	}
	return nil
}

func applyLevelUps(c *Character, rb *rulebook.Rulebook, in StepLevelUps) error {
	if in.Level <= essence20.MinLevel || in.Level > essence20.MaxLevel {
		return apperrors.WithMetadata(apperrors.CodeCharacterInvalidLevelChoice,
			fmt.Sprintf("level-up choices apply to levels %d..%d, got %d",
				essence20.MinLevel+1, essence20.MaxLevel, in.Level),
			map[string]string{"Level": strconv.Itoa(in.Level)})
	}
	if in.Level > c.Level {
		return apperrors.WithMetadata(apperrors.CodeCharacterInvalidLevelChoice,
			fmt.Sprintf("character is level %d, cannot record a level %d choice", c.Level, in.Level),
			map[string]string{"Level": strconv.Itoa(in.Level)})
	}
	if in.Choice.PerkKey != "" {
		if _, ok := rb.Perk(in.Choice.PerkKey); !ok {
			return unknownKey(apperrors.CodeCharacterUnknownPerk, "perk", in.Choice.PerkKey)
		}
	}
	for skill, count := range in.Choice.SkillRanks {
		if _, ok := essence20.SkillByKey(skill); !ok {
			return unknownKey(apperrors.CodeCharacterUnknownSkill, "skill", skill)
		}
		if count <= 0 {
			return apperrors.New(apperrors.CodeCharacterInvalidLevelChoice,
				"level-up skill grants must be positive")
		}
	}
	if !essence20.Milestone(in.Level) && in.Choice.PerkKey != "" && len(in.Choice.SkillRanks) > 0 {
		return apperrors.WithMetadata(apperrors.CodeCharacterInvalidLevelChoice,
			fmt.Sprintf("level %d grants a perk or skill ranks, not both", in.Level),
			map[string]string{"Level": strconv.Itoa(in.Level)})
	}

	if c.Choices == nil {
		c.Choices = make(map[int]LevelChoice)
	}
	c.Choices[in.Level] = in.Choice
	return nil
}

func checkLength(field, text string, limit int) error {
	if len([]rune(text)) <= limit {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeCharacterTextTooLong,
		fmt.Sprintf("%s exceeds %d characters", field, limit),
		map[string]string{"Field": field, "Limit": strconv.Itoa(limit)})
}

func unknownKey(code apperrors.Code, kind, key string) error {
	return apperrors.WithMetadata(code,
		fmt.Sprintf("unknown %s %q", kind, key),
		map[string]string{"Key": key})
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
