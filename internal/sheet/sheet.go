// Package sheet flattens a character and the rule tables into the exact rows
// and labels a rendered character sheet shows. Exporters consume a Sheet and
// never reach back into the rulebook, so every lookup here is lenient:
// unknown keys leave gaps instead of failing the render.
package sheet

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
	"github.com/louisbranch/morphsheet/internal/essence20/derive"
	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
)

// SkillRow is one line of the skill table.
type SkillRow struct {
	Key            string
	Name           string
	Essence        essence20.Essence
	Prefix         string
	Ranks          int
	Die            string
	Specialization string
}

// AttackRow is one equipped weapon with the die of its governing skill.
type AttackRow struct {
	Name      string
	Skill     string
	SkillDie  string
	DamageDie string
}

// Entry is a named list item with an optional one-line summary.
type Entry struct {
	Name    string
	Summary string
}

// ZordBlock is the companion zord after growth bumps are applied.
type ZordBlock struct {
	Name            string
	Frame           string
	Health          int
	Power           int
	Speed           int
	Armor           int
	SpectrumFeature string
	Features        []string
	Description     string
}

// GearRow is one equipment line.
type GearRow struct {
	Slot      string
	Name      string
	DamageDie string
	Notes     string
}

// Sheet is the fully resolved character sheet.
type Sheet struct {
	Name        string
	Pronouns    string
	Concept     string
	Description string
	Level       int

	Origin     string
	Role       string
	Influences []string

	Essences map[essence20.Essence]int
	Defenses map[essence20.Defense]int
	Skills   []SkillRow

	MaxHealth     int
	PowerCapacity int
	Armor         derive.ArmorTraining

	Attacks []AttackRow

	// Perk groups in render order: role perks, influence perks, then
	// general and level-up perks. Empty groups are dropped.
	PerkGroups [][]Entry

	GridPowers  []Entry
	Bonds       []string
	HangUps     []Entry
	Specialties []string

	Zord ZordBlock
	Gear []GearRow

	Pools character.Pools
}

// Build projects a character through the rule tables.
func Build(c *character.Character, rb *rulebook.Rulebook) Sheet {
	s := Sheet{
		Name:        c.Name,
		Pronouns:    c.Pronouns,
		Concept:     c.Concept,
		Description: c.Description,
		Level:       c.Level,

		Essences: derive.FinalEssences(c, rb),
		Defenses: derive.DefenseValues(c, rb),

		MaxHealth:     derive.MaxHealth(c, rb),
		PowerCapacity: derive.PowerCapacity(c, rb),
		Armor:         derive.Armor(c, rb),

		Pools: c.Pools,
	}

	if origin, ok := rb.Origin(c.OriginKey); ok {
		s.Origin = origin.Name
	}
	role, hasRole := rb.Role(c.RoleKey)
	if hasRole {
		s.Role = role.Name
	}

	for _, row := range essence20.Skills() {
		s.Skills = append(s.Skills, SkillRow{
			Key:            row.Key,
			Name:           row.Name,
			Essence:        row.Essence,
			Prefix:         row.Prefix,
			Ranks:          derive.TotalSkillRanks(c, rb, row.Key),
			Die:            essence20.SkillDie(derive.TotalSkillRanks(c, rb, row.Key)),
			Specialization: c.Specializations[row.Key],
		})
	}

	buildInfluences(&s, c, rb)
	buildPerkGroups(&s, c, rb, role, hasRole)
	buildGridPowers(&s, c, rb)
	buildGear(&s, c, rb)
	buildZord(&s, c, rb)

	return s
}

func buildInfluences(s *Sheet, c *character.Character, rb *rulebook.Rulebook) {
	for i, pick := range c.Influences {
		influence, ok := rb.Influence(pick.Key)
		if !ok {
			continue
		}
		s.Influences = append(s.Influences, influence.Name)

		for _, idx := range pick.BondIndices {
			if idx >= 0 && idx < len(influence.Bonds) {
				s.Bonds = append(s.Bonds, influence.Bonds[idx])
			}
		}
		for _, idx := range pick.SpecialtyIndices {
			if idx >= 0 && idx < len(influence.Specialties) {
				s.Specialties = append(s.Specialties, influence.Specialties[idx])
			}
		}
		if i == 0 || pick.HangUpKey == "" {
			continue
		}
		for _, h := range influence.HangUps {
			if h.Key == pick.HangUpKey {
				s.HangUps = append(s.HangUps, Entry{Name: h.Name, Summary: h.Summary})
				break
			}
		}
	}
}

func buildPerkGroups(s *Sheet, c *character.Character, rb *rulebook.Rulebook, role rulebook.Role, hasRole bool) {
	var rolePerks []Entry
	if hasRole {
		for _, perk := range role.Perks {
			if perk.Level <= c.Level {
				rolePerks = append(rolePerks, Entry{Name: perk.Name, Summary: perk.Summary})
			}
		}
	}

	var influencePerks []Entry
	for _, pick := range c.Influences {
		if influence, ok := rb.Influence(pick.Key); ok {
			influencePerks = append(influencePerks, Entry{Name: influence.PerkName, Summary: influence.PerkSummary})
		}
	}

	var generalPerks []Entry
	appendPerk := func(key string) {
		if perk, ok := rb.Perk(key); ok {
			generalPerks = append(generalPerks, Entry{Name: perk.Name, Summary: perk.Summary})
		}
	}
	for _, key := range c.Perks {
		appendPerk(key)
	}
	for level := essence20.MinLevel + 1; level <= c.Level; level++ {
		if choice, ok := c.Choices[level]; ok && choice.PerkKey != "" {
			appendPerk(choice.PerkKey)
		}
	}

	for _, group := range [][]Entry{rolePerks, influencePerks, generalPerks} {
		if len(group) > 0 {
			s.PerkGroups = append(s.PerkGroups, group)
		}
	}
}

func buildGridPowers(s *Sheet, c *character.Character, rb *rulebook.Rulebook) {
	for _, key := range c.GridPowers {
		if power, ok := rb.GridPower(key); ok {
			s.GridPowers = append(s.GridPowers, Entry{Name: power.Name, Summary: power.Summary})
		}
	}
}

func buildGear(s *Sheet, c *character.Character, rb *rulebook.Rulebook) {
	for _, slot := range []string{rulebook.SlotSidearm, rulebook.SlotMelee, rulebook.SlotTool} {
		key, ok := c.Equipment[slot]
		if !ok {
			continue
		}
		item, found := rb.Gear(key)
		if !found {
			continue
		}
		s.Gear = append(s.Gear, GearRow{
			Slot:      slot,
			Name:      item.Name,
			DamageDie: item.DamageDie,
			Notes:     item.Notes,
		})
		if item.DamageDie == "" {
			continue
		}
		switch slot {
		case rulebook.SlotMelee:
			s.Attacks = append(s.Attacks, attackRow(s, item, "Might"))
		case rulebook.SlotSidearm:
			s.Attacks = append(s.Attacks, attackRow(s, item, "Targeting"))
		}
	}
}

func attackRow(s *Sheet, item rulebook.GearItem, skillName string) AttackRow {
	row := AttackRow{Name: item.Name, Skill: skillName, DamageDie: item.DamageDie, SkillDie: essence20.NoDie}
	for _, skill := range s.Skills {
		if skill.Name == skillName {
			row.SkillDie = skill.Die
			break
		}
	}
	return row
}

func buildZord(s *Sheet, c *character.Character, rb *rulebook.Rulebook) {
	frame, ok := rb.ZordFrame(c.Zord.FrameKey)
	if !ok {
		s.Zord = ZordBlock{Name: c.Zord.Name, Description: c.Zord.Description}
		return
	}

	block := ZordBlock{
		Name:            c.Zord.Name,
		Frame:           frame.Name,
		Health:          frame.BaseHealth,
		Power:           frame.BasePower,
		Speed:           frame.BaseSpeed,
		Armor:           frame.BaseArmor,
		SpectrumFeature: c.Zord.SpectrumFeature,
		Features:        c.Zord.Features,
		Description:     c.Zord.Description,
	}
	for _, stat := range c.Zord.Growth {
		switch stat {
		case "health":
			block.Health += 2
		case "power":
			block.Power++
		case "speed":
			block.Speed++
		case "armor":
			block.Armor++
		}
	}
	s.Zord = block
}

var labelCaser = cases.Title(language.English)

// Label renders a lowercase rule key ("ultra-heavy", "strength") as a
// display label.
func Label(key string) string {
	return labelCaser.String(key)
}

// ArmorLabel renders the armor training line, for example "Medium (+2)".
func (s Sheet) ArmorLabel() string {
	if s.Armor.MaxTier == essence20.ArmorNone {
		return "None"
	}
	return fmt.Sprintf("%s (+%d)", Label(string(s.Armor.MaxTier)), s.Armor.MaxBonus)
}

// ComposedPerks renders the perk groups as a single text block. Entries are
// one line each and groups are separated by a blank line.
func (s Sheet) ComposedPerks() string {
	var groups []string
	for _, group := range s.PerkGroups {
		lines := make([]string, 0, len(group))
		for _, entry := range group {
			lines = append(lines, entry.Line())
		}
		groups = append(groups, strings.Join(lines, "\n"))
	}
	return strings.Join(groups, "\n\n")
}

// Line renders an entry as "Name: Summary", or just the name when there is
// no summary.
func (e Entry) Line() string {
	if e.Summary == "" {
		return e.Name
	}
	return e.Name + ": " + e.Summary
}
