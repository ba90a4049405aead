package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
	"github.com/louisbranch/morphsheet/internal/essence20/derive"
	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
	"github.com/louisbranch/morphsheet/internal/sheet"
)

// row is one line of a step screen. Interactive rows set whichever actions
// apply: adjust for left/right cycling, toggle for space, edit for free
// text. A non-empty section renders a heading above the row.
type row struct {
	section string
	label   string
	value   string
	note    string

	adjust func(delta int) *character.StepInput
	toggle func() *character.StepInput
	edit   *editSpec
}

// editSpec configures the inline text input opened by enter.
type editSpec struct {
	initial string
	limit   int
	commit  func(value string) *character.StepInput
}

// rows rebuilds the current step's screen from the character and the rule
// tables. Rows never cache state; every keypress sees the latest character.
func (m model) rows() []row {
	switch m.step {
	case character.StepIdentityNum:
		return m.identityRows()
	case character.StepOriginNum:
		return m.originRows()
	case character.StepRoleNum:
		return m.roleRows()
	case character.StepEssencesNum:
		return m.essenceRows()
	case character.StepSkillsNum:
		return m.skillRows()
	case character.StepInfluencesNum:
		return m.influenceRows()
	case character.StepUnlocksNum:
		return m.unlockRows()
	case character.StepGearNum:
		return m.gearRows()
	case character.StepZordNum:
		return m.zordRows()
	case character.StepLevelUpsNum:
		return m.levelUpRows()
	}
	return nil
}

func (m model) identityRows() []row {
	c := m.char
	base := character.StepIdentity{
		Name:        c.Name,
		Pronouns:    c.Pronouns,
		Concept:     c.Concept,
		Description: c.Description,
		Level:       c.Level,
	}
	identity := func(in character.StepIdentity) *character.StepInput {
		return &character.StepInput{Identity: &in}
	}

	return []row{
		{
			label: "Name",
			value: textOr(c.Name, "(unnamed)"),
			edit: &editSpec{initial: c.Name, limit: essence20.MaxNameLength, commit: func(value string) *character.StepInput {
				in := base
				in.Name = value
				return identity(in)
			}},
		},
		{
			label: "Pronouns",
			value: textOr(c.Pronouns, "-"),
			edit: &editSpec{initial: c.Pronouns, limit: essence20.MaxNameLength, commit: func(value string) *character.StepInput {
				in := base
				in.Pronouns = value
				return identity(in)
			}},
		},
		{
			label: "Concept",
			value: clip(textOr(c.Concept, "-"), 40),
			edit: &editSpec{initial: c.Concept, limit: essence20.MaxTextLength, commit: func(value string) *character.StepInput {
				in := base
				in.Concept = value
				return identity(in)
			}},
		},
		{
			label: "Description",
			value: clip(textOr(c.Description, "-"), 40),
			edit: &editSpec{initial: c.Description, limit: essence20.MaxTextLength, commit: func(value string) *character.StepInput {
				in := base
				in.Description = value
				return identity(in)
			}},
		},
		{
			label: "Level",
			value: strconv.Itoa(c.Level),
			note:  fmt.Sprintf("levels %d to %d, milestones at 5, 10, 15, 20", essence20.MinLevel, essence20.MaxLevel),
			adjust: func(delta int) *character.StepInput {
				next := c.Level + delta
				if next < essence20.MinLevel || next > essence20.MaxLevel {
					return nil
				}
				in := base
				in.Level = next
				return identity(in)
			},
		},
	}
}

func (m model) originRows() []row {
	c := m.char
	origins := m.rules.Origins()
	keys := make([]string, len(origins))
	for i, o := range origins {
		keys[i] = o.Key
	}
	current, hasOrigin := m.rules.Origin(c.OriginKey)

	rows := []row{{
		label: "Origin",
		value: textOr(current.Name, "(none)"),
		note:  clip(current.Description, 60),
		adjust: func(delta int) *character.StepInput {
			next, ok := m.rules.Origin(cycleKey(keys, c.OriginKey, delta))
			if !ok {
				return nil
			}
			in := character.StepOrigin{OriginKey: next.Key}
			if len(next.EssenceChoices) > 0 {
				in.EssenceChoice = string(next.EssenceChoices[0])
			}
			return &character.StepInput{Origin: &in}
		},
	}}

	if hasOrigin {
		rows[0].note = fmt.Sprintf("starting health %d", current.StartingHealth)
	}
	if hasOrigin && len(current.EssenceChoices) > 0 {
		choices := make([]string, len(current.EssenceChoices))
		for i, e := range current.EssenceChoices {
			choices[i] = string(e)
		}
		rows = append(rows, row{
			label: "Essence Bonus",
			value: sheet.Label(string(c.OriginEssenceChoice)),
			note:  "+1 to this essence from " + current.Name,
			adjust: func(delta int) *character.StepInput {
				in := character.StepOrigin{
					OriginKey:     current.Key,
					EssenceChoice: cycleKey(choices, string(c.OriginEssenceChoice), delta),
				}
				return &character.StepInput{Origin: &in}
			},
		})
	}
	return rows
}

func (m model) roleRows() []row {
	c := m.char
	roles := m.rules.Roles()
	keys := make([]string, len(roles))
	for i, r := range roles {
		keys[i] = r.Key
	}
	current, hasRole := m.rules.Role(c.RoleKey)

	rows := []row{{
		label: "Role",
		value: textOr(current.Name, "(none)"),
		note:  roleNote(current, hasRole),
		adjust: func(delta int) *character.StepInput {
			next, ok := m.rules.Role(cycleKey(keys, c.RoleKey, delta))
			if !ok {
				return nil
			}
			in := character.StepRole{RoleKey: next.Key}
			if len(next.SkillChoices) > 0 {
				in.SkillChoice = next.SkillChoices[0]
			}
			return &character.StepInput{Role: &in}
		},
	}}

	if hasRole && len(current.SkillChoices) > 0 {
		rows = append(rows, row{
			label: "Bonus Skill",
			value: skillName(c.RoleSkillChoice),
			note:  "+1 rank in one of the role's listed skills",
			adjust: func(delta int) *character.StepInput {
				in := character.StepRole{
					RoleKey:     current.Key,
					SkillChoice: cycleKey(current.SkillChoices, c.RoleSkillChoice, delta),
				}
				return &character.StepInput{Role: &in}
			},
		})
	}
	return rows
}

func roleNote(role rulebook.Role, ok bool) string {
	if !ok {
		return ""
	}
	armor := "no armor training"
	if role.ArmorTier != essence20.ArmorNone {
		armor = sheet.Label(string(role.ArmorTier)) + " armor"
	}
	return fmt.Sprintf("%s, %s power growth", armor, role.PowerGrowth)
}

func (m model) essenceRows() []row {
	c := m.char
	finals := derive.FinalEssences(c, m.rules)
	defenses := derive.DefenseValues(c, m.rules)

	var rows []row
	for _, ess := range essence20.Essences() {
		defense, _ := essence20.DefenseFor(ess)
		rows = append(rows, row{
			label: sheet.Label(string(ess)),
			value: strconv.Itoa(c.Essences[ess]),
			note: fmt.Sprintf("final %d, %s %d",
				finals[ess], sheet.Label(string(defense)), defenses[defense]),
			adjust: func(delta int) *character.StepInput {
				next := c.Essences[ess] + delta
				if next < essence20.MinEssenceScore || next > essence20.MaxEssenceScore {
					return nil
				}
				scores := make(map[essence20.Essence]int, len(c.Essences))
				for k, v := range c.Essences {
					scores[k] = v
				}
				scores[ess] = next
				return &character.StepInput{Essences: &character.StepEssences{Scores: scores}}
			},
		})
	}
	return rows
}

func (m model) skillRows() []row {
	c := m.char
	var rows []row
	var lastEssence essence20.Essence
	for _, skill := range essence20.Skills() {
		section := ""
		if skill.Essence != lastEssence {
			section = sheet.Label(string(skill.Essence)) + " Skills"
			lastEssence = skill.Essence
		}

		total := derive.TotalSkillRanks(c, m.rules, skill.Key)
		die := essence20.SkillDie(total)
		note := "rolls " + die
		if die == essence20.NoDie {
			note = "untrained"
		}
		if spec := c.Specializations[skill.Key]; spec != "" {
			note += ", specialization: " + spec
		}

		rows = append(rows, row{
			section: section,
			label:   skill.Name,
			value:   fmt.Sprintf("%d ranks", c.SkillRanks[skill.Key]),
			note:    note,
			adjust: func(delta int) *character.StepInput {
				next := c.SkillRanks[skill.Key] + delta
				if next < 0 || next > essence20.MaxSkillRank {
					return nil
				}
				in := m.skillsInput()
				in.Ranks[skill.Key] = next
				return &character.StepInput{Skills: &in}
			},
			edit: &editSpec{
				initial: c.Specializations[skill.Key],
				limit:   essence20.MaxNameLength,
				commit: func(value string) *character.StepInput {
					in := m.skillsInput()
					if value == "" {
						delete(in.Specializations, skill.Key)
					} else {
						in.Specializations[skill.Key] = value
					}
					return &character.StepInput{Skills: &in}
				},
			},
		})
	}
	return rows
}

func (m model) skillsInput() character.StepSkills {
	in := character.StepSkills{
		Ranks:           make(map[string]int, len(m.char.SkillRanks)),
		Specializations: make(map[string]string, len(m.char.Specializations)),
	}
	for k, v := range m.char.SkillRanks {
		in.Ranks[k] = v
	}
	for k, v := range m.char.Specializations {
		in.Specializations[k] = v
	}
	return in
}

func (m model) influenceRows() []row {
	c := m.char
	var rows []row
	for _, inf := range m.rules.Influences() {
		pickIdx := -1
		for i, pick := range c.Influences {
			if pick.Key == inf.Key {
				pickIdx = i
				break
			}
		}

		value := "[ ]"
		note := ""
		if inf.PerkName != "" {
			note = "grants " + inf.PerkName
		}
		var adjust func(delta int) *character.StepInput

		switch {
		case pickIdx == 0:
			value = "[x] first"
			note = "first influence takes no hang-up"
		case pickIdx > 0:
			pick := c.Influences[pickIdx]
			hangUp := "(no hang-up)"
			for _, h := range inf.HangUps {
				if h.Key == pick.HangUpKey {
					hangUp = h.Name
				}
			}
			value = "[x] " + hangUp
			if len(inf.HangUps) > 1 {
				note = "left/right picks the hang-up"
				adjust = func(delta int) *character.StepInput {
					keys := make([]string, len(inf.HangUps))
					for i, h := range inf.HangUps {
						keys[i] = h.Key
					}
					picks := clonePicks(c.Influences)
					picks[pickIdx].HangUpKey = cycleKey(keys, pick.HangUpKey, delta)
					return &character.StepInput{Influences: &character.StepInfluences{Picks: picks}}
				}
			}
		}

		rows = append(rows, row{
			label:  inf.Name,
			value:  value,
			note:   note,
			adjust: adjust,
			toggle: func() *character.StepInput {
				var picks []character.InfluencePick
				if pickIdx >= 0 {
					picks = append(clonePicks(c.Influences[:pickIdx]), c.Influences[pickIdx+1:]...)
				} else {
					picks = append(clonePicks(c.Influences), character.InfluencePick{Key: inf.Key})
				}
				m.assignHangUps(picks)
				return &character.StepInput{Influences: &character.StepInfluences{Picks: picks}}
			},
		})
	}
	return rows
}

// assignHangUps keeps the pick list consistent after a toggle: the first
// influence never takes a hang-up, every later one defaults to its first
// listed hang-up.
func (m model) assignHangUps(picks []character.InfluencePick) {
	for i := range picks {
		if i == 0 {
			picks[i].HangUpKey = ""
			continue
		}
		if picks[i].HangUpKey != "" {
			continue
		}
		if inf, ok := m.rules.Influence(picks[i].Key); ok && len(inf.HangUps) > 0 {
			picks[i].HangUpKey = inf.HangUps[0].Key
		}
	}
}

func (m model) unlockRows() []row {
	c := m.char
	var rows []row
	for i, perk := range m.rules.Perks() {
		section := ""
		if i == 0 {
			section = "General Perks"
		}
		rows = append(rows, row{
			section: section,
			label:   perk.Name,
			value:   checkbox(c.HasPerk(perk.Key)),
			note:    m.prereqNote(perk.Prerequisite, perk.Summary),
			toggle: func() *character.StepInput {
				in := character.StepUnlocks{
					Perks:      toggleKey(c.Perks, perk.Key),
					GridPowers: cloneStrings(c.GridPowers),
				}
				return &character.StepInput{Unlocks: &in}
			},
		})
	}
	for i, power := range m.rules.GridPowers() {
		section := ""
		if i == 0 {
			section = "Grid Powers"
		}
		rows = append(rows, row{
			section: section,
			label:   power.Name,
			value:   checkbox(hasKey(c.GridPowers, power.Key)),
			note:    m.prereqNote(power.Prerequisite, power.Summary),
			toggle: func() *character.StepInput {
				in := character.StepUnlocks{
					Perks:      cloneStrings(c.Perks),
					GridPowers: toggleKey(c.GridPowers, power.Key),
				}
				return &character.StepInput{Unlocks: &in}
			},
		})
	}
	return rows
}

// prereqNote flags an unmet prerequisite instead of the summary. The flag is
// advisory; selection is never blocked.
func (m model) prereqNote(prereq, summary string) string {
	if prereq != "" && !derive.Prerequisite(prereq, m.char, m.rules) {
		return "needs " + prereq
	}
	return clip(summary, 60)
}

func (m model) gearRows() []row {
	c := m.char
	slots := []string{rulebook.SlotSidearm, rulebook.SlotMelee, rulebook.SlotTool}
	rows := make([]row, 0, len(slots))
	for _, slot := range slots {
		var keys []string
		for _, item := range m.rules.GearItems() {
			if item.Slot == slot {
				keys = append(keys, item.Key)
			}
		}
		keys = append(keys, "")

		value := "(none)"
		note := ""
		if item, ok := m.rules.Gear(c.Equipment[slot]); ok {
			value = item.Name
			note = gearNote(item)
		}
		rows = append(rows, row{
			label: sheet.Label(slot),
			value: value,
			note:  note,
			adjust: func(delta int) *character.StepInput {
				nextKey := cycleKey(keys, c.Equipment[slot], delta)
				equipment := make(map[string]string, len(c.Equipment))
				for k, v := range c.Equipment {
					equipment[k] = v
				}
				if nextKey == "" {
					delete(equipment, slot)
				} else {
					equipment[slot] = nextKey
				}
				return &character.StepInput{Gear: &character.StepGear{Equipment: equipment}}
			},
		})
	}
	return rows
}

func gearNote(item rulebook.GearItem) string {
	var parts []string
	if item.DamageDie != "" {
		parts = append(parts, "damage "+item.DamageDie)
	}
	if item.Notes != "" {
		parts = append(parts, item.Notes)
	}
	return clip(strings.Join(parts, ", "), 60)
}

func (m model) zordRows() []row {
	c := m.char
	frames := m.rules.ZordFrames()
	frameKeys := make([]string, len(frames))
	for i, f := range frames {
		frameKeys[i] = f.Key
	}
	frame, hasFrame := m.rules.ZordFrame(c.Zord.FrameKey)

	frameRow := row{
		label: "Frame",
		value: textOr(frame.Name, "(none)"),
		note:  frameNote(frame, hasFrame),
		adjust: func(delta int) *character.StepInput {
			nextKey := cycleKey(frameKeys, c.Zord.FrameKey, delta)
			if nextKey == c.Zord.FrameKey {
				return nil
			}
			in := character.StepZord{Name: c.Zord.Name, FrameKey: nextKey}
			return &character.StepInput{Zord: &in}
		},
	}
	if !hasFrame {
		frameRow.note = "pick a frame to unlock the rest of this step"
		return []row{frameRow}
	}

	rows := []row{
		{
			label: "Name",
			value: textOr(c.Zord.Name, "(unnamed)"),
			edit: &editSpec{initial: c.Zord.Name, limit: essence20.MaxNameLength, commit: func(value string) *character.StepInput {
				in := m.zordInput()
				in.Name = value
				return &character.StepInput{Zord: &in}
			}},
		},
		frameRow,
	}

	if len(frame.SpectrumFeatures) > 0 {
		options := cloneStrings(frame.SpectrumFeatures)
		rows = append(rows, row{
			label: "Spectrum Feature",
			value: textOr(c.Zord.SpectrumFeature, "(none)"),
			adjust: func(delta int) *character.StepInput {
				in := m.zordInput()
				in.SpectrumFeature = cycleKey(options, c.Zord.SpectrumFeature, delta)
				return &character.StepInput{Zord: &in}
			},
		})
	}

	for i, feature := range frame.Features {
		section := ""
		if i == 0 {
			section = "Frame Features"
		}
		rows = append(rows, row{
			section: section,
			label:   feature,
			value:   checkbox(hasKey(c.Zord.Features, feature)),
			toggle: func() *character.StepInput {
				in := m.zordInput()
				in.Features = toggleKey(c.Zord.Features, feature)
				return &character.StepInput{Zord: &in}
			},
		})
	}

	growthStats := []string{"", "health", "power", "speed", "armor"}
	for slot := 1; slot <= frame.GrowthSlots; slot++ {
		section := ""
		if slot == 1 {
			section = "Growth Slots"
		}
		rows = append(rows, row{
			section: section,
			label:   fmt.Sprintf("Slot %d", slot),
			value:   textOr(sheet.Label(c.Zord.Growth[slot]), "(open)"),
			note:    "one stat bump per slot",
			adjust: func(delta int) *character.StepInput {
				in := m.zordInput()
				next := cycleKey(growthStats, c.Zord.Growth[slot], delta)
				if next == "" {
					delete(in.Growth, slot)
				} else {
					in.Growth[slot] = next
				}
				return &character.StepInput{Zord: &in}
			},
		})
	}

	rows = append(rows, row{
		label: "Description",
		value: clip(textOr(c.Zord.Description, "-"), 40),
		edit: &editSpec{initial: c.Zord.Description, limit: essence20.MaxTextLength, commit: func(value string) *character.StepInput {
			in := m.zordInput()
			in.Description = value
			return &character.StepInput{Zord: &in}
		}},
	})
	return rows
}

// zordInput copies the current zord into a step submission so a single-field
// change keeps everything else.
func (m model) zordInput() character.StepZord {
	z := m.char.Zord
	in := character.StepZord{
		Name:            z.Name,
		FrameKey:        z.FrameKey,
		SpectrumFeature: z.SpectrumFeature,
		Features:        cloneStrings(z.Features),
		Description:     z.Description,
		Growth:          make(map[int]string, len(z.Growth)),
	}
	for k, v := range z.Growth {
		in.Growth[k] = v
	}
	return in
}

func frameNote(frame rulebook.ZordFrame, ok bool) string {
	if !ok {
		return ""
	}
	return fmt.Sprintf("health %d, power %d, speed %d, armor %d",
		frame.BaseHealth, frame.BasePower, frame.BaseSpeed, frame.BaseArmor)
}

func (m model) levelUpRows() []row {
	c := m.char
	if c.Level <= essence20.MinLevel {
		return []row{{
			label: "No level-up choices yet",
			note:  "raise Level on the Identity step first",
		}}
	}

	perkKeys := []string{""}
	perkNames := map[string]string{"": "(none)"}
	for _, perk := range m.rules.Perks() {
		perkKeys = append(perkKeys, perk.Key)
		perkNames[perk.Key] = perk.Name
	}
	skillKeys := []string{""}
	for _, skill := range essence20.Skills() {
		skillKeys = append(skillKeys, skill.Key)
	}

	var rows []row
	for level := essence20.MinLevel + 1; level <= c.Level; level++ {
		choice := c.Choices[level]
		section := fmt.Sprintf("Level %d", level)
		note := "pick a perk or a skill rank"
		if essence20.Milestone(level) {
			section += " (milestone)"
			note = "milestone levels grant a perk and a skill rank"
		}

		chosenSkill := ""
		for key := range choice.SkillRanks {
			chosenSkill = key
			break
		}

		rows = append(rows, row{
			section: section,
			label:   "Perk",
			value:   textOr(perkNames[choice.PerkKey], choice.PerkKey),
			note:    note,
			adjust: func(delta int) *character.StepInput {
				next := choice
				next.PerkKey = cycleKey(perkKeys, choice.PerkKey, delta)
				if next.PerkKey != "" && !essence20.Milestone(level) {
					next.SkillRanks = nil
				}
				return &character.StepInput{LevelUps: &character.StepLevelUps{Level: level, Choice: next}}
			},
		})
		rows = append(rows, row{
			label: "Skill Rank",
			value: skillName(chosenSkill),
			adjust: func(delta int) *character.StepInput {
				next := choice
				nextSkill := cycleKey(skillKeys, chosenSkill, delta)
				if nextSkill == "" {
					next.SkillRanks = nil
				} else {
					next.SkillRanks = map[string]int{nextSkill: 1}
					if !essence20.Milestone(level) {
						next.PerkKey = ""
					}
				}
				return &character.StepInput{LevelUps: &character.StepLevelUps{Level: level, Choice: next}}
			},
		})
	}
	return rows
}

func skillName(key string) string {
	if key == "" {
		return "(none)"
	}
	if skill, ok := essence20.SkillByKey(key); ok {
		return skill.Name
	}
	return key
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func hasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// toggleKey removes key when present, appends it when absent.
func toggleKey(keys []string, key string) []string {
	out := make([]string, 0, len(keys)+1)
	found := false
	for _, k := range keys {
		if k == key {
			found = true
			continue
		}
		out = append(out, k)
	}
	if !found {
		out = append(out, key)
	}
	return out
}

func cloneStrings(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

func clonePicks(picks []character.InfluencePick) []character.InfluencePick {
	out := make([]character.InfluencePick, len(picks))
	copy(out, picks)
	return out
}
