package wizard

import (
	"fmt"
	"strings"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
	"github.com/louisbranch/morphsheet/internal/sheet"
)

func (m model) View() string {
	s := sheet.Build(m.char, m.rules)

	var b strings.Builder
	b.WriteString(titleStyle.Render("MORPHSHEET") + "  " +
		noteStyle.Render("Power Rangers character builder") + "\n")
	b.WriteString(noteStyle.Render(summaryLine(s)) + "\n")
	b.WriteString(rule() + "\n")
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Step %d/%d: %s",
		m.step, character.StepCount, stepTitle(m.step))) + "\n\n")

	rows := m.rows()
	cursor := m.cursor
	if len(rows) > 0 && cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	for i, r := range rows {
		if r.section != "" {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(sectionStyle.Render(r.section) + "\n")
		}
		marker := "  "
		style := normalStyle
		if i == cursor && !m.editing {
			marker = "> "
			style = selectedStyle
		}
		line := r.label
		if r.value != "" {
			line = fmt.Sprintf("%-18s %s", r.label, r.value)
		}
		b.WriteString(marker + style.Render(line))
		if r.note != "" {
			b.WriteString("  " + noteStyle.Render(r.note))
		}
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString("\n" + m.input.View() + "\n")
		b.WriteString(helpStyle.Render("enter save  esc cancel") + "\n")
	}

	b.WriteString("\n" + rule() + "\n")
	b.WriteString(helpStyle.Render("up/down move  left/right change  space toggle  enter edit  tab/shift+tab step  e pdf  h html  c copy  q quit") + "\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	return b.String()
}

// summaryLine compresses the derived sheet into one header row so every edit
// shows its effect immediately.
func summaryLine(s sheet.Sheet) string {
	parts := []string{
		textOr(s.Name, "Unnamed Ranger"),
		fmt.Sprintf("Level %d", s.Level),
		fmt.Sprintf("Health %d", s.MaxHealth),
		fmt.Sprintf("Power %d", s.PowerCapacity),
	}
	for _, ess := range essence20.Essences() {
		defense, ok := essence20.DefenseFor(ess)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", sheet.Label(string(defense)), s.Defenses[defense]))
	}
	return strings.Join(parts, "  ")
}

func stepTitle(step int) string {
	switch step {
	case character.StepIdentityNum:
		return "Identity"
	case character.StepOriginNum:
		return "Origin"
	case character.StepRoleNum:
		return "Role"
	case character.StepEssencesNum:
		return "Essences"
	case character.StepSkillsNum:
		return "Skills"
	case character.StepInfluencesNum:
		return "Influences"
	case character.StepUnlocksNum:
		return "Powers & Perks"
	case character.StepGearNum:
		return "Gear"
	case character.StepZordNum:
		return "Zord"
	case character.StepLevelUpsNum:
		return "Level-Ups"
	}
	return ""
}

func rule() string {
	return helpStyle.Render(strings.Repeat("-", 72))
}
