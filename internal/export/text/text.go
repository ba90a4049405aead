// Package text renders a resolved sheet as plain text for pasting into
// session notes or chat, and copies it to the system clipboard.
package text

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/louisbranch/morphsheet/internal/essence20"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
	"github.com/louisbranch/morphsheet/internal/sheet"
)

// Render produces the text sheet. Sections follow the same order the PDF
// export fills its pages, and the output is deterministic for a given sheet.
func Render(s sheet.Sheet) string {
	var b strings.Builder

	writeHeader(&b, s)
	writeStats(&b, s)
	writeSkills(&b, s)
	writeAttacks(&b, s)
	writePerks(&b, s)
	writeLists(&b, s)
	writeZord(&b, s)
	writeGear(&b, s)
	writePools(&b, s)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Copy writes the rendering to the system clipboard.
func Copy(s sheet.Sheet) error {
	if clipboard.Unsupported {
		return apperrors.New(apperrors.CodeExportClipboardUnavailable,
			"no system clipboard is available")
	}
	if err := clipboard.WriteAll(Render(s)); err != nil {
		return apperrors.Wrap(apperrors.CodeExportClipboardUnavailable,
			"clipboard write failed", err)
	}
	return nil
}

func writeHeader(b *strings.Builder, s sheet.Sheet) {
	name := s.Name
	if name == "" {
		name = "Unnamed Ranger"
	}
	if s.Pronouns != "" {
		fmt.Fprintf(b, "%s (%s)\n", name, s.Pronouns)
	} else {
		fmt.Fprintln(b, name)
	}

	line := fmt.Sprintf("Level %d", s.Level)
	if s.Origin != "" {
		line += " " + s.Origin
	}
	if s.Role != "" {
		line += " " + s.Role
	}
	fmt.Fprintln(b, line)

	if len(s.Influences) > 0 {
		fmt.Fprintf(b, "Influences: %s\n", strings.Join(s.Influences, ", "))
	}
	if s.Concept != "" {
		fmt.Fprintf(b, "Concept: %s\n", s.Concept)
	}
	if s.Description != "" {
		fmt.Fprintf(b, "Description: %s\n", s.Description)
	}
	fmt.Fprintln(b)
}

func writeStats(b *strings.Builder, s sheet.Sheet) {
	fmt.Fprintln(b, "Essences")
	for _, essence := range essence20.Essences() {
		line := fmt.Sprintf("  %s %d", sheet.Label(string(essence)), s.Essences[essence])
		if defense, ok := essence20.DefenseFor(essence); ok {
			line += fmt.Sprintf(" (%s %d)", sheet.Label(string(defense)), s.Defenses[defense])
		}
		fmt.Fprintln(b, line)
	}
	fmt.Fprintf(b, "Max Health: %d\n", s.MaxHealth)
	fmt.Fprintf(b, "Personal Power: %d\n", s.PowerCapacity)
	fmt.Fprintf(b, "Armor Training: %s\n", s.ArmorLabel())
	fmt.Fprintln(b)
}

func writeSkills(b *strings.Builder, s sheet.Sheet) {
	var trained []sheet.SkillRow
	for _, row := range s.Skills {
		if row.Ranks > 0 {
			trained = append(trained, row)
		}
	}
	if len(trained) == 0 {
		return
	}
	fmt.Fprintln(b, "Skills")
	for _, row := range trained {
		line := fmt.Sprintf("  %s [%s]: %s", row.Name, sheet.Label(string(row.Essence)), row.Die)
		if row.Specialization != "" {
			line += ", specialization " + row.Specialization
		}
		fmt.Fprintln(b, line)
	}
	fmt.Fprintln(b)
}

func writeAttacks(b *strings.Builder, s sheet.Sheet) {
	if len(s.Attacks) == 0 {
		return
	}
	fmt.Fprintln(b, "Attacks")
	for _, attack := range s.Attacks {
		fmt.Fprintf(b, "  %s: %s %s, damage %s\n", attack.Name, attack.Skill, attack.SkillDie, attack.DamageDie)
	}
	fmt.Fprintln(b)
}

func writePerks(b *strings.Builder, s sheet.Sheet) {
	if len(s.PerkGroups) == 0 {
		return
	}
	fmt.Fprintln(b, "Perks")
	fmt.Fprintln(b, s.ComposedPerks())
	fmt.Fprintln(b)
}

func writeLists(b *strings.Builder, s sheet.Sheet) {
	if len(s.GridPowers) > 0 {
		fmt.Fprintf(b, "Grid Powers (%d of %d)\n", len(s.GridPowers), s.PowerCapacity)
		for _, power := range s.GridPowers {
			fmt.Fprintf(b, "  %s\n", power.Line())
		}
		fmt.Fprintln(b)
	}
	writeBullets(b, "Specialties", s.Specialties)
	writeBullets(b, "Bonds", s.Bonds)
	if len(s.HangUps) > 0 {
		fmt.Fprintln(b, "Hang-Ups")
		for _, h := range s.HangUps {
			fmt.Fprintf(b, "  %s\n", h.Line())
		}
		fmt.Fprintln(b)
	}
}

func writeBullets(b *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(b, header)
	for _, item := range items {
		fmt.Fprintf(b, "  %s\n", item)
	}
	fmt.Fprintln(b)
}

func writeZord(b *strings.Builder, s sheet.Sheet) {
	z := s.Zord
	if z.Name == "" && z.Frame == "" {
		return
	}
	fmt.Fprintln(b, "Zord")
	switch {
	case z.Name != "" && z.Frame != "":
		fmt.Fprintf(b, "  %s (%s)\n", z.Name, z.Frame)
	case z.Name != "":
		fmt.Fprintf(b, "  %s\n", z.Name)
	default:
		fmt.Fprintf(b, "  %s\n", z.Frame)
	}
	if z.Frame != "" {
		fmt.Fprintf(b, "  Health %d, Power %d, Speed %d, Armor %d\n", z.Health, z.Power, z.Speed, z.Armor)
	}
	if z.SpectrumFeature != "" {
		fmt.Fprintf(b, "  Spectrum: %s\n", z.SpectrumFeature)
	}
	for _, feature := range z.Features {
		fmt.Fprintf(b, "  %s\n", feature)
	}
	if z.Description != "" {
		fmt.Fprintf(b, "  %s\n", z.Description)
	}
	fmt.Fprintln(b)
}

func writeGear(b *strings.Builder, s sheet.Sheet) {
	if len(s.Gear) == 0 {
		return
	}
	fmt.Fprintln(b, "Gear")
	for _, row := range s.Gear {
		line := "  " + row.Name
		if row.DamageDie != "" {
			line += " (" + row.DamageDie + ")"
		}
		if row.Notes != "" {
			line += ": " + row.Notes
		}
		fmt.Fprintln(b, line)
	}
	fmt.Fprintln(b)
}

func writePools(b *strings.Builder, s sheet.Sheet) {
	var parts []string
	add := func(label string, value *int) {
		if value != nil {
			parts = append(parts, fmt.Sprintf("%s %d", label, *value))
		}
	}
	add("Health", s.Pools.Health)
	add("Power", s.Pools.Power)
	add("Idea Points", s.Pools.IdeaPoints)
	add("Quips", s.Pools.Quips)
	add("Zord Health", s.Pools.ZordHealth)
	if len(parts) == 0 {
		return
	}
	fmt.Fprintf(b, "Current Pools: %s\n", strings.Join(parts, ", "))
}
