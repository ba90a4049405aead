package text

import (
	"strings"
	"testing"

	"github.com/atotto/clipboard"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
	"github.com/louisbranch/morphsheet/internal/sheet"
)

func builtSheet(t *testing.T) sheet.Sheet {
	t.Helper()
	rb, err := rulebook.Default()
	if err != nil {
		t.Fatalf("load rulebook: %v", err)
	}

	c := character.New()
	c.Name = "Trini Kwan"
	c.Pronouns = "she/her"
	c.Level = 5
	c.OriginKey = "human"
	c.RoleKey = "yellow"
	c.Essences = map[essence20.Essence]int{
		essence20.EssenceStrength: 2,
		essence20.EssenceSpeed:    4,
		essence20.EssenceSmarts:   2,
		essence20.EssenceSocial:   2,
	}
	c.SkillRanks = map[string]int{"targeting": 2}
	c.Equipment = map[string]string{rulebook.SlotSidearm: "blade-blaster"}
	c.Zord = character.Zord{Name: "Sabera", FrameKey: "sabre"}
	return sheet.Build(c, rb)
}

func TestRenderDeterministic(t *testing.T) {
	s := builtSheet(t)
	if Render(s) != Render(s) {
		t.Fatal("two renders of the same sheet differ")
	}
}

func TestRenderSections(t *testing.T) {
	out := Render(builtSheet(t))

	wantLines := []string{
		"Trini Kwan (she/her)",
		"Level 5 Human Yellow Ranger",
		"Essences",
		"  Speed 5 (Evasion 15)",
		"Max Health: 3",
		"Armor Training: Light (+1)",
		"Skills",
		"Attacks",
		"  Blade Blaster: Targeting d6, damage d4",
		"Zord",
		"  Sabera (Sabre Frame)",
		"Gear",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("missing line %q in:\n%s", line, out)
		}
	}
}

func TestRenderSectionOrder(t *testing.T) {
	out := Render(builtSheet(t))

	order := []string{"Essences", "Skills", "Attacks", "Perks", "Zord", "Gear"}
	last := -1
	for _, header := range order {
		idx := strings.Index(out, header+"\n")
		if idx < 0 {
			t.Fatalf("missing section %q", header)
		}
		if idx < last {
			t.Fatalf("section %q out of order", header)
		}
		last = idx
	}
}

func TestRenderOmitsUntrainedSkills(t *testing.T) {
	out := Render(builtSheet(t))

	if strings.Contains(out, "Culture") {
		t.Fatal("untrained skill rendered")
	}
	// Targeting: 2 raw + 1 yellow starting ranks.
	if !strings.Contains(out, "Targeting [Speed]: d6") {
		t.Fatalf("trained skill missing:\n%s", out)
	}
}

func TestRenderPools(t *testing.T) {
	s := builtSheet(t)
	health := 3
	s.Pools.Health = &health

	out := Render(s)
	if !strings.Contains(out, "Current Pools: Health 3") {
		t.Fatalf("pools missing:\n%s", out)
	}

	s.Pools.Health = nil
	if strings.Contains(Render(s), "Current Pools") {
		t.Fatal("empty pools rendered")
	}
}

func TestCopyUnsupportedClipboard(t *testing.T) {
	was := clipboard.Unsupported
	clipboard.Unsupported = true
	t.Cleanup(func() { clipboard.Unsupported = was })

	err := Copy(builtSheet(t))
	if !apperrors.Is(err, apperrors.CodeExportClipboardUnavailable) {
		t.Fatalf("expected clipboard-unavailable error, got %v", err)
	}
}
