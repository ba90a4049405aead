// Package pdf fills a pre-authored sheet template with a character's
// resolved values. The template's own field names drive everything: values
// whose destination fields are missing from the template are skipped, so one
// mapping catalogue serves several template revisions.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
	"github.com/louisbranch/morphsheet/internal/sheet"
)

const fetchTimeout = 30 * time.Second

// Exporter writes filled sheet PDFs. One export runs at a time; a second
// call while one is in flight is refused rather than queued.
type Exporter struct {
	// Template is a filesystem path or an http(s) URL.
	Template string
	// OutDir receives the filled files. Empty means the working directory.
	OutDir string
	// Layout selects the embedded field catalogue. Empty means DefaultLayout.
	Layout string
	// Client overrides the HTTP client used for URL templates.
	Client *http.Client

	busy atomic.Bool
}

// Export fills the template with the sheet and writes
// <name>_PowerRangers.pdf into the output directory, returning the written
// path. No output file is left behind on failure.
func (e *Exporter) Export(ctx context.Context, s sheet.Sheet) (string, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return "", apperrors.New(apperrors.CodeExportInFlight, "an export is already running")
	}
	defer e.busy.Store(false)

	layout, err := LayoutByName(e.Layout)
	if err != nil {
		return "", err
	}
	template, err := e.fetchTemplate(ctx)
	if err != nil {
		return "", err
	}

	conf := fillConfiguration()
	present, err := presentFields(template, conf)
	if err != nil {
		return "", err
	}

	fills := newFillSet(present)
	writeBasicInfo(fills, layout, s)
	writeStats(fills, layout, s)
	writeSkills(fills, layout, s)
	writeAttacks(fills, layout, s)
	writeTextSections(fills, layout, s)
	writeZord(fills, layout, s)
	writeGearAndArmor(fills, layout, s)

	var filled bytes.Buffer
	if fills.empty() {
		// Nothing this template can accept. The unfilled template is
		// still a valid export.
		filled.Write(template)
	} else if err := fills.fill(template, &filled, conf); err != nil {
		return "", err
	}

	return e.writeFile(s.Name, filled.Bytes())
}

func (e *Exporter) fetchTemplate(ctx context.Context) ([]byte, error) {
	if e.Template == "" {
		return nil, apperrors.New(apperrors.CodeExportTemplateUnavailable, "no sheet template configured")
	}
	if strings.HasPrefix(e.Template, "http://") || strings.HasPrefix(e.Template, "https://") {
		return e.fetchURL(ctx)
	}
	raw, err := os.ReadFile(e.Template)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportTemplateUnavailable,
			"sheet template is unreadable", err)
	}
	return raw, nil
}

func (e *Exporter) fetchURL(ctx context.Context) ([]byte, error) {
	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.Template, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportTemplateUnavailable,
			"sheet template URL is invalid", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportTemplateUnavailable,
			"sheet template fetch failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.WithMetadata(apperrors.CodeExportTemplateUnavailable,
			fmt.Sprintf("sheet template fetch returned %s", resp.Status),
			map[string]string{"Status": strconv.Itoa(resp.StatusCode)})
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportTemplateUnavailable,
			"sheet template download was interrupted", err)
	}
	return raw, nil
}

func (e *Exporter) writeFile(characterName string, filled []byte) (string, error) {
	dir := e.OutDir
	if dir == "" {
		dir = "."
	}
	name := character.SanitizeFilename(characterName) + "_PowerRangers.pdf"
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".morphsheet-*.pdf")
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExportWriteFailed, "output directory is unwritable", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(filled); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", apperrors.Wrap(apperrors.CodeExportWriteFailed, "writing the sheet failed", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", apperrors.Wrap(apperrors.CodeExportWriteFailed, "writing the sheet failed", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", apperrors.Wrap(apperrors.CodeExportWriteFailed, "placing the sheet failed", err)
	}
	return path, nil
}

func fillConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func writeBasicInfo(f *fillSet, l Layout, s sheet.Sheet) {
	f.setText(l.TextCandidates("name"), s.Name)
	f.setText(l.TextCandidates("pronouns"), s.Pronouns)
	f.setText(l.TextCandidates("level"), strconv.Itoa(s.Level))
	f.setText(l.TextCandidates("origin"), s.Origin)
	f.setText(l.TextCandidates("role"), s.Role)
	f.setText(l.TextCandidates("influences"), strings.Join(s.Influences, ", "))
	f.setText(l.TextCandidates("concept"), s.Concept)
	f.setText(l.TextCandidates("description"), s.Description)
}

func writeStats(f *fillSet, l Layout, s sheet.Sheet) {
	for _, essence := range essence20.Essences() {
		f.setText(l.TextCandidates(string(essence)), strconv.Itoa(s.Essences[essence]))
		if defense, ok := essence20.DefenseFor(essence); ok {
			f.setText(l.TextCandidates(string(defense)), strconv.Itoa(s.Defenses[defense]))
		}
	}
	f.setText(l.TextCandidates("health"), strconv.Itoa(s.MaxHealth))
	f.setText(l.TextCandidates("power_capacity"), strconv.Itoa(s.PowerCapacity))
}

func writeSkills(f *fillSet, l Layout, s sheet.Sheet) {
	for _, row := range s.Skills {
		if row.Die != essence20.NoDie {
			f.setText(l.SkillDieCandidates(row.Name), row.Die)
		}
		boxes := row.Ranks
		if boxes > l.CheckboxMax {
			boxes = l.CheckboxMax
		}
		for n := 1; n <= boxes; n++ {
			f.check(l.SkillBoxCandidates(row.Prefix, n))
		}
	}
}

func writeAttacks(f *fillSet, l Layout, s sheet.Sheet) {
	slots := []string{"attack1", "attack2"}
	for i, attack := range s.Attacks {
		if i >= len(slots) {
			break
		}
		f.setText(l.TextCandidates(slots[i]+"_name"), attack.Name)
		f.setText(l.TextCandidates(slots[i]+"_die"), attack.SkillDie)
		f.setText(l.TextCandidates(slots[i]+"_damage"), attack.DamageDie)
	}
}

func writeTextSections(f *fillSet, l Layout, s sheet.Sheet) {
	f.setText(l.TextCandidates("perks"), s.ComposedPerks())
	f.setText(l.TextCandidates("grid_powers"), entryLines(s.GridPowers))
	f.setText(l.TextCandidates("bonds"), strings.Join(s.Bonds, "\n"))
	f.setText(l.TextCandidates("hang_ups"), entryLines(s.HangUps))
	f.setText(l.TextCandidates("specialties"), strings.Join(s.Specialties, "\n"))
}

func writeZord(f *fillSet, l Layout, s sheet.Sheet) {
	f.setText(l.TextCandidates("zord_name"), s.Zord.Name)
	f.setText(l.TextCandidates("zord_frame"), s.Zord.Frame)
	if s.Zord.Frame != "" {
		f.setText(l.TextCandidates("zord_health"), strconv.Itoa(s.Zord.Health))
		f.setText(l.TextCandidates("zord_power"), strconv.Itoa(s.Zord.Power))
		f.setText(l.TextCandidates("zord_speed"), strconv.Itoa(s.Zord.Speed))
		f.setText(l.TextCandidates("zord_armor"), strconv.Itoa(s.Zord.Armor))
	}
	var lines []string
	if s.Zord.SpectrumFeature != "" {
		lines = append(lines, "Spectrum: "+s.Zord.SpectrumFeature)
	}
	lines = append(lines, s.Zord.Features...)
	f.setText(l.TextCandidates("zord_features"), strings.Join(lines, "\n"))
}

func writeGearAndArmor(f *fillSet, l Layout, s sheet.Sheet) {
	lines := make([]string, 0, len(s.Gear))
	for _, row := range s.Gear {
		line := row.Name
		if row.DamageDie != "" {
			line += " (" + row.DamageDie + ")"
		}
		if row.Notes != "" {
			line += " - " + row.Notes
		}
		lines = append(lines, line)
	}
	f.setText(l.TextCandidates("gear"), strings.Join(lines, "\n"))
	f.setText(l.TextCandidates("armor_training"), s.ArmorLabel())
}

func entryLines(entries []sheet.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.Line())
	}
	return strings.Join(lines, "\n")
}
