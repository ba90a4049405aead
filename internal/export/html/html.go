// Package html writes a self-contained HTML rendering of a sheet. The
// template is plain text; every free-text value is pushed through the markup
// escaper explicitly, so the escape set stays the five characters the
// sanitizer promises.
package html

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
	"github.com/louisbranch/morphsheet/internal/sheet"
)

//go:embed sheet.html.tmpl
var templateFS embed.FS

var sheetTemplate = template.Must(template.New("sheet.html.tmpl").
	Funcs(template.FuncMap{
		"esc": character.EscapeMarkup,
		"label": func(v any) string {
			return sheet.Label(fmt.Sprint(v))
		},
	}).
	ParseFS(templateFS, "sheet.html.tmpl"))

// view wraps the sheet with the iteration helpers the template needs.
type view struct {
	sheet.Sheet
}

func (v view) EssenceRows() []essenceRow {
	rows := make([]essenceRow, 0, 4)
	for _, essence := range essence20.Essences() {
		row := essenceRow{Essence: string(essence), Score: v.Essences[essence]}
		if defense, ok := essence20.DefenseFor(essence); ok {
			row.Defense = string(defense)
			row.DefenseValue = v.Defenses[defense]
		}
		rows = append(rows, row)
	}
	return rows
}

func (v view) TrainedSkills() []sheet.SkillRow {
	var rows []sheet.SkillRow
	for _, row := range v.Skills {
		if row.Ranks > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

func (v view) HasZord() bool {
	return v.Zord.Name != "" || v.Zord.Frame != ""
}

type essenceRow struct {
	Essence      string
	Score        int
	Defense      string
	DefenseValue int
}

// Render executes the sheet template.
func Render(s sheet.Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := sheetTemplate.Execute(&buf, view{Sheet: s}); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportWriteFailed, "sheet template failed", err)
	}
	return buf.Bytes(), nil
}

// Export writes <name>_PowerRangers.html into dir and returns the written
// path. No output file is left behind on failure.
func Export(s sheet.Sheet, dir string) (string, error) {
	rendered, err := Render(s)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, character.SanitizeFilename(s.Name)+"_PowerRangers.html")

	tmp, err := os.CreateTemp(dir, ".morphsheet-*.html")
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeExportWriteFailed, "output directory is unwritable", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(rendered); err != nil {
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
