package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/morphsheet/internal/app/wizard"
	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/export/html"
	"github.com/louisbranch/morphsheet/internal/export/pdf"
	"github.com/louisbranch/morphsheet/internal/export/text"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
	"github.com/louisbranch/morphsheet/internal/sheet"
	"github.com/louisbranch/morphsheet/internal/storage"
)

// runNew saves a fresh character and prints its id.
func (a *app) runNew(ctx context.Context) error {
	c, err := character.New()
	if err != nil {
		return err
	}
	if err := a.saveCharacter(ctx, c); err != nil {
		return err
	}
	fmt.Fprintln(a.out, c.ID)
	return nil
}

// runList prints every saved character, most recently updated first.
func (a *app) runList(ctx context.Context) error {
	snaps, err := a.store.ListSnapshots(ctx)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(a.out, "No saved characters.")
		return nil
	}
	for _, snap := range snaps {
		name := snap.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(a.out, "%s  L%-2d  %-24s  %s\n",
			snap.ID, snap.Level, name, snap.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// runShow renders a saved character as the plain-text sheet.
func (a *app) runShow(ctx context.Context) error {
	c, err := a.loadCharacter(ctx)
	if err != nil {
		return err
	}
	s := sheet.Build(c, a.rules)
	fmt.Fprint(a.out, text.Render(s))
	return nil
}

// runApply reads one creation-step input as JSON and applies it.
func (a *app) runApply(ctx context.Context) error {
	c, err := a.loadCharacter(ctx)
	if err != nil {
		return err
	}
	raw, err := a.readStepInput(a.arg(1))
	if err != nil {
		return err
	}

	var in character.StepInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return apperrors.Wrap(apperrors.CodeCharacterInvalidStep, "decode step input", err)
	}
	if err := in.Apply(c, a.rules); err != nil {
		return err
	}
	c.Touch()
	if err := a.saveCharacter(ctx, c); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Applied step to %s\n", c.ID)
	return nil
}

// runExport writes the sheet in the configured format and prints the path.
func (a *app) runExport(ctx context.Context) error {
	c, err := a.loadCharacter(ctx)
	if err != nil {
		return err
	}
	s := sheet.Build(c, a.rules)

	var path string
	switch a.cfg.Format {
	case "", "pdf":
		exporter := &pdf.Exporter{
			Template: a.cfg.Template,
			OutDir:   a.cfg.OutDir,
			Layout:   a.cfg.Layout,
		}
		path, err = exporter.Export(ctx, s)
	case "text":
		path, err = a.writeTextExport(s)
	case "html":
		path, err = html.Export(s, a.cfg.OutDir)
	default:
		return fmt.Errorf("unknown export format %q (expected pdf, text, or html)", a.cfg.Format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s\n", path)
	return nil
}

// runCopy places the plain-text sheet on the system clipboard.
func (a *app) runCopy(ctx context.Context) error {
	c, err := a.loadCharacter(ctx)
	if err != nil {
		return err
	}
	s := sheet.Build(c, a.rules)
	if err := text.Copy(s); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Copied %s to the clipboard\n", displayName(s.Name))
	return nil
}

// runDelete removes a saved character.
func (a *app) runDelete(ctx context.Context) error {
	id, err := a.requireID()
	if err != nil {
		return err
	}
	if err := a.store.DeleteSnapshot(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

// runWizard starts the interactive terminal wizard. With an id argument it
// resumes that character; unreadable stored data degrades to a fresh sheet
// under the same id.
func (a *app) runWizard(ctx context.Context) error {
	def, err := character.New()
	if err != nil {
		return err
	}
	c := def
	degraded := false
	if id := strings.TrimSpace(a.arg(0)); id != "" {
		c, degraded = storage.LoadCharacterOrDefault(ctx, a.store, id, def)
		c.ID = id
	}

	saver := storage.NewAutosaver(a.store, a.cfg.AutosaveDelay())
	defer saver.Close()

	return wizard.Run(ctx, wizard.Options{
		Character: c,
		Rules:     a.rules,
		Saver:     saver,
		Exporter: &pdf.Exporter{
			Template: a.cfg.Template,
			OutDir:   a.cfg.OutDir,
			Layout:   a.cfg.Layout,
		},
		OutDir:   a.cfg.OutDir,
		Degraded: degraded,
	})
}

func (a *app) requireID() (string, error) {
	id := strings.TrimSpace(a.arg(0))
	if id == "" {
		return "", errors.New("character id is required")
	}
	return id, nil
}

func (a *app) loadCharacter(ctx context.Context) (*character.Character, error) {
	id, err := a.requireID()
	if err != nil {
		return nil, err
	}
	snap, err := a.store.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return character.Decode(snap.Data)
}

func (a *app) saveCharacter(ctx context.Context, c *character.Character) error {
	snap, err := storage.SnapshotOf(c)
	if err != nil {
		return err
	}
	return a.store.SaveSnapshot(ctx, snap)
}

// readStepInput reads the apply payload from a file, or from stdin when the
// path is empty or "-".
func (a *app) readStepInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(a.in)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read step input: %w", err)
	}
	return raw, nil
}

func (a *app) writeTextExport(s sheet.Sheet) (string, error) {
	dir := a.cfg.OutDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, character.SanitizeFilename(s.Name)+"_PowerRangers.txt")
	if err := os.WriteFile(path, []byte(text.Render(s)), 0o644); err != nil {
		return "", apperrors.Wrap(apperrors.CodeExportWriteFailed, "writing the sheet failed", err)
	}
	return path, nil
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return character.FallbackFilename
	}
	return name
}
