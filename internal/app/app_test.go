package app

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atotto/clipboard"

	"github.com/louisbranch/morphsheet/internal/character"
	"github.com/louisbranch/morphsheet/internal/essence20/rulebook"
	"github.com/louisbranch/morphsheet/internal/export/text"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
	"github.com/louisbranch/morphsheet/internal/sheet"
	"github.com/louisbranch/morphsheet/internal/storage"
)

// memStore is an in-memory Store with the same contract as the sqlite
// store: ListSnapshots orders by most recent update, and missing ids
// surface as snapshot-not-found errors.
type memStore struct {
	mu    sync.Mutex
	snaps map[string]storage.Snapshot
}

func newMemStore() *memStore {
	return &memStore{snaps: map[string]storage.Snapshot{}}
}

func (m *memStore) SaveSnapshot(_ context.Context, snap storage.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.ID] = snap
	return nil
}

func (m *memStore) LoadSnapshot(_ context.Context, id string) (storage.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	if !ok {
		return storage.Snapshot{}, apperrors.WithMetadata(apperrors.CodeSnapshotNotFound,
			"snapshot not found", map[string]string{"ID": id})
	}
	return snap, nil
}

func (m *memStore) ListSnapshots(context.Context) ([]storage.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.Snapshot, 0, len(m.snaps))
	for _, snap := range m.snaps {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memStore) DeleteSnapshot(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snaps[id]; !ok {
		return apperrors.WithMetadata(apperrors.CodeSnapshotNotFound,
			"snapshot not found", map[string]string{"ID": id})
	}
	delete(m.snaps, id)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

func (m *memStore) get(t *testing.T, id string) storage.Snapshot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	if !ok {
		t.Fatalf("snapshot %s not in store", id)
	}
	return snap
}

func loadRules(t *testing.T) *rulebook.Rulebook {
	t.Helper()
	rb, err := rulebook.Default()
	if err != nil {
		t.Fatalf("load rulebook: %v", err)
	}
	return rb
}

func newTestApp(t *testing.T, store storage.Store, cfg Config) (*app, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &app{
		cfg:    cfg,
		rules:  loadRules(t),
		store:  store,
		in:     strings.NewReader(""),
		out:    out,
		errOut: io.Discard,
	}, out
}

func seedCharacter(t *testing.T, store storage.Store, mutate func(c *character.Character)) *character.Character {
	t.Helper()
	c, err := character.New()
	if err != nil {
		t.Fatalf("new character: %v", err)
	}
	if mutate != nil {
		mutate(c)
	}
	snap, err := storage.SnapshotOf(c)
	if err != nil {
		t.Fatalf("snapshot character: %v", err)
	}
	if err := store.SaveSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return c
}

func TestRunNewPrintsIDAndSaves(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	a, out := newTestApp(t, store, Config{Command: "new"})

	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run new: %v", err)
	}
	id := strings.TrimSpace(out.String())
	if id == "" {
		t.Fatal("expected the new character id on stdout")
	}
	snap := store.get(t, id)
	c, err := character.Decode(snap.Data)
	if err != nil {
		t.Fatalf("decode stored character: %v", err)
	}
	if c.Level != 1 {
		t.Fatalf("new character level = %d, want 1", c.Level)
	}
}

func TestRunListEmpty(t *testing.T) {
	t.Parallel()

	a, out := newTestApp(t, newMemStore(), Config{Command: "list"})
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run list: %v", err)
	}
	if got := out.String(); got != "No saved characters.\n" {
		t.Fatalf("list output = %q", got)
	}
}

func TestRunListOrdersByUpdateAndLabelsUnnamed(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	seedCharacter(t, store, func(c *character.Character) {
		c.Name = "Jade Unger"
		c.Level = 3
		c.UpdatedAt = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	})
	seedCharacter(t, store, func(c *character.Character) {
		c.UpdatedAt = time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	})

	a, out := newTestApp(t, store, Config{Command: "list"})
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run list: %v", err)
	}
	got := out.String()
	named := strings.Index(got, "Jade Unger")
	unnamed := strings.Index(got, "(unnamed)")
	if named < 0 || unnamed < 0 {
		t.Fatalf("list output missing rows:\n%s", got)
	}
	if named > unnamed {
		t.Fatalf("expected the most recently updated character first:\n%s", got)
	}
	if !strings.Contains(got, "L3") {
		t.Fatalf("list output missing level column:\n%s", got)
	}
	if !strings.Contains(got, "2026-03-01 10:30") {
		t.Fatalf("list output missing update timestamp:\n%s", got)
	}
}

func TestRunShowRendersTextSheet(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, func(c *character.Character) {
		c.Name = "Jade Unger"
	})

	a, out := newTestApp(t, store, Config{Command: "show", Args: []string{c.ID}})
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run show: %v", err)
	}
	want := text.Render(sheet.Build(c, a.rules))
	if out.String() != want {
		t.Fatalf("show output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunShowRequiresID(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, newMemStore(), Config{Command: "show"})
	err := a.run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "character id is required") {
		t.Fatalf("show without id = %v, want missing-id error", err)
	}
}

func TestRunShowMissingCharacter(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, newMemStore(), Config{Command: "show", Args: []string{"chr-missing"}})
	err := a.run(context.Background())
	if !apperrors.Is(err, apperrors.CodeSnapshotNotFound) {
		t.Fatalf("show of missing id = %v, want %s", err, apperrors.CodeSnapshotNotFound)
	}
}

func TestRunApplyReadsStdin(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, nil)

	a, out := newTestApp(t, store, Config{Command: "apply", Args: []string{c.ID}})
	a.in = strings.NewReader(`{"identity":{"name":"Jade Unger","level":2}}`)

	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run apply: %v", err)
	}
	if !strings.Contains(out.String(), "Applied step to "+c.ID) {
		t.Fatalf("apply output = %q", out.String())
	}
	stored, err := character.Decode(store.get(t, c.ID).Data)
	if err != nil {
		t.Fatalf("decode stored character: %v", err)
	}
	if stored.Name != "Jade Unger" || stored.Level != 2 {
		t.Fatalf("stored character = %q level %d, want Jade Unger level 2", stored.Name, stored.Level)
	}
}

func TestRunApplyReadsFile(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, nil)

	path := filepath.Join(t.TempDir(), "step.json")
	payload := `{"origin":{"origin":"human","essence_choice":"speed"}}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write step file: %v", err)
	}

	a, _ := newTestApp(t, store, Config{Command: "apply", Args: []string{c.ID, path}})
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run apply: %v", err)
	}
	stored, err := character.Decode(store.get(t, c.ID).Data)
	if err != nil {
		t.Fatalf("decode stored character: %v", err)
	}
	if stored.OriginKey != "human" {
		t.Fatalf("stored origin = %q, want human", stored.OriginKey)
	}
}

func TestRunApplyRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, nil)

	a, _ := newTestApp(t, store, Config{Command: "apply", Args: []string{c.ID}})
	a.in = strings.NewReader(`{not json`)

	err := a.run(context.Background())
	if !apperrors.Is(err, apperrors.CodeCharacterInvalidStep) {
		t.Fatalf("apply of malformed input = %v, want %s", err, apperrors.CodeCharacterInvalidStep)
	}
}

func TestRunApplyValidationFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, nil)
	before := store.get(t, c.ID)

	a, _ := newTestApp(t, store, Config{Command: "apply", Args: []string{c.ID}})
	a.in = strings.NewReader(`{"identity":{"name":"","level":1}}`)

	err := a.run(context.Background())
	if !apperrors.Is(err, apperrors.CodeCharacterEmptyName) {
		t.Fatalf("apply with empty name = %v, want %s", err, apperrors.CodeCharacterEmptyName)
	}
	after := store.get(t, c.ID)
	if !bytes.Equal(before.Data, after.Data) {
		t.Fatal("rejected step must not change the stored snapshot")
	}
}

func TestRunExportTextWritesSheetFile(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, func(c *character.Character) {
		c.Name = "Jade Unger"
	})

	dir := t.TempDir()
	a, out := newTestApp(t, store, Config{Command: "export", Format: "text", OutDir: dir, Args: []string{c.ID}})
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run export: %v", err)
	}
	path := strings.TrimSpace(strings.TrimPrefix(out.String(), "Wrote "))
	if filepath.Base(path) != "Jade_Unger_PowerRangers.txt" {
		t.Fatalf("export path = %q, want Jade_Unger_PowerRangers.txt in out dir", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported sheet: %v", err)
	}
	want := text.Render(sheet.Build(c, a.rules))
	if string(data) != want {
		t.Fatalf("exported sheet:\n%s\nwant:\n%s", data, want)
	}
}

func TestRunExportHTMLWritesFile(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, func(c *character.Character) {
		c.Name = "Jade Unger"
	})

	dir := t.TempDir()
	a, out := newTestApp(t, store, Config{Command: "export", Format: "html", OutDir: dir, Args: []string{c.ID}})
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run export: %v", err)
	}
	path := strings.TrimSpace(strings.TrimPrefix(out.String(), "Wrote "))
	if filepath.Base(path) != "Jade_Unger_PowerRangers.html" {
		t.Fatalf("export path = %q, want Jade_Unger_PowerRangers.html in out dir", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, nil)

	a, _ := newTestApp(t, store, Config{Command: "export", Format: "docx", Args: []string{c.ID}})
	err := a.run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unknown export format") {
		t.Fatalf("export with bad format = %v, want unknown-format error", err)
	}
}

func TestRunDeleteRemovesSnapshot(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	c := seedCharacter(t, store, nil)

	a, out := newTestApp(t, store, Config{Command: "delete", Args: []string{c.ID}})
	if err := a.run(context.Background()); err != nil {
		t.Fatalf("run delete: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted "+c.ID) {
		t.Fatalf("delete output = %q", out.String())
	}
	if store.count() != 0 {
		t.Fatalf("store still holds %d snapshots after delete", store.count())
	}

	err := a.run(context.Background())
	if !apperrors.Is(err, apperrors.CodeSnapshotNotFound) {
		t.Fatalf("second delete = %v, want %s", err, apperrors.CodeSnapshotNotFound)
	}
}

func TestRunCopyWithoutClipboard(t *testing.T) {
	was := clipboard.Unsupported
	clipboard.Unsupported = true
	t.Cleanup(func() { clipboard.Unsupported = was })

	store := newMemStore()
	c := seedCharacter(t, store, nil)

	a, _ := newTestApp(t, store, Config{Command: "copy", Args: []string{c.ID}})
	err := a.run(context.Background())
	if !apperrors.Is(err, apperrors.CodeExportClipboardUnavailable) {
		t.Fatalf("copy without clipboard = %v, want %s", err, apperrors.CodeExportClipboardUnavailable)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, newMemStore(), Config{Command: "frobnicate"})
	err := a.run(context.Background())
	if err == nil || !strings.Contains(err.Error(), `unknown command "frobnicate"`) {
		t.Fatalf("unknown command = %v", err)
	}
}

func TestRunOpensStoreAndDispatches(t *testing.T) {
	t.Parallel()

	cfg := Config{
		DBPath:  filepath.Join(t.TempDir(), "morphsheet.db"),
		Command: "list",
	}
	out := &bytes.Buffer{}
	if err := Run(context.Background(), cfg, out, io.Discard); err != nil {
		t.Fatalf("run list against a fresh database: %v", err)
	}
	if got := out.String(); got != "No saved characters.\n" {
		t.Fatalf("list output = %q", got)
	}
}

func TestOpenStoreCreatesParentDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "data", "morphsheet.db")
	store, err := openStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("parent directory missing: %v", err)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("MORPHSHEET_DB_PATH", "")
	os.Unsetenv("MORPHSHEET_DB_PATH")
	t.Setenv("MORPHSHEET_AUTOSAVE_MS", "")
	os.Unsetenv("MORPHSHEET_AUTOSAVE_MS")

	fs := flag.NewFlagSet("morphsheet", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "morphsheet.db" {
		t.Fatalf("default db path = %q, want morphsheet.db", cfg.DBPath)
	}
	if cfg.AutosaveMS != 800 {
		t.Fatalf("default autosave window = %d, want 800", cfg.AutosaveMS)
	}
	if cfg.Format != "pdf" {
		t.Fatalf("default format = %q, want pdf", cfg.Format)
	}
	if cfg.Command != "" {
		t.Fatalf("command = %q, want empty", cfg.Command)
	}
}

func TestParseConfigFlagsWinOverEnv(t *testing.T) {
	t.Setenv("MORPHSHEET_DB_PATH", "env.db")

	fs := flag.NewFlagSet("morphsheet", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db", "flag.db", "-format", "html", "show", "chr-1"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("db path = %q, want flag.db", cfg.DBPath)
	}
	if cfg.Format != "html" {
		t.Fatalf("format = %q, want html", cfg.Format)
	}
	if cfg.Command != "show" {
		t.Fatalf("command = %q, want show", cfg.Command)
	}
	if len(cfg.Args) != 1 || cfg.Args[0] != "chr-1" {
		t.Fatalf("args = %v, want [chr-1]", cfg.Args)
	}
}

func TestParseConfigEnvApplies(t *testing.T) {
	t.Setenv("MORPHSHEET_DB_PATH", "from-env.db")

	fs := flag.NewFlagSet("morphsheet", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "from-env.db" {
		t.Fatalf("db path = %q, want from-env.db", cfg.DBPath)
	}
}

func TestAutosaveDelay(t *testing.T) {
	t.Parallel()

	if got := (Config{AutosaveMS: 250}).AutosaveDelay(); got != 250*time.Millisecond {
		t.Fatalf("autosave delay = %v, want 250ms", got)
	}
}
