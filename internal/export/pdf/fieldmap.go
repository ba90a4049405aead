package pdf

import (
	"embed"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
)

//go:embed layouts/*.yaml
var layoutFS embed.FS

// DefaultLayout is used when no layout is configured.
const DefaultLayout = "renegade"

// Layout names the form fields of one family of sheet templates. Every
// semantic value maps to a list of candidate field names because templates
// drift between revisions: the first candidate present in the document wins,
// and a value with no present candidate is skipped.
type Layout struct {
	Name string `yaml:"name"`

	// Text maps semantic keys (see the write stages) to candidate text
	// field names.
	Text map[string][]string `yaml:"text"`

	// SkillDieFields are candidate patterns for the text field showing a
	// skill's die. "{skill}" expands to the skill's display name.
	SkillDieFields []string `yaml:"skill_die_fields"`

	// SkillBoxFields are candidate patterns for rank checkboxes.
	// "{prefix}" expands to the skill's checkbox prefix and "{n}" to the
	// rank number, so athletics rank boxes become ath1..ath6.
	SkillBoxFields []string `yaml:"skill_box_fields"`

	// CheckboxMax is the highest rank box the template carries.
	CheckboxMax int `yaml:"checkbox_max"`
}

// TextCandidates returns the candidate field names for a semantic key.
func (l Layout) TextCandidates(key string) []string {
	return l.Text[key]
}

// SkillDieCandidates expands the die-field patterns for one skill.
func (l Layout) SkillDieCandidates(skillName string) []string {
	out := make([]string, 0, len(l.SkillDieFields))
	for _, pattern := range l.SkillDieFields {
		out = append(out, strings.ReplaceAll(pattern, "{skill}", skillName))
	}
	return out
}

// SkillBoxCandidates expands the checkbox patterns for one skill rank box.
func (l Layout) SkillBoxCandidates(prefix string, n int) []string {
	out := make([]string, 0, len(l.SkillBoxFields))
	for _, pattern := range l.SkillBoxFields {
		name := strings.ReplaceAll(pattern, "{prefix}", prefix)
		name = strings.ReplaceAll(name, "{n}", strconv.Itoa(n))
		out = append(out, name)
	}
	return out
}

var (
	layoutsOnce sync.Once
	layouts     map[string]Layout
	layoutsErr  error
)

func loadLayouts() {
	layouts = make(map[string]Layout)
	entries, err := fs.ReadDir(layoutFS, "layouts")
	if err != nil {
		layoutsErr = err
		return
	}
	for _, entry := range entries {
		raw, err := fs.ReadFile(layoutFS, "layouts/"+entry.Name())
		if err != nil {
			layoutsErr = err
			return
		}
		var layout Layout
		if err := yaml.Unmarshal(raw, &layout); err != nil {
			layoutsErr = err
			return
		}
		layouts[layout.Name] = layout
	}
}

// LayoutByName returns an embedded field catalogue.
func LayoutByName(name string) (Layout, error) {
	layoutsOnce.Do(loadLayouts)
	if layoutsErr != nil {
		return Layout{}, apperrors.Wrap(apperrors.CodeExportTemplateInvalid,
			"embedded field catalogues are unreadable", layoutsErr)
	}
	if name == "" {
		name = DefaultLayout
	}
	layout, ok := layouts[name]
	if !ok {
		return Layout{}, apperrors.WithMetadata(apperrors.CodeExportUnknownLayout,
			"unknown sheet layout "+strconv.Quote(name),
			map[string]string{"Layout": name})
	}
	return layout, nil
}

// LayoutNames lists the embedded catalogues in stable order.
func LayoutNames() []string {
	layoutsOnce.Do(loadLayouts)
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
