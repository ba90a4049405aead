package pdf

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
)

// Decoded shape of pdfcpu's form export. Only field names matter here; the
// rest of the export (ids, pages, current values) is ignored.
type exportedCatalog struct {
	Forms []exportedForm `json:"forms"`
}

type exportedForm struct {
	TextFields  []exportedField `json:"textfield"`
	CheckBoxes  []exportedField `json:"checkbox"`
	RadioGroups []exportedField `json:"radiobuttongroup"`
	ListBoxes   []exportedField `json:"listbox"`
	ComboBoxes  []exportedField `json:"combobox"`
	DateFields  []exportedField `json:"datefield"`
}

type exportedField struct {
	Name string `json:"name"`
}

// presentFields reads the template's field catalogue and reduces it to the
// set of field names that exist in this revision. Every planned write is
// checked against this set so that writes to absent fields are skipped
// instead of failing the fill.
func presentFields(template []byte, conf *model.Configuration) (map[string]bool, error) {
	var exported bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(template), &exported, "", conf); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportTemplateInvalid,
			"template form fields are unreadable", err)
	}

	var catalog exportedCatalog
	if err := json.Unmarshal(exported.Bytes(), &catalog); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportTemplateInvalid,
			"template field catalogue is not decodable", err)
	}

	present := make(map[string]bool)
	for _, form := range catalog.Forms {
		for _, group := range [][]exportedField{
			form.TextFields, form.CheckBoxes, form.RadioGroups,
			form.ListBoxes, form.ComboBoxes, form.DateFields,
		} {
			for _, field := range group {
				if field.Name != "" {
					present[field.Name] = true
				}
			}
		}
	}
	return present, nil
}

// Fill payload handed to pdfcpu. Text fields and checkboxes are the only
// kinds the sheet writes.
type fillTextField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type fillCheckBox struct {
	Name   string `json:"name"`
	Value  bool   `json:"value"`
	Locked bool   `json:"locked"`
}

type fillForm struct {
	TextFields []fillTextField `json:"textfield,omitempty"`
	CheckBoxes []fillCheckBox  `json:"checkbox,omitempty"`
}

type fillDocument struct {
	Forms []fillForm `json:"forms"`
}

// fillSet accumulates the disjoint writes of the export stages, dropping any
// destination the template does not carry.
type fillSet struct {
	present map[string]bool
	text    []fillTextField
	boxes   []fillCheckBox
	taken   map[string]bool
}

func newFillSet(present map[string]bool) *fillSet {
	return &fillSet{present: present, taken: make(map[string]bool)}
}

// setText writes value to the first present candidate. Empty values are
// dropped so templates keep their own blanks.
func (f *fillSet) setText(candidates []string, value string) {
	if value == "" {
		return
	}
	for _, name := range candidates {
		if !f.present[name] || f.taken[name] {
			continue
		}
		f.taken[name] = true
		f.text = append(f.text, fillTextField{Name: name, Value: value})
		return
	}
}

// check ticks the first present candidate box.
func (f *fillSet) check(candidates []string) {
	for _, name := range candidates {
		if !f.present[name] || f.taken[name] {
			continue
		}
		f.taken[name] = true
		f.boxes = append(f.boxes, fillCheckBox{Name: name, Value: true})
		return
	}
}

func (f *fillSet) encode() ([]byte, error) {
	doc := fillDocument{Forms: []fillForm{{TextFields: f.text, CheckBoxes: f.boxes}}}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExportTemplateInvalid,
			"fill payload is not encodable", err)
	}
	return raw, nil
}

func (f *fillSet) empty() bool {
	return len(f.text) == 0 && len(f.boxes) == 0
}

// fill applies the accumulated writes to the template in one pdfcpu call.
func (f *fillSet) fill(template []byte, out io.Writer, conf *model.Configuration) error {
	payload, err := f.encode()
	if err != nil {
		return err
	}
	if err := api.FillForm(bytes.NewReader(template), bytes.NewReader(payload), out, conf); err != nil {
		return apperrors.Wrap(apperrors.CodeExportTemplateInvalid,
			"template cannot be filled", err)
	}
	return nil
}
