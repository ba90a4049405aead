// Package usermsg renders user-facing messages for domain error codes.
package usermsg

import (
	"bytes"
	"text/template"

	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
)

// messages maps error codes to message templates. Templates reference
// metadata keys from the error, and render empty for absent keys.
var messages = map[apperrors.Code]string{
	apperrors.CodeCharacterEmptyName:          "Character name cannot be empty.",
	apperrors.CodeCharacterTextTooLong:        "{{.Field}} is too long (limit {{.Limit}} characters).",
	apperrors.CodeCharacterInvalidLevel:       "Level must be between {{.Min}} and {{.Max}}.",
	apperrors.CodeCharacterInvalidEssence:     "Essence scores must be between {{.Min}} and {{.Max}}.",
	apperrors.CodeCharacterInvalidSkillRank:   "Skill ranks must be between 0 and {{.Max}}.",
	apperrors.CodeCharacterUnknownOrigin:      "Unknown origin {{.Key}}.",
	apperrors.CodeCharacterUnknownRole:        "Unknown role {{.Key}}.",
	apperrors.CodeCharacterUnknownSkill:       "Unknown skill {{.Key}}.",
	apperrors.CodeCharacterUnknownInfluence:   "Unknown influence {{.Key}}.",
	apperrors.CodeCharacterUnknownPerk:        "Unknown perk {{.Key}}.",
	apperrors.CodeCharacterUnknownGridPower:   "Unknown grid power {{.Key}}.",
	apperrors.CodeCharacterUnknownGear:        "Unknown gear item {{.Key}}.",
	apperrors.CodeCharacterUnknownZordFrame:   "Unknown zord frame {{.Key}}.",
	apperrors.CodeCharacterInfluenceLimit:     "At most {{.Max}} influences can be selected.",
	apperrors.CodeCharacterInfluenceDuplicate: "Influence {{.Key}} is already selected.",
	apperrors.CodeCharacterInfluenceHangUp:    "The first influence does not take a hang-up.",

	apperrors.CodeSnapshotQuotaExceeded: "Storage is full. Free up space and save again.",
	apperrors.CodeSnapshotDecodeFailed:  "The saved character could not be read; starting from a fresh sheet.",
	apperrors.CodeSnapshotStoreFailed:   "Saving failed. The last saved version is unchanged.",
	apperrors.CodeSnapshotNotFound:      "No saved character with id {{.ID}}.",

	apperrors.CodeExportTemplateUnavailable:  "The sheet template is not available yet. Try the export again.",
	apperrors.CodeExportTemplateInvalid:      "The sheet template could not be processed: {{.Detail}}",
	apperrors.CodeExportInFlight:             "An export is already running. Wait for it to finish.",
	apperrors.CodeExportClipboardUnavailable: "Clipboard is not available on this system.",
	apperrors.CodeExportUnknownLayout:        "Unknown sheet layout {{.Layout}}.",
	apperrors.CodeExportWriteFailed:          "The sheet could not be written. Check the output folder.",
}

// Format renders a user-facing message for err. Errors without a domain code
// or without a registered template fall back to the error text itself.
func Format(err error) string {
	if err == nil {
		return ""
	}

	e := domainError(err)
	if e == nil {
		return err.Error()
	}
	tmplText, ok := messages[e.Code]
	if !ok {
		return e.Error()
	}

	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	tmpl, parseErr := template.New("msg").Parse(tmplText)
	if parseErr != nil {
		return tmplText
	}
	var buf bytes.Buffer
	if execErr := tmpl.Execute(&buf, metadata); execErr != nil {
		return tmplText
	}
	return buf.String()
}

func domainError(err error) *apperrors.Error {
	for err != nil {
		if e, ok := err.(*apperrors.Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}
