// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Character errors
	CodeCharacterEmptyName          Code = "CHARACTER_EMPTY_NAME"
	CodeCharacterTextTooLong        Code = "CHARACTER_TEXT_TOO_LONG"
	CodeCharacterInvalidLevel       Code = "CHARACTER_INVALID_LEVEL"
	CodeCharacterInvalidEssence     Code = "CHARACTER_INVALID_ESSENCE"
	CodeCharacterInvalidSkillRank   Code = "CHARACTER_INVALID_SKILL_RANK"
	CodeCharacterUnknownOrigin      Code = "CHARACTER_UNKNOWN_ORIGIN"
	CodeCharacterUnknownRole        Code = "CHARACTER_UNKNOWN_ROLE"
	CodeCharacterUnknownSkill       Code = "CHARACTER_UNKNOWN_SKILL"
	CodeCharacterUnknownInfluence   Code = "CHARACTER_UNKNOWN_INFLUENCE"
	CodeCharacterUnknownPerk        Code = "CHARACTER_UNKNOWN_PERK"
	CodeCharacterUnknownGridPower   Code = "CHARACTER_UNKNOWN_GRID_POWER"
	CodeCharacterUnknownGear        Code = "CHARACTER_UNKNOWN_GEAR"
	CodeCharacterUnknownZordFrame   Code = "CHARACTER_UNKNOWN_ZORD_FRAME"
	CodeCharacterInfluenceLimit     Code = "CHARACTER_INFLUENCE_LIMIT"
	CodeCharacterInfluenceDuplicate Code = "CHARACTER_INFLUENCE_DUPLICATE"
	CodeCharacterInfluenceHangUp    Code = "CHARACTER_INFLUENCE_HANG_UP"
	CodeCharacterInvalidLevelChoice Code = "CHARACTER_INVALID_LEVEL_CHOICE"
	CodeCharacterInvalidStep        Code = "CHARACTER_INVALID_STEP"

	// Rulebook errors
	CodeRulebookLoadFailed Code = "RULEBOOK_LOAD_FAILED"
	CodeRulebookDuplicate  Code = "RULEBOOK_DUPLICATE_KEY"
	CodeRulebookDangling   Code = "RULEBOOK_DANGLING_REFERENCE"

	// Snapshot (persistence) errors
	CodeSnapshotNotFound      Code = "SNAPSHOT_NOT_FOUND"
	CodeSnapshotQuotaExceeded Code = "SNAPSHOT_QUOTA_EXCEEDED"
	CodeSnapshotDecodeFailed  Code = "SNAPSHOT_DECODE_FAILED"
	CodeSnapshotEncodeFailed  Code = "SNAPSHOT_ENCODE_FAILED"
	CodeSnapshotStoreFailed   Code = "SNAPSHOT_STORE_FAILED"

	// Export errors
	CodeExportTemplateUnavailable  Code = "EXPORT_TEMPLATE_UNAVAILABLE"
	CodeExportTemplateInvalid      Code = "EXPORT_TEMPLATE_INVALID"
	CodeExportInFlight             Code = "EXPORT_IN_FLIGHT"
	CodeExportClipboardUnavailable Code = "EXPORT_CLIPBOARD_UNAVAILABLE"
	CodeExportUnknownLayout        Code = "EXPORT_UNKNOWN_LAYOUT"
	CodeExportWriteFailed          Code = "EXPORT_WRITE_FAILED"
)

// Retryable reports whether the error names a condition the user can clear
// and try again: a template that has not arrived yet, an export already in
// flight, or storage that ran out of room. Validation and template-parse
// failures are not retryable without changing the input.
func Retryable(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			switch e.Code {
			case CodeExportTemplateUnavailable, CodeExportInFlight, CodeSnapshotQuotaExceeded:
				return true
			}
			return false
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
