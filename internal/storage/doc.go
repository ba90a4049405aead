// Package storage defines snapshot persistence for character drafts.
//
// A snapshot is the whole character serialized as one opaque payload; the
// wizard saves through a debouncing Autosaver so bursts of edits collapse
// into single writes. The SQLite implementation of Store lives in the
// sqlite subpackage.
//
// Missing or unreadable snapshots never fail a load: LoadCharacterOrDefault
// degrades to a caller-supplied default so the wizard always opens.
package storage
