package timeclock

import "strings"

// maxNoteWords caps note length for both pending clock-in notes and stored
// history entries. Trailing words are dropped silently.
const maxNoteWords = 20

// TruncateNote keeps the first 20 whitespace-separated words, space-joined.
func TruncateNote(note string) string {
	words := strings.Fields(note)
	if len(words) > maxNoteWords {
		words = words[:maxNoteWords]
	}
	return strings.Join(words, " ")
}

// combineNotes merges the stored clock-in note with the clock-out note.
// Either side is omitted when empty; a lone clock-out note is kept as-is.
func combineNotes(inNote, outNote string) string {
	switch {
	case inNote != "" && outNote != "":
		return "In: " + inNote + " | Out: " + outNote
	case inNote != "":
		return "In: " + inNote
	default:
		return outNote
	}
}
