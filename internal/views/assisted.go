package views

import (
	"strings"
)

const (
	assistedMarker = "[VISITA ASISTIDA"
	companionLabel = "Acompañante:"
)

// Square brackets in a name would end the marker early.
var bracketSwap = strings.NewReplacer("[", "(", "]", ")")

// AssistedNotes prefixes notes with the assisted-visit marker the backend
// stores in place of a structured field.
func AssistedNotes(companion, notes string) string {
	companion = bracketSwap.Replace(strings.TrimSpace(companion))
	notes = strings.TrimSpace(notes)
	prefix := assistedMarker + " - " + companionLabel + " " + companion + "]"
	if notes == "" {
		return prefix
	}
	return prefix + " " + notes
}

func IsAssisted(notes string) bool {
	return strings.Contains(notes, assistedMarker)
}

// ParseAssisted splits a marked note into companion and the remaining text.
// AssistedNotes never writes a bracket inside the name, so the marker ends
// at the first "]".
func ParseAssisted(notes string) (companion, rest string, ok bool) {
	trimmed := strings.TrimSpace(notes)
	if !strings.HasPrefix(trimmed, assistedMarker) {
		return "", notes, false
	}
	end := strings.Index(trimmed, "]")
	if end < 0 {
		return "", notes, false
	}
	head := trimmed[len(assistedMarker):end]
	if _, after, found := strings.Cut(head, companionLabel); found {
		companion = strings.TrimSpace(after)
	}
	return companion, strings.TrimSpace(trimmed[end+1:]), true
}
