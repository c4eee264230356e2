package ingestion

import (
	"path/filepath"
	"strings"
)

// Document categories attached to ingested chunks. The category is carried
// in chunk metadata so answers can say what kind of document they came from.
const (
	CategoryHandbook  = "handbook"
	CategoryCalendar  = "calendar"
	CategoryPolicy    = "policy"
	CategoryNotice    = "notice"
	CategoryAdmission = "admission"
	CategoryGeneric   = "generic"
)

// categoryTokens maps file-name tokens to the canonical category label.
// Checked in declaration order; the first hit wins. Explicit CLI flags take
// precedence over inference — this is the best-effort fallback when the
// operator doesn't specify metadata.
var categoryTokens = []struct {
	token    string
	category string
}{
	{"handbook", CategoryHandbook},
	{"prospectus", CategoryHandbook},
	{"calendar", CategoryCalendar},
	{"schedule", CategoryCalendar},
	{"timetable", CategoryCalendar},
	{"policy", CategoryPolicy},
	{"rules", CategoryPolicy},
	{"regulation", CategoryPolicy},
	{"leave", CategoryPolicy},
	{"notice", CategoryNotice},
	{"circular", CategoryNotice},
	{"admission", CategoryAdmission},
	{"fee", CategoryAdmission},
}

// InferCategory classifies a document path into a campus document category
// from tokens in its base name.
func InferCategory(path string) string {
	name := strings.ToLower(filepath.Base(path))
	for _, ct := range categoryTokens {
		if strings.Contains(name, ct.token) {
			return ct.category
		}
	}
	return CategoryGeneric
}
