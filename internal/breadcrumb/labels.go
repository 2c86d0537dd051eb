package breadcrumb

import (
	"strconv"
	"strings"
)

// DefaultHome is the segment treated as the implicit home crumb.
const DefaultHome = "dashboard"

// DefaultLabels returns the static label dictionary for dashboard routes.
func DefaultLabels() map[string]string {
	return map[string]string{
		"dashboard":       "Dashboard",
		"members":         "Members",
		"families":        "Families",
		"groups":          "Small Groups",
		"volunteers":      "Volunteers",
		"attendance":      "Attendance",
		"giving":          "Giving",
		"finance":         "Finance",
		"pledges":         "Pledges",
		"funds":           "Funds",
		"budget":          "Budget",
		"sunday-school":   "Sunday School",
		"classes":         "Classes",
		"teachers":        "Teachers",
		"events":          "Events",
		"calendar":        "Calendar",
		"communications":  "Communications",
		"announcements":   "Announcements",
		"prayer-requests": "Prayer Requests",
		"reports":         "Reports",
		"settings":        "Settings",
		"profile":         "Profile",
		"new":             "New",
		"edit":            "Edit",
	}
}

// recordLabelFields are tried in order; the name pair sits between "name"
// and "subject".
//
//nolint:gochecknoglobals // Lookup order.
var (
	leadingFields  = []string{"title", "name"}
	trailingFields = []string{"subject", "description"}
)

// LabelFromRecord derives a display label from a looked-up record. A
// first/last name pair is used only when both parts are present; a record
// with just one of them falls through to subject and description.
func LabelFromRecord(record map[string]any, id string) string {
	for _, f := range leadingFields {
		if v, ok := text(record[f]); ok {
			return v
		}
	}
	first, okFirst := text(record["firstName"])
	last, okLast := text(record["lastName"])
	if okFirst && okLast {
		return first + " " + last
	}
	for _, f := range trailingFields {
		if v, ok := text(record[f]); ok {
			return v
		}
	}
	return FallbackLabel(id)
}

// text returns v as a label when it is a non-empty string or a non-zero number.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return "", false
		}
		return t, true
	case float64:
		if t == 0 {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}
