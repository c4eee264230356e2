// Package campus defines the institutional context snapshot consumed by the
// FAQ matcher and the query resolver: departments, facilities, events,
// contact details, and optional per-student data such as attendance records.
// The snapshot is read-only — consumers never mutate it.
package campus

import (
	"encoding/json"
	"fmt"
	"os"
)

// Context is the institutional snapshot one assistant session is bound to.
// It is loaded once (from Default or a JSON file) and shared read-only.
type Context struct {
	// Name is the institution's display name, used in greetings and prompts.
	Name string `json:"name"`

	// Departments lists the academic departments with their heads and contacts.
	Departments []Department `json:"departments"`

	// Facilities lists campus facilities (library, gym, cafeteria, ...).
	Facilities []Facility `json:"facilities"`

	// Sections holds additional campus information blocks imported from the
	// campus data file. They are merged with Facilities when building prompts.
	Sections []Section `json:"sections,omitempty"`

	// UpcomingEvents lists campus events; only future-dated entries are
	// surfaced to the model.
	UpcomingEvents []Event `json:"upcoming_events,omitempty"`

	// ContactInfo holds general, admissions, and emergency contact details.
	ContactInfo ContactInfo `json:"contact_info"`

	// LeavePolicy is the institution's leave-application procedure text.
	// When empty, the FAQ matcher falls back to a generic procedure.
	LeavePolicy string `json:"leave_policy,omitempty"`

	// StudentData is the structured per-user block for the active session.
	// Nil when the session is not bound to a student account.
	StudentData *StudentData `json:"student_data,omitempty"`
}

// Department describes one academic department.
type Department struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Head     string `json:"head,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	About    string `json:"about,omitempty"`
}

// Facility describes one campus facility.
type Facility struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Hours       string `json:"hours,omitempty"`
	Contact     string `json:"contact,omitempty"`
}

// Section is a free-form campus information block (hostel rules, scholarship
// desk, bus routes, ...) that does not fit the Facility shape.
type Section struct {
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Location string `json:"location,omitempty"`
	Hours    string `json:"hours,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

// Event is a dated campus event.
type Event struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Date is RFC 3339 in JSON snapshots.
	Date        string `json:"date"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// ContactInfo groups the institution's published contact channels.
type ContactInfo struct {
	General    ContactChannel `json:"general"`
	Admissions ContactChannel `json:"admissions,omitempty"`
	Emergency  ContactChannel `json:"emergency,omitempty"`
}

// ContactChannel is one named point of contact.
type ContactChannel struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Location string `json:"location,omitempty"`
}

// StudentData is the structured per-user block supplied by the portal for an
// authenticated student session.
type StudentData struct {
	// Attendance is the student's attendance record, or nil when unavailable.
	Attendance *Attendance `json:"attendance,omitempty"`
}

// Attendance is a student's attendance summary.
type Attendance struct {
	// OverallPercentage is the aggregate attendance across all subjects.
	OverallPercentage float64 `json:"overall_percentage"`
	// BySubject is the per-subject breakdown.
	BySubject []SubjectAttendance `json:"by_subject"`
}

// SubjectAttendance is the attendance record for a single subject.
type SubjectAttendance struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Attended   int     `json:"attended"`
	Total      int     `json:"total"`
}

// LoadFile reads a Context snapshot from a JSON file. Deployments swap
// institutions by pointing CAMPUS_CONTEXT_FILE at a different snapshot.
func LoadFile(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("campus: read %s: %w", path, err)
	}
	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("campus: parse %s: %w", path, err)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("campus: %s: context name must not be empty", path)
	}
	return &c, nil
}
