package faq

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/campuscopilot/copilot-go/internal/campus"
)

func testContext() *campus.Context {
	return &campus.Context{
		Name: "Roorkee Institute of Technology",
		Departments: []campus.Department{
			{ID: "cs", Name: "Computer Science", Head: "Dr. Anjali Sharma", Email: "cs@rit.edu"},
			{ID: "civil", Name: "Civil Engineering", Head: "Dr. Vikram Singh"},
		},
		Facilities: []campus.Facility{
			{ID: "library", Name: "Central Library", Location: "Block A, Ground Floor", Hours: "Mon-Sat 8:00-22:00"},
		},
		Sections: []campus.Section{
			{Title: "Scholarship Desk", Location: "Admin Block, Room 12"},
		},
		ContactInfo: campus.ContactInfo{
			General: campus.ContactChannel{
				Email:   "info@rit.edu",
				Phone:   "+91-1332-555000",
				Address: "Roorkee, Uttarakhand",
			},
		},
	}
}

func TestAddRule_Validation(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`x`)
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"literal with reply", Rule{Literal: "hours", Reply: "open all day"}, false},
		{"pattern with reply func", Rule{Pattern: pattern, ReplyFunc: func(*campus.Context, []string) string { return "y" }}, false},
		{"no match form", Rule{Reply: "y"}, true},
		{"both match forms", Rule{Literal: "hours", Pattern: pattern, Reply: "y"}, true},
		{"no answer form", Rule{Literal: "hours"}, true},
		{"both answer forms", Rule{Literal: "hours", Reply: "y", ReplyFunc: func(*campus.Context, []string) string { return "y" }}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewMatcher(testContext())
			err := m.AddRule(tt.rule)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddRule(%+v) error = %v, wantErr %v", tt.rule, err, tt.wantErr)
			}
		})
	}
}

func TestFindAnswer_PriorityWins(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testContext())
	if err := m.AddRule(Rule{Literal: "library", Reply: "low priority answer", Priority: 5}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRule(Rule{Literal: "library", Reply: "high priority answer", Priority: 10}); err != nil {
		t.Fatal(err)
	}

	answer, ok := m.FindAnswer("tell me about the library")
	if !ok {
		t.Fatal("FindAnswer returned ok=false, want a match")
	}
	if answer != "high priority answer" {
		t.Fatalf("answer = %q, want the priority-10 reply", answer)
	}
}

func TestFindAnswer_TiesKeepRegistrationOrder(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testContext())
	if err := m.AddRule(Rule{Literal: "exam", Reply: "first registered"}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRule(Rule{Literal: "exam", Reply: "second registered"}); err != nil {
		t.Fatal(err)
	}

	answer, ok := m.FindAnswer("when is the exam?")
	if !ok || answer != "first registered" {
		t.Fatalf("answer = %q, ok = %v; equal priorities must resolve to the first rule", answer, ok)
	}
}

func TestFindAnswer_DefaultPriority(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testContext())
	// Zero priority becomes DefaultPriority, so it must beat an explicit 1.
	if err := m.AddRule(Rule{Literal: "mess", Reply: "explicit low", Priority: 1}); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRule(Rule{Literal: "mess", Reply: "defaulted"}); err != nil {
		t.Fatal(err)
	}

	if answer, _ := m.FindAnswer("mess timings"); answer != "defaulted" {
		t.Fatalf("answer = %q, want the default-priority rule to win", answer)
	}
}

func TestAddRule_InvalidatesCache(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testContext())
	if err := m.AddRule(Rule{Literal: "wifi", Reply: "old answer", Priority: 5}); err != nil {
		t.Fatal(err)
	}
	if answer, _ := m.FindAnswer("how do I get wifi"); answer != "old answer" {
		t.Fatalf("priming answer = %q", answer)
	}

	// A higher-priority rule added later must shadow the cached result.
	if err := m.AddRule(Rule{Literal: "wifi", Reply: "new answer", Priority: 9}); err != nil {
		t.Fatal(err)
	}
	if answer, _ := m.FindAnswer("how do I get wifi"); answer != "new answer" {
		t.Fatalf("answer after AddRule = %q, want the new rule to apply", answer)
	}
}

func TestFindAnswer_NormalizedCacheKey(t *testing.T) {
	t.Parallel()

	m := NewMatcher(testContext())
	if err := m.AddRule(Rule{Literal: "hostel", Reply: "hostel info"}); err != nil {
		t.Fatal(err)
	}

	if _, ok := m.FindAnswer("  HOSTEL rules  "); !ok {
		t.Fatal("case and whitespace variants must still match")
	}
	if answer, ok := m.FindAnswer("hostel rules"); !ok || answer != "hostel info" {
		t.Fatalf("normalized repeat lookup = %q, %v", answer, ok)
	}
}

func TestFindAnswer_NoMatch(t *testing.T) {
	t.Parallel()

	m := NewDefaultMatcher(testContext())
	if answer, ok := m.FindAnswer("explain the quantum physics syllabus"); ok {
		t.Fatalf("unexpected match: %q", answer)
	}
}

func TestDefaultRules_Greeting(t *testing.T) {
	t.Parallel()

	m := NewDefaultMatcher(testContext())
	answer, ok := m.FindAnswer("hello there")
	if !ok {
		t.Fatal("greeting did not match")
	}
	if !strings.Contains(answer, "Roorkee Institute of Technology") {
		t.Fatalf("greeting %q does not mention the institution", answer)
	}
}

func TestDefaultRules_GreetingBeatsFacility(t *testing.T) {
	t.Parallel()

	// "hey, where is the library" matches both the greeting and the facility
	// rule; the greeting's higher priority must decide.
	m := NewDefaultMatcher(testContext())
	answer, ok := m.FindAnswer("hey, where is the library?")
	if !ok {
		t.Fatal("query did not match")
	}
	if !strings.Contains(answer, "Campus Copilot") {
		t.Fatalf("answer = %q, want the greeting reply", answer)
	}
}

func TestDefaultRules_DepartmentHead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"full name", "who is the head of the computer science department?", []string{"Dr. Anjali Sharma", "cs@rit.edu"}},
		{"hod shorthand", "HOD of civil dept", []string{"Dr. Vikram Singh"}},
		{"unknown department", "who is the head of the astrology department?", []string{"couldn't find"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewDefaultMatcher(testContext())
			answer, ok := m.FindAnswer(tt.query)
			if !ok {
				t.Fatalf("FindAnswer(%q) did not match", tt.query)
			}
			for _, want := range tt.want {
				if !strings.Contains(answer, want) {
					t.Fatalf("FindAnswer(%q) = %q, want substring %q", tt.query, answer, want)
				}
			}
		})
	}
}

func TestDefaultRules_FacilityLocation(t *testing.T) {
	t.Parallel()

	m := NewDefaultMatcher(testContext())

	answer, ok := m.FindAnswer("where is the central library?")
	if !ok {
		t.Fatal("facility query did not match")
	}
	if !strings.Contains(answer, "Block A, Ground Floor") || !strings.Contains(answer, "Mon-Sat 8:00-22:00") {
		t.Fatalf("facility answer missing location or hours: %q", answer)
	}

	answer, ok = m.FindAnswer("where is scholarship desk")
	if !ok {
		t.Fatal("section query did not match")
	}
	if !strings.Contains(answer, "Admin Block, Room 12") {
		t.Fatalf("section answer missing location: %q", answer)
	}
}

func TestDefaultRules_Contact(t *testing.T) {
	t.Parallel()

	m := NewDefaultMatcher(testContext())
	answer, ok := m.FindAnswer("what is the phone number to contact admissions")
	if !ok {
		t.Fatal("contact query did not match")
	}
	for _, want := range []string{"info@rit.edu", "+91-1332-555000", "Roorkee, Uttarakhand"} {
		if !strings.Contains(answer, want) {
			t.Fatalf("contact answer missing %q: %q", want, answer)
		}
	}
}

func TestDefaultRules_LeaveProcedure(t *testing.T) {
	t.Parallel()

	m := NewDefaultMatcher(testContext())
	answer, ok := m.FindAnswer("how do I apply for leave?")
	if !ok {
		t.Fatal("leave query did not match")
	}
	if !strings.Contains(answer, "student portal") {
		t.Fatalf("generic leave answer missing portal step: %q", answer)
	}

	// A context-supplied policy replaces the generic procedure.
	ctx := testContext()
	ctx.LeavePolicy = "Submit form L-2 to the registrar three days in advance."
	m = NewDefaultMatcher(ctx)
	answer, _ = m.FindAnswer("how do I apply for leave?")
	if answer != ctx.LeavePolicy {
		t.Fatalf("answer = %q, want the configured leave policy", answer)
	}
}

// TestMatcher_ConcurrentUse exercises the lookup/registration pattern the
// HTTP server produces: one shared matcher, many request goroutines, cache
// writes on every distinct query. Run with -race.
func TestMatcher_ConcurrentUse(t *testing.T) {
	t.Parallel()

	m := NewDefaultMatcher(testContext())

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			// Distinct queries force a cache write per goroutine.
			if _, ok := m.FindAnswer(fmt.Sprintf("hello there %d", i)); !ok {
				t.Error("greeting did not match")
			}
		}()
		go func() {
			defer wg.Done()
			_ = m.AddRule(Rule{
				Literal:  fmt.Sprintf("topic-%d", i),
				Reply:    "noted",
				Priority: 1,
			})
		}()
	}
	wg.Wait()

	if got := m.Len() - len(DefaultRules()); got != 16 {
		t.Errorf("registered rules: want 16, got %d", got)
	}
}
