package copilot

import (
	"fmt"
	"strings"
	"time"

	"github.com/campuscopilot/copilot-go/internal/campus"
)

// maxPromptEvents caps how many upcoming events are serialized into the
// prompt; anything further out adds tokens without helping the answer.
const maxPromptEvents = 5

// systemPrompt builds the fixed assistant persona for one campus.
func systemPrompt(c *campus.Context) string {
	departments := "Not specified"
	if len(c.Departments) > 0 {
		names := make([]string, len(c.Departments))
		for i, d := range c.Departments {
			names[i] = d.Name
		}
		departments = strings.Join(names, ", ")
	}
	contact := c.ContactInfo.General.Email
	if contact == "" {
		contact = "Not available"
	}

	return fmt.Sprintf(`You are a helpful AI assistant for %s campus.
Your name is Campus Copilot. Be friendly, professional, and concise in your responses.

College Information:
- Name: %s
- Departments: %s
- Main Contact: %s

You have access to detailed information about campus facilities, departments, and services.
If you don't know the answer, say you don't know or ask for clarification.`,
		c.Name, c.Name, departments, contact)
}

// userPrompt wraps the question together with the serialized campus context.
func userPrompt(c *campus.Context, query string, now time.Time) string {
	return fmt.Sprintf(`User asked: %q

Context about %s:
%s

Please provide a helpful and concise response. If the information isn't available in the context, say you don't know.`,
		query, c.Name, formatContext(c, now))
}

// formatContext serializes the campus snapshot for the generative stage:
// departments, facilities merged with the free-form sections, upcoming
// events (future-dated only, capped), and contact channels.
func formatContext(c *campus.Context, now time.Time) string {
	var b strings.Builder

	if len(c.Departments) > 0 {
		b.WriteString("\nDepartments:")
		for _, d := range c.Departments {
			about := d.About
			if about == "" {
				about = "No description"
			}
			fmt.Fprintf(&b, "\n- %s: %s", d.Name, about)
			if d.Head != "" {
				fmt.Fprintf(&b, "\n  Head: %s", d.Head)
			}
			if d.Email != "" {
				fmt.Fprintf(&b, "\n  Email: %s", d.Email)
			}
			if d.Location != "" {
				fmt.Fprintf(&b, "\n  Location: %s", d.Location)
			}
		}
	}

	if len(c.Facilities) > 0 || len(c.Sections) > 0 {
		b.WriteString("\n\nFacilities and Services:")
		for _, f := range c.Facilities {
			writePlace(&b, f.Name, f.Description, f.Location, f.Hours, f.Contact)
		}
		for _, s := range c.Sections {
			desc := s.Content
			writePlace(&b, s.Title, desc, s.Location, s.Hours, s.Contact)
		}
	}

	if events := futureEvents(c.UpcomingEvents, now); len(events) > 0 {
		b.WriteString("\n\nUpcoming Events:")
		for _, e := range events {
			date, _ := time.Parse(time.RFC3339, e.Date)
			fmt.Fprintf(&b, "\n- %s (%s)", e.Title, date.Format("Jan 2, 2006"))
			if e.Location != "" {
				fmt.Fprintf(&b, " at %s", e.Location)
			}
			if e.Description != "" {
				fmt.Fprintf(&b, " - %s", e.Description)
			}
		}
	}

	b.WriteString("\n\nContact Information:")
	writeChannel(&b, "General", c.ContactInfo.General)
	writeChannel(&b, "Admissions", c.ContactInfo.Admissions)
	writeChannel(&b, "Emergency", c.ContactInfo.Emergency)

	return b.String()
}

func writePlace(b *strings.Builder, name, description, location, hours, contact string) {
	if description == "" {
		description = "No description"
	}
	fmt.Fprintf(b, "\n- %s: %s", name, description)
	if location != "" {
		fmt.Fprintf(b, "\n  Location: %s", location)
	}
	if hours != "" {
		fmt.Fprintf(b, "\n  Hours: %s", hours)
	}
	if contact != "" {
		fmt.Fprintf(b, "\n  Contact: %s", contact)
	}
}

func writeChannel(b *strings.Builder, name string, ch campus.ContactChannel) {
	if ch == (campus.ContactChannel{}) {
		return
	}
	fmt.Fprintf(b, "\n- %s:", name)
	if ch.Email != "" {
		fmt.Fprintf(b, "\n  - email: %s", ch.Email)
	}
	if ch.Phone != "" {
		fmt.Fprintf(b, "\n  - phone: %s", ch.Phone)
	}
	if ch.Address != "" {
		fmt.Fprintf(b, "\n  - address: %s", ch.Address)
	}
	if ch.Location != "" {
		fmt.Fprintf(b, "\n  - location: %s", ch.Location)
	}
}

// futureEvents keeps events dated after now, in declaration order, capped at
// maxPromptEvents. Entries with unparsable dates are dropped.
func futureEvents(events []campus.Event, now time.Time) []campus.Event {
	var out []campus.Event
	for _, e := range events {
		date, err := time.Parse(time.RFC3339, e.Date)
		if err != nil || !date.After(now) {
			continue
		}
		out = append(out, e)
		if len(out) == maxPromptEvents {
			break
		}
	}
	return out
}
