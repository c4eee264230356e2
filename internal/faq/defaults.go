package faq

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/campuscopilot/copilot-go/internal/campus"
)

var (
	greetingPattern = regexp.MustCompile(`(?i)\b(hi|hello|hey|greetings?|what's up|yo)\b`)
	leavePattern    = regexp.MustCompile(`(?i)\b(how\s+)?(do|can|could)\s+(i|we)\s+(apply|submit|request)\s+(a|for\s+leave|leave\s+application)`)
	deptHeadPattern = regexp.MustCompile(`(?i)\b(?:who is the head of (?:the )?(.+?)(?: department| dept)?|(?:head|hod) of (?:the )?(.+?)(?: department| dept)?)\b`)
	contactPattern  = regexp.MustCompile(`(?i)\b(?:contact|email|phone|address|how to reach)\b`)
	facilityPattern = regexp.MustCompile(`(?i)\b(?:where is|location of|how to get to|directions to|find)\s+(.+?)(?:\?|$)`)
)

// DefaultRules returns the built-in campus rules. Priorities rank greeting
// above everything, then department heads, contacts, facility locations, and
// the leave procedure at the default.
func DefaultRules() []Rule {
	return []Rule{
		{
			Pattern:   greetingPattern,
			ReplyFunc: greetingReply,
			Priority:  10,
			Tags:      []string{"greeting"},
		},
		{
			Pattern:   deptHeadPattern,
			ReplyFunc: departmentHeadReply,
			Priority:  8,
			Tags:      []string{"department", "contact"},
		},
		{
			Pattern:   contactPattern,
			ReplyFunc: contactReply,
			Priority:  7,
			Tags:      []string{"contact"},
		},
		{
			Pattern:   facilityPattern,
			ReplyFunc: facilityReply,
			Priority:  6,
			Tags:      []string{"facility", "location"},
		},
		{
			Pattern:   leavePattern,
			ReplyFunc: leaveReply,
			Priority:  DefaultPriority,
			Tags:      []string{"leave", "application", "procedure"},
		},
	}
}

func greetingReply(c *campus.Context, _ []string) string {
	return fmt.Sprintf("Hello! I'm your Campus Copilot at %s. How can I assist you today?", c.Name)
}

func leaveReply(c *campus.Context, _ []string) string {
	if c.LeavePolicy != "" {
		return c.LeavePolicy
	}
	return fmt.Sprintf(`To apply for leave at %s:
1. Log in to the student portal
2. Navigate to the 'Leave Application' section
3. Fill out the required details
4. Submit the application

For emergency leaves, please contact your department office directly.`, c.Name)
}

func departmentHeadReply(c *campus.Context, match []string) string {
	want := strings.ToLower(strings.TrimSpace(firstGroup(match)))
	for _, d := range c.Departments {
		name := strings.ToLower(d.Name)
		if strings.Contains(name, want) || strings.Contains(want, firstWord(name)) {
			if d.Head == "" {
				continue
			}
			reply := fmt.Sprintf("The head of %s department is %s.", d.Name, d.Head)
			if d.Email != "" {
				reply += fmt.Sprintf(" You can contact them at %s", d.Email)
			}
			return reply
		}
	}
	return fmt.Sprintf("I couldn't find information about the %s department. Could you please specify the department name?", want)
}

func contactReply(c *campus.Context, _ []string) string {
	general := c.ContactInfo.General
	var lines []string
	if general.Email != "" {
		lines = append(lines, "Email: "+general.Email)
	}
	if general.Phone != "" {
		lines = append(lines, "Phone: "+general.Phone)
	}
	if general.Address != "" {
		lines = append(lines, "Address: "+general.Address)
	}
	if len(lines) == 0 {
		return "I don't have contact information available."
	}
	return "Here's how to reach us:\n" + strings.Join(lines, "\n")
}

func facilityReply(c *campus.Context, match []string) string {
	want := strings.ToLower(strings.TrimSpace(firstGroup(match)))

	for _, f := range c.Facilities {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, want) || strings.Contains(want, firstWord(name)) {
			return describePlace(f.Name, f.Location, f.Hours)
		}
	}
	for _, s := range c.Sections {
		title := strings.ToLower(s.Title)
		if strings.Contains(title, want) || strings.Contains(want, firstWord(title)) {
			return describePlace(s.Title, s.Location, s.Hours)
		}
	}
	return fmt.Sprintf("I couldn't find information about %s. Could you be more specific?", want)
}

func describePlace(name, location, hours string) string {
	var b strings.Builder
	b.WriteString(name)
	if location != "" {
		fmt.Fprintf(&b, "\nLocation: %s", location)
	}
	if hours != "" {
		fmt.Fprintf(&b, "\nHours: %s", hours)
	}
	return b.String()
}

// firstGroup returns the first non-empty capture group. Alternation-heavy
// patterns like deptHeadPattern populate different groups depending on which
// branch matched.
func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func firstWord(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return s
}
