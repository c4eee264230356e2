package knowledge

// DefaultEntries returns the seed entries for the keyword tier: the campus
// facts every deployment answers even before any document is ingested.
func DefaultEntries() []Entry {
	return []Entry{
		{
			ID:       "kb-library",
			Keywords: []string{"library", "library hours", "when is the library open"},
			Response: "University Library\n\nHours\n- Monday-Thursday: 7:30 AM - 11:00 PM\n- Friday: 7:30 AM - 8:00 PM\n- Saturday: 10:00 AM - 6:00 PM\n- Sunday: 12:00 PM - 10:00 PM",
			Category: "facilities",
		},
		{
			ID:       "kb-computer-lab",
			Keywords: []string{"computer lab", "lab hours", "when is the lab open"},
			Response: "Computer Lab\n\nHours\n- Open 24/7 with student ID access\n- Location: Technology Building, Room 101",
			Category: "facilities",
		},
		{
			ID:       "kb-dining",
			Keywords: []string{"cafeteria", "dining", "food", "where can i eat"},
			Response: "Campus Dining\n\nMain Cafeteria Hours\n- Monday-Friday: 7:00 AM - 8:00 PM\n- Saturday-Sunday: 9:00 AM - 7:00 PM\n\nCoffee Shop\n- Monday-Friday: 7:30 AM - 6:00 PM\n- Saturday: 9:00 AM - 3:00 PM\n- Sunday: Closed",
			Category: "dining",
		},
		{
			ID:       "kb-calendar",
			Keywords: []string{"academic calendar", "when is spring break", "when are finals"},
			Response: "Academic Calendar\n\nFall Semester\n- Classes Start: August 28\n- Thanksgiving Break: November 22-26\n- Finals Week: December 11-15\n- Commencement: December 16\n\nSpring Semester\n- Classes Start: January 16\n- Spring Break: March 11-15\n- Finals Week: May 6-10\n- Commencement: May 11",
			Category: "academics",
		},
		{
			ID:       "kb-career",
			Keywords: []string{"career", "job", "internship", "resume", "interview", "hire"},
			Response: "Career Development Center\n\nServices\n- Resume & Cover Letter Reviews\n- Mock Interviews\n- Career Counseling\n- Job/Internship Postings\n\nHours\n- Monday-Friday: 9:00 AM - 5:00 PM\n- Location: Student Services Building, Room 200",
			Category: "career",
		},
		{
			ID:       "kb-health",
			Keywords: []string{"health", "health center", "counseling", "doctor"},
			Response: "Student Health & Wellness\n\nHealth Center\n- Location: Wellness Center, 1st Floor\n- Hours: Monday-Friday, 8:00 AM - 5:00 PM\n- Nurse Line: (555) 123-8000\n- Emergency: Dial 911\n\nCounseling Services\n- Confidential mental health support\n- Individual and group counseling\n- Crisis intervention available 24/7",
			Category: "health",
		},
		{
			ID:       "kb-parking",
			Keywords: []string{"parking", "where can i park", "parking permit"},
			Response: "Parking Information\n\nStudent Parking\n- Permits required 7 AM - 5 PM, Monday-Friday\n- Cost: $100/semester\n- Purchase at the campus services office\n\nVisitor Parking\n- Available in designated visitor lots\n- $2/hour or $10/day maximum\n- Pay at kiosks or via mobile app",
			Category: "transportation",
		},
		{
			ID:       "kb-transit",
			Keywords: []string{"transit", "bus", "shuttle", "transportation"},
			Response: "Campus Transit\n\nShuttle Service\n- Runs 7:00 AM - 11:00 PM daily\n- 15-minute frequency during peak hours\n\nCity Bus\n- Free with student ID\n- Route maps at student services\n- Late Night Safe Ride: 10:00 PM - 3:00 AM",
			Category: "transportation",
		},
		{
			ID:       "kb-tutoring",
			Keywords: []string{"tutoring", "help with classes", "academic help"},
			Response: "Academic Support\n\nTutoring Center\n- Location: Learning Commons, 2nd Floor\n- Hours: Monday-Thursday 9:00 AM - 7:00 PM, Friday 9:00 AM - 4:00 PM\n- Subjects: Math, Writing, Sciences, and more\n\nWriting Center\n- Help with papers and assignments\n- Drop-in or by appointment",
			Category: "academics",
		},
		{
			ID:       "kb-clubs",
			Keywords: []string{"clubs", "organizations", "how to join", "get involved"},
			Response: "Student Organizations\n\n- 200+ student-run clubs and organizations\n- Academic, cultural, special interest, and more\n\nHow to Join\n1. Visit the Student Activities Fair (first week of each semester)\n2. Check the student activities portal\n3. Contact the organization directly",
			Category: "campus-life",
		},
	}
}
