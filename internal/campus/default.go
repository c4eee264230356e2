package campus

// Default returns the built-in campus snapshot used when no context file is
// configured. It describes a mid-size engineering institute and is complete
// enough to exercise every resolver stage without external data.
func Default() *Context {
	return &Context{
		Name: "Roorkee Institute of Technology",
		Departments: []Department{
			{
				ID:       "cs",
				Name:     "Computer Science",
				Head:     "Dr. Lokesh Sharma",
				Email:    "lokesh.cse@ritroorkee.com",
				Phone:    "+91 9374528487",
				Location: "C-Block",
				About:    "Programs in software engineering, artificial intelligence, and data science.",
			},
			{
				ID:       "arts",
				Name:     "Humanities and Science",
				Head:     "Dr. Neeraj Malik",
				Email:    "neeraj.hus@ritroorkee.com",
				Phone:    "+91 7248050822",
				Location: "C-Block, Room C007",
				About:    "Programs fostering creativity and critical thinking through arts, literature, and culture.",
			},
			{
				ID:       "management",
				Name:     "Management",
				Head:     "Dr. Amit Rawat",
				Email:    "amit.mba@ritroorkee.com",
				Phone:    "+91 9837492734",
				Location: "A-Block",
				About:    "Prepares future leaders with practical skills for the global business environment.",
			},
			{
				ID:       "mec",
				Name:     "Mechanical Engineering",
				Head:     "Dr. Pankaj Negi",
				Email:    "pankaj.mec@ritroorkee.com",
				Location: "C-Block",
				About:    "Thermodynamics, fluid mechanics, and machine design, with tracks in robotics and sustainable energy.",
			},
			{
				ID:       "civil",
				Name:     "Civil Engineering",
				Head:     "Prof. Ajay Singh",
				Email:    "ajay.civil@ritroorkee.com",
				Location: "C-Block",
				About:    "Structural design, transportation systems, and environmental engineering.",
			},
			{
				ID:       "ect",
				Name:     "Electronics and Communication Engineering",
				Head:     "Dr. Ashok Kumar",
				Email:    "ashok.ect@ritroorkee.com",
				Location: "C-Block",
				About:    "Embedded systems, signal processing, and wireless communication.",
			},
		},
		Facilities: []Facility{
			{
				ID:          "library",
				Name:        "College Library",
				Description: "Main campus library with study spaces and research assistance.",
				Location:    "Ground floor of C-Block",
				Hours:       "Mon-Fri: 9am-6:30pm, Sat-Sun: 10am-6pm",
				Contact:     "library@ritroorkee.com, +91 (555) 222-1111",
			},
			{
				ID:          "gym",
				Name:        "Hostel Gym",
				Description: "Fully equipped gym with fitness classes.",
				Location:    "East Campus",
				Hours:       "Mon-Sat: 5am-7am and 5pm-8pm, closed Sundays",
				Contact:     "gym@ritroorkee.com, +91 (555) 222-2222",
			},
			{
				ID:          "cafeteria",
				Name:        "Sunflower Cafeteria",
				Description: "Dining hall serving meals throughout the day.",
				Location:    "Near the centre of campus",
				Hours:       "Mon-Fri: 7am-9pm, Sat-Sun: 10am-9pm",
				Contact:     "cafeteria@ritroorkee.com, +91 (555) 222-3333",
			},
			{
				ID:          "health",
				Name:        "Student Health Center",
				Description: "General health services, counselling, and wellness programs.",
				Location:    "West Campus, C-Block ground floor",
				Hours:       "Mon-Sun: 9am-5pm",
				Contact:     "health@ritroorkee.com, +91 (555) 222-4444",
			},
		},
		UpcomingEvents: []Event{
			{
				ID:          "techfest",
				Title:       "Annual Tech Fest",
				Date:        "2026-10-12T09:00:00Z",
				Location:    "Main Auditorium",
				Description: "Hackathons, robotics demos, and guest lectures.",
			},
			{
				ID:          "placement-drive",
				Title:       "Campus Placement Drive",
				Date:        "2026-11-03T10:00:00Z",
				Location:    "A-Block Seminar Hall",
				Description: "On-campus recruitment for final-year students.",
			},
		},
		ContactInfo: ContactInfo{
			General: ContactChannel{
				Email:   "info@ritroorkee.com",
				Phone:   "+91 (555) 123-4567",
				Address: "8th Km, Roorkee Dehradun Road, Puhana, Roorkee - 247667, Uttarakhand",
			},
			Admissions: ContactChannel{
				Email:    "admissions@ritroorkee.com",
				Phone:    "+91 (555) 123-4000",
				Location: "Admissions Office, 1st floor, A-Block",
			},
			Emergency: ContactChannel{
				Phone: "+91 (555) 911-9111",
			},
		},
	}
}
