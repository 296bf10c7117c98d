package eligibility

// DefaultVocabulary returns the built-in vocabulary. Each call returns a fresh
// copy, so callers may merge into it freely.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		MajorClusters: map[string][]string{
			"Computing": {
				"Computer Science", "Software Engineering", "Information Technology",
				"Data Science", "Computer Engineering", "Information Systems", "Cybersecurity",
			},
			"Engineering": {
				"Mechanical Engineering", "Electrical Engineering", "Civil Engineering",
				"Chemical Engineering", "Aerospace Engineering", "Biomedical Engineering",
				"Computer Engineering", "Software Engineering",
			},
			"Natural Sciences": {
				"Biology", "Chemistry", "Physics", "Environmental Science",
				"Biochemistry", "Geology", "Astronomy", "Marine Biology",
			},
			"Arts": {
				"Fine Arts", "Music", "Theater", "Design", "Film",
				"Graphic Design", "Dance", "Photography",
			},
			"Humanities": {
				"History", "Literature", "Philosophy", "Anthropology",
				"English", "Classics", "Linguistics", "Religious Studies",
			},
			"Health Sciences": {
				"Nursing", "Pre-Med", "Public Health", "Pharmacy", "Medicine", "Kinesiology",
			},
			"Business": {
				"Business Administration", "Economics", "Finance", "Accounting", "Marketing", "Management",
			},
		},
		MajorAliases: map[string]string{
			"CS":                 "Computer Science",
			"Comp Sci":           "Computer Science",
			"Computer Sciences":  "Computer Science",
			"IT":                 "Information Technology",
			"SWE":                "Software Engineering",
			"EE":                 "Electrical Engineering",
			"ME":                 "Mechanical Engineering",
			"Bio":                "Biology",
			"Chem":               "Chemistry",
			"Premed":             "Pre-Med",
			"Theatre":            "Theater",
			"Business":           "Business Administration",
			"Environmental Sci":  "Environmental Science",
			"Visual Arts":        "Fine Arts",
			"Performing Arts":    "Theater",
			"Registered Nursing": "Nursing",
		},
		DemographicAliases: map[string]string{
			"Woman":     "Female",
			"Women":     "Female",
			"F":         "Female",
			"Man":       "Male",
			"Men":       "Male",
			"M":         "Male",
			"Nonbinary": "Non-binary",
			"Enby":      "Non-binary",
			"NB":        "Non-binary",
		},
		Unspecified: []string{
			"Prefer not to say", "Unspecified", "Not specified", "N/A", "None", "Decline to state",
		},
		RegionAliases: map[string]string{
			"United States":            "USA",
			"United States of America": "USA",
			"US":                       "USA",
			"America":                  "USA",
			"Mid-West":                 "Midwest",
		},
		RegionParents: map[string][]string{
			"Midwest":        {"USA"},
			"Northeast":      {"USA"},
			"South":          {"USA"},
			"West":           {"USA"},
			"Ohio":           {"Midwest"},
			"Michigan":       {"Midwest"},
			"Illinois":       {"Midwest"},
			"Indiana":        {"Midwest"},
			"Wisconsin":      {"Midwest"},
			"Minnesota":      {"Midwest"},
			"Iowa":           {"Midwest"},
			"Missouri":       {"Midwest"},
			"Kansas":         {"Midwest"},
			"Nebraska":       {"Midwest"},
			"North Dakota":   {"Midwest"},
			"South Dakota":   {"Midwest"},
			"New York":       {"Northeast"},
			"New Jersey":     {"Northeast"},
			"Pennsylvania":   {"Northeast"},
			"Massachusetts":  {"Northeast"},
			"Connecticut":    {"Northeast"},
			"Maine":          {"Northeast"},
			"Vermont":        {"Northeast"},
			"Rhode Island":   {"Northeast"},
			"New Hampshire":  {"Northeast"},
			"Texas":          {"South"},
			"Florida":        {"South"},
			"Georgia":        {"South"},
			"North Carolina": {"South"},
			"South Carolina": {"South"},
			"Virginia":       {"South"},
			"Tennessee":      {"South"},
			"Alabama":        {"South"},
			"Louisiana":      {"South"},
			"Kentucky":       {"South"},
			"California":     {"West"},
			"Washington":     {"West"},
			"Oregon":         {"West"},
			"Colorado":       {"West"},
			"Arizona":        {"West"},
			"Nevada":         {"West"},
			"Utah":           {"West"},
		},
	}
}
