package services

import "strings"

const generalCapabilitiesMatch = "General capabilities match"

// technologyVocabulary is checked in order; the order is the order of matchedAreas.
// Matching is a plain case-insensitive substring test, so "Java" also fires on
// "JavaScript" and "React" on "reactive".
var technologyVocabulary = []string{
	"React",
	"Angular",
	"Vue.js",
	"Node.js",
	"Python",
	"Java",
	".NET",
	"AWS",
	"Azure",
	"Google Cloud",
	"Docker",
	"Kubernetes",
	"Terraform",
	"PostgreSQL",
	"MySQL",
	"MongoDB",
	"Oracle",
	"Salesforce",
	"ServiceNow",
	"Machine Learning",
	"Artificial Intelligence",
	"Data Analytics",
	"Cybersecurity",
	"DevOps",
	"Microservices",
	"Blockchain",
	"Mobile",
}

// matchedAreas returns the vocabulary terms present in both texts, or the
// general-capabilities placeholder when none are.
func matchedAreas(projectText, companyProfile string) []string {
	project := strings.ToLower(projectText)
	profile := strings.ToLower(companyProfile)

	var areas []string
	for _, term := range technologyVocabulary {
		t := strings.ToLower(term)
		if strings.Contains(project, t) && strings.Contains(profile, t) {
			areas = append(areas, term)
		}
	}

	if len(areas) == 0 {
		return []string{generalCapabilitiesMatch}
	}
	return areas
}
