package linkedin

import "strings"

// notAvailable is the sentinel the parse phases leave in any field they
// could not fill. The fallback phase only touches fields still at the
// sentinel, and the final cleaning pass strips entries that kept it.
const notAvailable = "Not Available"

// Field-length caps, matching the portfolio schema the front end renders.
const (
	maxHeadlineLen    = 220
	maxLocationLen    = 100
	maxPositionDesc   = 100
	maxProjectDesc    = 150
	maxPositions      = 3
	maxEducation      = 2
	maxSkills         = 5
	maxAccomplishment = 2
)

// Profile is the scraped LinkedIn public profile in portfolio-schema form.
type Profile struct {
	ID              string          `json:"id"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Headline        string          `json:"headline"`
	ProfilePicture  string          `json:"profilePicture"`
	Location        string          `json:"location"`
	Positions       []Position      `json:"positions"`
	Education       []Education     `json:"education"`
	Skills          []string        `json:"skills"`
	Accomplishments Accomplishments `json:"accomplishments"`
}

// Position is one work-experience entry.
type Position struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Dates       string `json:"dates,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education is one education entry.
type Education struct {
	School       string `json:"school"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	Dates        string `json:"dates,omitempty"`
}

// Accomplishments groups the independently scraped project and
// certification lists.
type Accomplishments struct {
	Projects       []AccomplishmentProject `json:"projects"`
	Certifications []Certification         `json:"certifications"`
}

type AccomplishmentProject struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
}

// newProfile returns a Profile with every scalar field at the sentinel and
// every list empty.
func newProfile() *Profile {
	return &Profile{
		ID:             notAvailable,
		FirstName:      notAvailable,
		LastName:       notAvailable,
		Headline:       notAvailable,
		ProfilePicture: notAvailable,
		Location:       notAvailable,
		Positions:      []Position{},
		Education:      []Education{},
		Skills:         []string{},
		Accomplishments: Accomplishments{
			Projects:       []AccomplishmentProject{},
			Certifications: []Certification{},
		},
	}
}

// clean strips entries still carrying the sentinel, deduplicates skills,
// and enforces the list caps. Runs once, after both parse phases.
func (p *Profile) clean() {
	positions := p.Positions[:0]
	for _, pos := range p.Positions {
		if pos.Title != notAvailable && pos.Company != notAvailable {
			positions = append(positions, pos)
		}
	}
	p.Positions = positions

	education := p.Education[:0]
	for _, edu := range p.Education {
		if edu.School != notAvailable && edu.School != "" {
			education = append(education, edu)
		}
	}
	p.Education = education

	seen := map[string]bool{}
	skills := p.Skills[:0]
	for _, s := range p.Skills {
		s = strings.TrimSpace(s)
		if s == "" || s == notAvailable || seen[s] {
			continue
		}
		seen[s] = true
		skills = append(skills, s)
		if len(skills) == maxSkills {
			break
		}
	}
	p.Skills = skills

	projects := p.Accomplishments.Projects[:0]
	for _, proj := range p.Accomplishments.Projects {
		if proj.Name != "" && proj.Name != notAvailable {
			projects = append(projects, proj)
		}
		if len(projects) == maxAccomplishment {
			break
		}
	}
	p.Accomplishments.Projects = projects

	certs := p.Accomplishments.Certifications[:0]
	for _, cert := range p.Accomplishments.Certifications {
		if cert.Name != "" && cert.Name != notAvailable {
			certs = append(certs, cert)
		}
		if len(certs) == maxAccomplishment {
			break
		}
	}
	p.Accomplishments.Certifications = certs
}

// setName splits a full name on the first space into first/last.
func (p *Profile) setName(fullName string) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return
	}
	first, rest, found := strings.Cut(fullName, " ")
	p.FirstName = first
	if found && rest != "" {
		p.LastName = rest
	} else {
		p.LastName = notAvailable
	}
}

func truncate(s string, max int) string {
	// Cap by runes, not bytes: a byte slice could cut a multi-byte
	// character in half and emit invalid UTF-8.
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
