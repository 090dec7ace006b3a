package linkedin

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// JSON-LD phase: LinkedIn embeds schema.org structured data in a
// <script type="application/ld+json"> tag. When present it is by far the
// most reliable source, so it runs before any CSS scraping.
//
// The payload is loose in the usual schema.org ways — a field can be a
// string, an object, or an array of either, and the Person node sits
// either at the top level or inside a "@graph" array. Every field here
// tolerates all of those shapes instead of trusting one.

// ldText decodes a JSON value that may be a string or an object carrying a
// "name". Anything else decodes to "".
type ldText string

func (t *ldText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ldText(s)
	case '{':
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*t = ldText(obj.Name)
	}
	return nil
}

// ldList decodes a JSON value that may be a single T or an array of T.
type ldList[T any] []T

func (l *ldList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]T)(l))
	}
	var single T
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = ldList[T]{single}
	return nil
}

// ldAddress decodes either a plain string or a schema.org PostalAddress.
type ldAddress string

func (a *ldAddress) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = ldAddress(s)
	case '{':
		var obj struct {
			Locality string `json:"addressLocality"`
			Region   string `json:"addressRegion"`
			Country  ldText `json:"addressCountry"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		var parts []string
		for _, p := range []string{obj.Locality, obj.Region, string(obj.Country)} {
			if strings.TrimSpace(p) != "" {
				parts = append(parts, p)
			}
		}
		*a = ldAddress(strings.Join(parts, ", "))
	}
	return nil
}

// ldOrg covers both worksFor and alumniOf entries; the two node types
// overlap enough to share a struct.
type ldOrg struct {
	Name         string `json:"name"`
	JobTitle     ldText `json:"jobTitle"`
	Description  string `json:"description"`
	CourseCode   string `json:"courseCode"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// ldPerson is the schema.org Person node.
type ldPerson struct {
	Type       ldList[ldText] `json:"@type"`
	Name       string         `json:"name"`
	Descr      string         `json:"description"`
	JobTitle   ldText         `json:"jobTitle"`
	Address    ldAddress      `json:"address"`
	Image      ldList[ldText] `json:"image"`
	WorksFor   ldList[ldOrg]  `json:"worksFor"`
	AlumniOf   ldList[ldOrg]  `json:"alumniOf"`
	KnowsAbout ldList[ldText] `json:"knowsAbout"`
}

func (p *ldPerson) isPerson() bool {
	for _, t := range p.Type {
		if string(t) == "Person" {
			return true
		}
	}
	return false
}

// parseJSONLD locates the structured-data script and, if it holds a Person
// node, fills the profile from it. Parse errors are swallowed — the CSS
// fallback phase covers whatever this phase couldn't extract.
func parseJSONLD(doc *goquery.Document, profile *Profile) {
	script := doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		return
	}

	raw := []byte(script.Text())

	person, ok := findPersonNode(raw)
	if !ok {
		return
	}

	if person.Name != "" {
		profile.setName(person.Name)
	}

	if headline := firstNonEmpty(person.Descr, string(person.JobTitle)); headline != "" {
		profile.Headline = truncate(headline, maxHeadlineLen)
	}

	if loc := strings.TrimSpace(string(person.Address)); loc != "" {
		profile.Location = truncate(loc, maxLocationLen)
	}

	if len(person.Image) > 0 && string(person.Image[0]) != "" {
		profile.ProfilePicture = string(person.Image[0])
	}

	for i, role := range person.WorksFor {
		if i == maxPositions {
			break
		}
		pos := Position{
			Title:   firstNonEmpty(string(role.JobTitle), role.Name, notAvailable),
			Company: firstNonEmpty(role.Name, notAvailable),
			Dates:   formatDates(role.StartDate, role.EndDate),
		}
		if role.Description != "" {
			pos.Description = truncate(role.Description, maxPositionDesc)
		}
		profile.Positions = append(profile.Positions, pos)
	}

	for i, school := range person.AlumniOf {
		if i == maxEducation {
			break
		}
		edu := Education{
			School:       firstNonEmpty(school.Name, notAvailable),
			Degree:       firstNonEmpty(school.Description, school.CourseCode),
			FieldOfStudy: school.FieldOfStudy,
			Dates:        formatDates(school.StartDate, school.EndDate),
		}
		profile.Education = append(profile.Education, edu)
	}

	for i, skill := range person.KnowsAbout {
		if i == maxSkills {
			break
		}
		if s := strings.TrimSpace(string(skill)); s != "" {
			profile.Skills = append(profile.Skills, s)
		}
	}
}

// findPersonNode digs the Person node out of the JSON-LD document, looking
// at the top level first and then inside "@graph".
func findPersonNode(raw []byte) (*ldPerson, bool) {
	var top ldPerson
	if err := json.Unmarshal(raw, &top); err == nil && top.isPerson() {
		return &top, true
	}

	var graph struct {
		Graph []json.RawMessage `json:"@graph"`
	}
	if err := json.Unmarshal(raw, &graph); err != nil {
		return nil, false
	}
	for _, node := range graph.Graph {
		var p ldPerson
		if err := json.Unmarshal(node, &p); err == nil && p.isPerson() {
			return &p, true
		}
	}
	return nil, false
}

// formatDates renders a "2020 - 2023" style range from schema.org dates.
// A missing end date means the role is current → "Present". Returns ""
// when neither date parses.
func formatDates(startDate, endDate string) string {
	start := yearOf(startDate)
	end := yearOf(endDate)
	if start == "" && end == "" {
		return ""
	}
	if end == "" {
		end = "Present"
	}
	return strings.TrimSpace(start + " - " + end)
}

// yearOf extracts the year from a date string in any of the formats
// LinkedIn emits. Returns "" if none match.
func yearOf(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006", time.RFC3339} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("2006")
		}
	}
	return ""
}

// firstNonEmpty returns the first argument that isn't blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
