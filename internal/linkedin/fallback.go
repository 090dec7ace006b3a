package linkedin

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CSS fallback phase: for every field the JSON-LD phase left at the
// sentinel, try an ordered list of selectors covering the LinkedIn DOM
// variants we have seen (logged-out top card, old pv-* classes, utility
// classes) and take the first non-empty match.
//
// These selectors are pinned to a markup snapshot and WILL rot as LinkedIn
// ships new DOMs. A selector miss degrades the field, not the request.

var nameSelectors = []string{
	".text-heading-xlarge",
	".top-card-layout__title",
	".pv-text-details__left-panel h1",
	".ph5 .pb2 h1",
}

var headlineSelectors = []string{
	".text-body-medium.break-words",
	".top-card-layout__headline",
	".pv-text-details__left-panel .text-body-medium",
	".ph5 .pb2 .text-body-medium",
}

var locationSelectors = []string{
	".text-body-small.inline.t-black--light.break-words",
	".top-card-layout__first-subline",
	".pv-text-details__left-panel .pb2 .text-body-small",
}

var photoSelectors = []string{
	".pv-top-card__photo img",
	".top-card-layout__entity-image img",
	".presence-entity__image img",
}

// applyHTMLFallbacks fills any field still at its sentinel from the raw
// HTML, then scrapes the accomplishment sections (which have no JSON-LD
// counterpart at all).
func applyHTMLFallbacks(doc *goquery.Document, profile *Profile) {
	if profile.FirstName == notAvailable || profile.LastName == notAvailable {
		if name := firstSelectorText(doc, nameSelectors); name != "" {
			profile.setName(name)
		}
	}

	if profile.Headline == notAvailable {
		if headline := firstSelectorText(doc, headlineSelectors); headline != "" {
			profile.Headline = truncate(headline, maxHeadlineLen)
		}
	}

	if profile.Location == notAvailable {
		if location := firstSelectorText(doc, locationSelectors); location != "" {
			profile.Location = truncate(location, maxLocationLen)
		}
	}

	if profile.ProfilePicture == notAvailable {
		for _, sel := range photoSelectors {
			if src, ok := doc.Find(sel).First().Attr("src"); ok && src != "" {
				profile.ProfilePicture = src
				break
			}
		}
	}

	if len(profile.Positions) == 0 {
		scrapePositions(doc, profile)
	}
	if len(profile.Education) == 0 {
		scrapeEducation(doc, profile)
	}

	scrapeAccomplishments(doc, profile)
}

// firstSelectorText returns the text of the first selector in the cascade
// that matches a non-empty element.
func firstSelectorText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// itemText returns the trimmed text of the first match of sel inside s.
func itemText(s *goquery.Selection, sel string) string {
	return strings.TrimSpace(s.Find(sel).First().Text())
}

func scrapePositions(doc *goquery.Document, profile *Profile) {
	doc.Find(".experience-item, .pv-entity__position-group-pager li").
		Slice(0, intMin(maxPositions, doc.Find(".experience-item, .pv-entity__position-group-pager li").Length())).
		Each(func(_ int, s *goquery.Selection) {
			title := itemText(s, ".t-16.t-black.t-bold, .pv-entity__summary-info h3")
			if title == "" {
				return
			}
			pos := Position{
				Title:   title,
				Company: firstNonEmpty(itemText(s, ".pv-entity__secondary-title, .t-14.t-black--light"), notAvailable),
				Dates:   itemText(s, ".pv-entity__date-range, .t-12.t-black--light"),
			}
			if desc := itemText(s, ".pv-entity__description, .t-14"); desc != "" {
				pos.Description = truncate(desc, maxPositionDesc)
			}
			profile.Positions = append(profile.Positions, pos)
		})
}

func scrapeEducation(doc *goquery.Document, profile *Profile) {
	doc.Find(".education-item, .pv-education-entity").
		Slice(0, intMin(maxEducation, doc.Find(".education-item, .pv-education-entity").Length())).
		Each(func(_ int, s *goquery.Selection) {
			school := itemText(s, ".pv-entity__school-name, .t-16.t-black.t-bold")
			if school == "" {
				return
			}
			profile.Education = append(profile.Education, Education{
				School:       school,
				Degree:       itemText(s, ".pv-entity__degree-name, .t-14.t-black--light"),
				FieldOfStudy: itemText(s, ".pv-entity__fos, .t-14"),
				Dates:        itemText(s, ".pv-entity__dates, .t-12.t-black--light"),
			})
		})
}

// scrapeAccomplishments pulls projects and certifications from the
// accomplishments blocks. These are scraped unconditionally (no JSON-LD
// source exists), capped at two each.
func scrapeAccomplishments(doc *goquery.Document, profile *Profile) {
	projectItems := doc.Find(".pv-accomplishments-block .pv-accomplishments-block__content .pv-accomplishments-block__summary-list li")
	projectItems.Slice(0, intMin(maxAccomplishment, projectItems.Length())).
		Each(func(_ int, s *goquery.Selection) {
			name := itemText(s, ".pv-accomplishment-entity__title")
			if name == "" {
				return
			}
			proj := AccomplishmentProject{Name: name}
			if desc := itemText(s, ".pv-accomplishment-entity__description"); desc != "" {
				proj.Description = truncate(desc, maxProjectDesc)
			}
			profile.Accomplishments.Projects = append(profile.Accomplishments.Projects, proj)
		})

	certItems := doc.Find(".pv-profile-section__section-info .pv-accomplishments-block .pv-accomplishments-block__content .pv-accomplishments-block__summary-list li")
	certItems.Slice(0, intMin(maxAccomplishment, certItems.Length())).
		Each(func(_ int, s *goquery.Selection) {
			name := itemText(s, ".pv-accomplishment-entity__title")
			if name == "" {
				return
			}
			profile.Accomplishments.Certifications = append(profile.Accomplishments.Certifications, Certification{
				Name:   name,
				Issuer: itemText(s, ".pv-accomplishment-entity__issuer"),
				Date:   itemText(s, ".pv-accomplishment-entity__date"),
			})
		})
}

func intMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}
