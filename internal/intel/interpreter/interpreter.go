// Package interpreter classifies a free-text command into an intent that
// drives which data sources the agent consults.
package interpreter

import (
	"regexp"
	"strings"

	"intel-agent/internal/intel/sources"
)

// Kind identifies which Intent variant is active.
type Kind string

const (
	KindURL     Kind = "url"
	KindCompany Kind = "company"
	KindPerson  Kind = "person"
)

// UnknownPerson is the subject used when no name could be extracted.
const UnknownPerson = "Unknown Person"

// Intent is the classified meaning of a command. Exactly one payload is
// populated, according to Kind.
type Intent struct {
	Kind    Kind               `json:"kind"`
	URLs    []string           `json:"urls,omitempty"`
	Company string             `json:"company,omitempty"`
	Name    string             `json:"name,omitempty"`
	Sources []sources.SourceID `json:"sources,omitempty"`
}

// Target is the one-line descriptor echoed ahead of the gathered data.
func (i Intent) Target() string {
	switch i.Kind {
	case KindURL:
		return "URLs: " + strings.Join(i.URLs, ", ")
	case KindCompany:
		return "Company: " + i.Company
	default:
		return "Person: " + i.Name
	}
}

// A company name is a run of capitalized words; "&" may join them.
const companyName = `([A-Z][A-Za-z&]*(?:\s+[A-Z&][A-Za-z&]*)*)`

var (
	urlPattern = regexp.MustCompile(`https?://[^\s]+`)

	companyKeywords = []string{"employees", "staff", "team", "leads", "people from", "workers at"}

	// Tried in order; the first match wins.
	companyTemplates = []*regexp.Regexp{
		regexp.MustCompile(`\b(?i:company|business|firm|corporation|corp|inc|ltd)\s+` + companyName),
		regexp.MustCompile(`\b(?i:from|at|of)\s+` + companyName + `\s+(?i:company|employees|staff|team|workers)\b`),
		regexp.MustCompile(`\b(?i:employees?|staff|workers?|people|team)\s+(?i:from|at|of)\s+` + companyName),
		regexp.MustCompile(`\b(?i:leads?)\s+(?i:from|at|of)\s+` + companyName),
	}

	personPattern = regexp.MustCompile(`about\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`)
)

// Classify turns a command into an Intent. It never fails and performs no I/O.
func Classify(command string) Intent {
	if urls := urlPattern.FindAllString(command, -1); len(urls) > 0 {
		return Intent{Kind: KindURL, URLs: urls}
	}

	if company, ok := extractCompany(command); ok {
		return Intent{Kind: KindCompany, Company: company}
	}

	return Intent{
		Kind:    KindPerson,
		Name:    extractPerson(command),
		Sources: selectSources(command),
	}
}

func extractCompany(command string) (string, bool) {
	lower := strings.ToLower(command)

	matched := false
	for _, kw := range companyKeywords {
		if strings.Contains(lower, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return "", false
	}

	for _, re := range companyTemplates {
		if m := re.FindStringSubmatch(command); m != nil {
			return strings.Join(strings.Fields(m[1]), " "), true
		}
	}
	return "", false
}

func extractPerson(command string) string {
	if m := personPattern.FindStringSubmatch(command); m != nil {
		return strings.Join(strings.Fields(m[1]), " ")
	}
	return UnknownPerson
}

// selectSources returns the person sources named in the command, in fixed
// order, or all of them when none is named.
func selectSources(command string) []sources.SourceID {
	lower := strings.ToLower(command)

	var selected []sources.SourceID
	for _, id := range sources.PersonSources {
		if strings.Contains(lower, string(id)) {
			selected = append(selected, id)
		}
	}
	if len(selected) == 0 {
		selected = append(selected, sources.PersonSources...)
	}
	return selected
}
