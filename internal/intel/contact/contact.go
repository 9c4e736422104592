// Package contact extracts email addresses and phone numbers from free text.
package contact

import "regexp"

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Optional country code, optional area code, then a 3-4 local number.
	phonePattern = regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?(?:\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}`)
)

// Info holds deduplicated contact tokens in first-seen order.
type Info struct {
	Emails []string `json:"emails,omitempty"`
	Phones []string `json:"phones,omitempty"`
}

// IsEmpty reports whether no contact token was found.
func (i Info) IsEmpty() bool {
	return len(i.Emails) == 0 && len(i.Phones) == 0
}

// Extract scans text for every email and phone token.
func Extract(text string) Info {
	return Info{
		Emails: Emails(text, 0),
		Phones: Phones(text, 0),
	}
}

// Emails returns up to limit unique emails; limit <= 0 means no limit.
func Emails(text string, limit int) []string {
	return uniqueMatches(emailPattern, text, limit)
}

// Phones returns up to limit unique phone numbers; limit <= 0 means no limit.
func Phones(text string, limit int) []string {
	return uniqueMatches(phonePattern, text, limit)
}

func uniqueMatches(re *regexp.Regexp, text string, limit int) []string {
	matches := re.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
