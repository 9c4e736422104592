// Package aggregator turns the labeled text gathered from data sources into a
// rendered intelligence summary.
package aggregator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"intel-agent/internal/intel/contact"
)

// StubNarrative is the fixed narrative produced without a language model.
const StubNarrative = "Professional Intelligence Summary: Comprehensive profile with contact details extracted from multiple sources."

const placeholderConfidence = 0.8

// advertisedSources is the literal source list reported in JSON output.
var advertisedSources = []string{"linkedin", "twitter", "github", "web", "company"}

const markdownSources = "## Data Sources\n- LinkedIn\n- Twitter\n- GitHub\n- Web Scraping\n- Company Directory"

// Summary is the terminal artifact of a run.
type Summary struct {
	Narrative   string
	ContactInfo contact.Info
	Format      OutputFormat
}

// NewSummary extracts contact info from labeledText and pairs it with narrative.
func NewSummary(narrative, labeledText string, format OutputFormat) *Summary {
	return &Summary{
		Narrative:   narrative,
		ContactInfo: contact.Extract(labeledText),
		Format:      format,
	}
}

type jsonSummary struct {
	Summary     string       `json:"summary"`
	ContactInfo contact.Info `json:"contact_info"`
	Confidence  float64      `json:"confidence"`
	Sources     []string     `json:"sources"`
}

// Render produces the output string for s.Format.
func (s *Summary) Render() (string, error) {
	switch s.Format {
	case FormatJSON:
		return s.renderJSON()
	case FormatMarkdown:
		return s.renderMarkdown(), nil
	case FormatText, "":
		return s.renderText(), nil
	default:
		_, err := ParseOutputFormat(string(s.Format))
		return "", err
	}
}

func (s *Summary) String() string {
	out, err := s.Render()
	if err != nil {
		return err.Error()
	}
	return out
}

func (s *Summary) renderText() string {
	var b strings.Builder
	b.WriteString(s.Narrative)
	if s.ContactInfo.IsEmpty() {
		return b.String()
	}

	b.WriteString("\n\n📞 CONTACT INFO:")
	if len(s.ContactInfo.Emails) > 0 {
		fmt.Fprintf(&b, "\n📧 Emails: %s", strings.Join(s.ContactInfo.Emails, ", "))
	}
	if len(s.ContactInfo.Phones) > 0 {
		fmt.Fprintf(&b, "\n📱 Phones: %s", strings.Join(s.ContactInfo.Phones, ", "))
	}
	return b.String()
}

func (s *Summary) renderMarkdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Intelligence Summary\n\n%s\n\n", s.Narrative)

	if !s.ContactInfo.IsEmpty() {
		b.WriteString("## 📞 Contact Information\n")
		if len(s.ContactInfo.Emails) > 0 {
			fmt.Fprintf(&b, "**Emails**: %s\n\n", strings.Join(s.ContactInfo.Emails, ", "))
		}
		if len(s.ContactInfo.Phones) > 0 {
			fmt.Fprintf(&b, "**Phones**: %s\n\n", strings.Join(s.ContactInfo.Phones, ", "))
		}
	}

	b.WriteString(markdownSources)
	return b.String()
}

func (s *Summary) renderJSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	err := enc.Encode(jsonSummary{
		Summary:     s.Narrative,
		ContactInfo: s.ContactInfo,
		Confidence:  placeholderConfidence,
		Sources:     advertisedSources,
	})
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
