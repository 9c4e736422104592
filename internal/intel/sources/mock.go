package sources

import (
	"context"
	"fmt"
	"strings"
)

// LinkedInProvider returns a canned professional-network profile.
type LinkedInProvider struct{}

func (LinkedInProvider) Fetch(_ context.Context, name string) string {
	email := strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@techcorp.com"
	return fmt.Sprintf("LinkedIn: %s - Senior Developer at Tech Corp, 5+ years experience. Location: San Francisco, CA. Email: %s", name, email)
}

// TwitterProvider returns a canned social-network profile without contact tokens.
type TwitterProvider struct{}

func (TwitterProvider) Fetch(_ context.Context, name string) string {
	return fmt.Sprintf("Twitter: %s - Tech influencer, 10K followers. Bio location: SF Bay Area. Contact: DM open for collaborations.", name)
}

// GitHubProvider returns a canned code-forum profile.
type GitHubProvider struct{}

func (GitHubProvider) Fetch(_ context.Context, name string) string {
	email := strings.ReplaceAll(strings.ToLower(name), " ", "") + "@gmail.com"
	return fmt.Sprintf("GitHub: %s - 50+ repos, Python/JS expert. Location: California, USA. Public email: %s", name, email)
}

type employee struct {
	name     string
	title    string
	mailbox  string
	phone    string
	location string
	address  string
}

var directory = []employee{
	{"John Smith", "CEO", "j.smith", "+1-555-0101", "New York, NY", "123 Business Ave, NYC 10001"},
	{"Sarah Johnson", "CTO", "sarah.j", "+1-555-0102", "San Francisco, CA", "456 Tech St, SF 94105"},
	{"Mike Chen", "VP Engineering", "m.chen", "+1-555-0103", "Austin, TX", "789 Innovation Dr, Austin 78701"},
}

// CompanyDirectoryProvider returns a canned employee directory for a company.
type CompanyDirectoryProvider struct{}

func (CompanyDirectoryProvider) Fetch(_ context.Context, company string) string {
	compact := strings.ReplaceAll(strings.ToLower(company), " ", "")
	domain := compact + ".com"
	profileSuffix := strings.ReplaceAll(strings.ToLower(company), " ", "-")

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s - Employee Directory\n", company)
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n")

	for _, e := range directory {
		slug := strings.ReplaceAll(strings.ToLower(e.name), " ", "-")
		fmt.Fprintf(&b, "👤 %s - %s\n", e.name, e.title)
		fmt.Fprintf(&b, "   📧 %s@%s\n", e.mailbox, domain)
		fmt.Fprintf(&b, "   📱 %s\n", e.phone)
		fmt.Fprintf(&b, "   📍 %s\n", e.location)
		fmt.Fprintf(&b, "   🏢 %s\n", e.address)
		fmt.Fprintf(&b, "   🔗 linkedin.com/in/%s-%s\n\n", slug, profileSuffix)
	}
	return b.String()
}
