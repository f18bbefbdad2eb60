package domain

import "time"

// SiteSettings is the single mutable settings record. It is read per-request
// through a provider so changes take effect without a redeploy.
type SiteSettings struct {
	ID                  int32     `json:"id"`
	MaxResubmitCount    int32     `json:"max_resubmit_count"`
	AllowedEmailDomains []string  `json:"allowed_email_domains"`
	CheckerURL          string    `json:"checker_url"`
	CheckerAPIKey       string    `json:"-"`
	AuditEnabled        bool      `json:"audit_enabled"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultMaxResubmitCount applies when the settings record has no explicit
// bound.
const DefaultMaxResubmitCount int32 = 2

// EmailDomainAllowed checks the register email's domain against the
// configured allow-list. An empty list allows every domain.
func (s *SiteSettings) EmailDomainAllowed(domain string) bool {
	if len(s.AllowedEmailDomains) == 0 {
		return true
	}
	for _, d := range s.AllowedEmailDomains {
		if d == domain {
			return true
		}
	}
	return false
}
