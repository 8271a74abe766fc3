package matching

import "strings"

// GuestRecord is one input row. All string fields default to "" rather than
// null so every similarity function stays total; IsHead is tri-state because
// the source column is nullable.
type GuestRecord struct {
	ID               string `json:"id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Organization     string `json:"organization"`
	OrganizationType string `json:"organization_type"`
	BankTitle        string `json:"bank_title"`
	Post             string `json:"post"`
	CompanyTitle     string `json:"company_title"`
	HoldingTitle     string `json:"holding_title"`
	MobileNumber     string `json:"mobile_number"`
	IsHead           *bool  `json:"is_head,omitempty"`
}

// NormalizedRecord is a GuestRecord after canonicalization and prefix
// stripping. It is produced once per run and treated as immutable afterwards.
type NormalizedRecord struct {
	GuestRecord
}

// DisplayName renders the record's full name for output rows and for the
// resolver's dedup key.
func (r NormalizedRecord) DisplayName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// NormalizeRecords extracts the comparable field tuple from each record.
// First and last names go through the full pipeline (canonicalization plus
// prefix stripping); organization, post and bank titles are canonicalized
// only. The input slice is never mutated.
func NormalizeRecords(records []GuestRecord, n *Normalizer) []NormalizedRecord {
	out := make([]NormalizedRecord, len(records))
	for i, rec := range records {
		norm := rec
		norm.FirstName = n.Normalize(rec.FirstName)
		norm.LastName = n.Normalize(rec.LastName)
		norm.Organization = n.NormalizeText(rec.Organization)
		norm.OrganizationType = n.NormalizeText(rec.OrganizationType)
		norm.BankTitle = n.NormalizeText(rec.BankTitle)
		norm.Post = n.NormalizeText(rec.Post)
		norm.CompanyTitle = n.NormalizeText(rec.CompanyTitle)
		norm.HoldingTitle = n.NormalizeText(rec.HoldingTitle)
		norm.MobileNumber = n.NormalizeText(rec.MobileNumber)
		out[i] = NormalizedRecord{GuestRecord: norm}
	}
	return out
}
