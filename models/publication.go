package models

// PublicationRecord is the persisted note that a route+dates key was
// published. Records are created or overwritten at publish time and never
// deleted; cardinality stays tiny (one write per day).
type PublicationRecord struct {
	PublishedAt string `json:"published_at"` // YYYY-MM-DD
	Category    string `json:"category"`
}

// PublicationHistory is the on-disk document holding every publication
// record keyed by ORIGIN-DEST-YYYY-MM-DD-YYYY-MM-DD.
type PublicationHistory struct {
	Version int                          `json:"version"`
	Entries map[string]PublicationRecord `json:"entries"`
}

// NewPublicationHistory returns an empty history at the current schema version.
func NewPublicationHistory() *PublicationHistory {
	return &PublicationHistory{
		Version: 1,
		Entries: make(map[string]PublicationRecord),
	}
}
