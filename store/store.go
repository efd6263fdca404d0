// Package store persists portfolio snapshots and flags when a site has
// changed since its previous scrape.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/folio/models"
	"github.com/use-agent/folio/simhash"
)

// Store saves snapshots. Implementations are safe for concurrent use.
type Store interface {
	// SaveSnapshot validates r, compares it with the latest snapshot of
	// the same URL and records it.
	SaveSnapshot(ctx context.Context, r *models.ScrapeResult) (*Snapshot, error)

	// Latest returns the newest snapshot for url, or nil when there is none.
	Latest(ctx context.Context, url string) (*Snapshot, error)

	Close(ctx context.Context) error
}

// Snapshot is one stored scrape.
type Snapshot struct {
	ID            string    `bson:"_id" json:"id"`
	URL           string    `bson:"url" json:"url"`
	NormalizedURL string    `bson:"normalized_url" json:"normalized_url"`
	ScrapedAt     time.Time `bson:"scraped_at" json:"scraped_at"`

	// Hex simhash fingerprints of the extracted content and the layout.
	ContentFingerprint   string `bson:"content_fingerprint" json:"content_fingerprint"`
	StructureFingerprint string `bson:"structure_fingerprint" json:"structure_fingerprint"`

	// PreviousID is empty for the first snapshot of a URL.
	PreviousID        string `bson:"previous_id,omitempty" json:"previous_id,omitempty"`
	ContentChanged    bool   `bson:"content_changed" json:"content_changed"`
	StructureChanged  bool   `bson:"structure_changed" json:"structure_changed"`
	ContentDistance   int    `bson:"content_distance" json:"content_distance"`
	StructureDistance int    `bson:"structure_distance" json:"structure_distance"`

	Result *models.ScrapeResult `bson:"result" json:"result"`
}

// Changed reports whether anything moved past the threshold.
func (s *Snapshot) Changed() bool { return s.ContentChanged || s.StructureChanged }

// NormalizeURL is the lookup key for a URL: lowercased, without a
// trailing slash or fragment.
func NormalizeURL(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(u, "/")
}

// NewSnapshot fingerprints r and diffs it against prev, which may be nil.
func NewSnapshot(r *models.ScrapeResult, prev *Snapshot) *Snapshot {
	content := simhash.OfPortfolio(r)
	structure := simhash.OfStructure(r.RawHTML)

	s := &Snapshot{
		ID:                   uuid.NewString(),
		URL:                  r.URL,
		NormalizedURL:        NormalizeURL(r.URL),
		ScrapedAt:            r.ScrapedAt,
		ContentFingerprint:   content.String(),
		StructureFingerprint: structure.String(),
		Result:               r,
	}
	if s.ScrapedAt.IsZero() {
		s.ScrapedAt = time.Now().UTC()
	}
	if prev == nil {
		return s
	}

	s.PreviousID = prev.ID
	if pc, err := simhash.Parse(prev.ContentFingerprint); err == nil {
		s.ContentDistance = content.Distance(pc)
		s.ContentChanged = s.ContentDistance > simhash.ChangeThreshold
	}
	if ps, err := simhash.Parse(prev.StructureFingerprint); err == nil {
		s.StructureDistance = structure.Distance(ps)
		s.StructureChanged = s.StructureDistance > simhash.ChangeThreshold
	}
	return s
}

func storageError(msg string, err error) *models.ScrapeError {
	return models.NewScrapeError(models.ErrCodeStorage, msg, err)
}
