package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"daybrief/app/pkg/cache"
	"daybrief/app/pkg/logger"
	"daybrief/app/pkg/types"
)

// ErrUnavailable is returned when the catalog provider cannot be reached:
// missing credential or a non-success provider response. Filtering itself
// never fails; unknown fields pass permissively.
var ErrUnavailable = errors.New("catalog: provider unavailable")

const (
	// rawBatchLimit bounds how many raw provider results are normalized.
	rawBatchLimit = 25
	// MaxResults caps the filtered candidate list.
	MaxResults = 20
	// DefaultTTL is the cache validity window for catalog lookups.
	DefaultTTL = 24 * time.Hour
)

// QuerySpec is one catalog lookup produced by the action decider.
type QuerySpec struct {
	Item      string   `json:"item"`
	Query     string   `json:"q"`
	Budget    *float64 `json:"budget"`
	Deadline  string   `json:"deadline,omitempty"`
	PrimeOnly bool     `json:"prime_only"`
}

// SearchParams are the full inputs of one search; every field participates
// in the cache fingerprint.
type SearchParams struct {
	Query     string
	Budget    *float64
	Deadline  string // YYYY-MM-DD, empty for none
	PrimeOnly bool
	Zip       string
}

type Service struct {
	provider     types.CatalogSource
	providerName string
	cache        *cache.Store
	now          func() time.Time
}

func NewService(provider types.CatalogSource, providerName string, cacheDir string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		provider:     provider,
		providerName: providerName,
		cache:        cache.New(cacheDir, ttl),
		now:          time.Now,
	}
}

// Search returns normalized, filtered, deduplicated candidates for the
// query. Fresh cache entries are returned unmodified; otherwise the
// provider is called and the result persisted before returning.
func (s *Service) Search(ctx context.Context, p SearchParams) ([]types.Candidate, error) {
	key := cache.Fingerprint(map[string]interface{}{
		"provider":   s.providerName,
		"q":          p.Query,
		"budget":     p.Budget,
		"deadline":   p.Deadline,
		"prime_only": p.PrimeOnly,
		"zip":        p.Zip,
	})
	if data, ok := s.cache.Get(key); ok {
		var items []types.Candidate
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
	}

	raw, err := s.provider.Search(ctx, p.Query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(raw) > rawBatchLimit {
		raw = raw[:rawBatchLimit]
	}

	today := s.today()
	deadlineDays := daysUntil(p.Deadline, today)

	items := make([]types.Candidate, 0, len(raw))
	for _, r := range raw {
		if c, ok := normalize(r, deadlineDays, today); ok {
			items = append(items, c)
		}
	}

	items = Filter(items, p.Budget, deadlineDays, p.PrimeOnly)
	items = dedupe(items)
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}

	if data, err := json.Marshal(items); err == nil {
		if err := s.cache.Put(key, data); err != nil {
			logger.Error("catalog cache write failed: %v", err)
		}
	}
	return items, nil
}

// Filter applies budget, prime, and deadline constraints. Unknown fields
// never disqualify an item, so filtering an already filtered list with the
// same parameters is a no-op.
func Filter(items []types.Candidate, budget *float64, deadlineDays *int, primeOnly bool) []types.Candidate {
	out := make([]types.Candidate, 0, len(items))
	for _, c := range items {
		if budget != nil && c.Price != nil && *c.Price > *budget {
			continue
		}
		if primeOnly && !c.Prime {
			continue
		}
		if deadlineDays != nil && c.DeliveryDays != nil && *c.DeliveryDays > *deadlineDays {
			continue
		}
		out = append(out, c)
	}
	return out
}

// dedupe keeps the first occurrence per ID, falling back to title for
// items without one.
func dedupe(items []types.Candidate) []types.Candidate {
	seen := map[string]bool{}
	out := make([]types.Candidate, 0, len(items))
	for _, c := range items {
		key := c.ID
		if key == "" {
			key = c.Title
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysUntil converts a YYYY-MM-DD deadline into whole days from today,
// floored at zero. Empty or malformed deadlines read as no deadline.
func daysUntil(deadline string, today time.Time) *int {
	if deadline == "" {
		return nil
	}
	d, err := time.ParseInLocation("2006-01-02", deadline, time.UTC)
	if err != nil {
		return nil
	}
	days := int(d.Sub(today).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
