package suggest

import (
	"context"
	"unicode/utf8"

	"flightcast/models"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// MinQueryLength is the shortest query that reaches the location search.
const MinQueryLength = 3

// LocationSource is the upstream location search.
type LocationSource interface {
	SearchLocations(ctx context.Context, keyword string) ([]models.LocationCandidate, error)
}

// Suggester answers location queries from its cache or the upstream source.
type Suggester struct {
	source LocationSource
	cache  *Cache
	group  singleflight.Group
	logger *log.Logger
}

func NewSuggester(source LocationSource, cache *Cache, logger *log.Logger) *Suggester {
	if cache == nil {
		cache = NewCache()
	}
	return &Suggester{
		source: source,
		cache:  cache,
		logger: logger.WithPrefix("suggest"),
	}
}

// Suggest returns candidates for query. Queries shorter than MinQueryLength return
// an empty slice without any lookup. Upstream failures are logged and also yield
// an empty slice; nothing is cached for them.
func (s *Suggester) Suggest(ctx context.Context, query string) []models.LocationCandidate {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []models.LocationCandidate{}
	}

	if cached, ok := s.cache.Get(query); ok {
		s.logger.Debug("cache hit", "query", query)
		return cached
	}

	v, err, _ := s.group.Do(query, func() (any, error) {
		if cached, ok := s.cache.Get(query); ok {
			return cached, nil
		}
		candidates, err := s.source.SearchLocations(ctx, query)
		if err != nil {
			return nil, err
		}
		if candidates == nil {
			candidates = []models.LocationCandidate{}
		}
		s.cache.Put(query, candidates)
		return candidates, nil
	})
	if err != nil {
		s.logger.Error("location search failed", "query", query, "err", err)
		return []models.LocationCandidate{}
	}
	return v.([]models.LocationCandidate)
}

// Cache exposes the session cache backing this suggester.
func (s *Suggester) Cache() *Cache {
	return s.cache
}
