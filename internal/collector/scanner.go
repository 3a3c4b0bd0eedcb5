package collector

import (
	"context"

	"github.com/google/go-github/v57/github"
	"github.com/klimeurt/healthrepo-collector/internal/classifier"
	"github.com/klimeurt/healthrepo-collector/internal/config"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Scanner runs the search queries and builds the classified collection
type Scanner struct {
	config   *config.Config
	searcher *Searcher
	nc       *nats.Conn
	log      logrus.FieldLogger
}

// New creates a new Scanner instance
func New(cfg *config.Config, log logrus.FieldLogger) (*Scanner, error) {
	searcher, err := NewSearcher(cfg, log)
	if err != nil {
		return nil, err
	}

	// Connect to NATS when publishing is enabled
	nc, err := connectNATS(cfg.NATSUrl)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		config:   cfg,
		searcher: searcher,
		nc:       nc,
		log:      log,
	}, nil
}

// Collect runs every query in order and returns the deduplicated, classified
// repositories. A failing query is logged and skipped; the run stops early
// once the target is reached or ctx is done.
func (s *Scanner) Collect(ctx context.Context, queries []string) (Collection, RunStats) {
	coll := make(Collection)
	dedup := NewDeduplicator()
	stats := RunStats{Target: s.config.Target}

	s.log.Infof("Starting repository search: %d queries, target %d", len(queries), s.config.Target)

search:
	for _, query := range queries {
		if ctx.Err() != nil {
			s.log.WithError(ctx.Err()).Warn("Search interrupted, keeping partial results")
			break
		}
		stats.Queries++

		for page, err := range s.searcher.Pages(ctx, query) {
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"query": query,
					"page":  page.Number,
				}).Warn("Query failed, continuing with next query")
				stats.Failures = append(stats.Failures, QueryFailure{Query: query, Page: page.Number, Err: err})
				break
			}
			stats.Pages++

			for _, r := range Absorb(coll, dedup, page.Repositories) {
				if err := s.publishRepository(r); err != nil {
					s.log.WithError(err).Errorf("Failed to publish repository %s", r.FullName)
					// Continue processing other repositories
				}
			}

			s.log.WithFields(logrus.Fields{
				"query":        query,
				"page":         page.Number,
				"unique_repos": len(coll),
			}).Info("Fetched search page")

			if len(coll) >= s.config.Target {
				s.log.Infof("Target of %d repositories reached", s.config.Target)
				break search
			}
		}
	}

	s.log.Infof("Collected %d unique repositories with %d requests", len(coll), s.searcher.Requests())
	return coll, stats
}

// Absorb adds the repositories dedup has not seen yet to coll, classifying
// each exactly once, and returns the added records in page order.
func Absorb(coll Collection, dedup *Deduplicator, repos []*github.Repository) []Repository {
	var added []Repository
	for _, gr := range repos {
		r, ok := newRepository(gr)
		if !ok || !dedup.Admit(r.FullName) {
			continue
		}

		r.Category = classifier.ClassifyRepository(r.Name, r.Description, r.Topics)
		coll[r.FullName] = r
		added = append(added, r)
	}
	return added
}

// Close cleanly shuts down the scanner
func (s *Scanner) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
