package collector

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/klimeurt/healthrepo-collector/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// minRateLimitWait is the shortest backoff after a rate limit response.
const minRateLimitWait = time.Second

// Page is one page of search results for a query.
type Page struct {
	Query        string
	Number       int
	Repositories []*github.Repository
}

// Searcher pages through the GitHub repository search API
type Searcher struct {
	ghClient *github.Client
	limiter  *rate.Limiter
	log      logrus.FieldLogger

	perPage  int
	maxPages int
	retries  int
	maxWait  time.Duration

	sleep    func(ctx context.Context, d time.Duration) error
	counter  *countingTransport
}

// countingTransport counts the requests that reach the network. Calls that
// go-github rejects from its cached rate limit state never get here.
type countingTransport struct {
	base http.RoundTripper
	n    atomic.Int64
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.n.Add(1)
	return t.base.RoundTrip(req)
}

// NewSearcher creates a Searcher. The token is optional; without it GitHub
// applies the lower unauthenticated search limit.
func NewSearcher(cfg *config.Config, log logrus.FieldLogger) (*Searcher, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	if cfg.GitHubToken != "" {
		// Create GitHub client with OAuth2 token
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.GitHubToken},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = cfg.RequestTimeout
	}

	transport := httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	counter := &countingTransport{base: transport}
	httpClient.Transport = counter
	ghClient := github.NewClient(httpClient)

	if cfg.GitHubAPIURL != "" {
		base := cfg.GitHubAPIURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GITHUB_API_URL %q: %w", cfg.GitHubAPIURL, err)
		}
		ghClient.BaseURL = u
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	return &Searcher{
		ghClient: ghClient,
		limiter:  rate.NewLimiter(limit, 1),
		log:      log,
		perPage:  cfg.PerPage,
		maxPages: cfg.MaxPages,
		retries:  cfg.RateLimitRetries,
		maxWait:  cfg.RateLimitMaxWait,
		sleep:    sleepContext,
		counter:  counter,
	}, nil
}

// Requests is the number of search requests sent to GitHub so far.
func (s *Searcher) Requests() int {
	return int(s.counter.n.Load())
}

// Pages lazily fetches the result pages of query. The sequence ends after a
// short page, after the page ceiling, or after yielding an error.
func (s *Searcher) Pages(ctx context.Context, query string) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		for number := 1; number <= s.maxPages; number++ {
			repos, err := s.fetch(ctx, query, number)
			if err != nil {
				yield(Page{Query: query, Number: number}, err)
				return
			}

			if !yield(Page{Query: query, Number: number, Repositories: repos}, nil) {
				return
			}

			if len(repos) < s.perPage {
				return
			}
		}
	}
}

// fetch issues the request for one page, retrying on rate limits.
func (s *Searcher) fetch(ctx context.Context, query string, page int) ([]*github.Repository, error) {
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{Page: page, PerPage: s.perPage},
	}

	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Query: query, Page: page, Err: err}
		}

		result, resp, err := s.ghClient.Search.Repositories(ctx, query, opts)
		if err == nil {
			return result.Repositories, nil
		}

		fetchErr := newFetchError(query, page, resp, err)

		var rateErr *RateLimitError
		if !errors.As(fetchErr, &rateErr) || attempt >= s.retries {
			return nil, fetchErr
		}

		wait := rateErr.RetryAfter
		if wait < minRateLimitWait {
			wait = minRateLimitWait
		}
		if wait > s.maxWait {
			return nil, fetchErr
		}

		s.log.WithFields(logrus.Fields{
			"query": query,
			"page":  page,
			"wait":  wait.Round(time.Second).String(),
		}).Warn("Rate limited by GitHub, backing off")

		if err := s.sleep(ctx, wait); err != nil {
			return nil, fetchErr
		}
	}
}

func newFetchError(query string, page int, resp *github.Response, err error) error {
	fetchErr := &FetchError{Query: query, Page: page, Err: err}
	if resp != nil && resp.Response != nil {
		fetchErr.StatusCode = resp.StatusCode
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitError{FetchError: fetchErr, RetryAfter: time.Until(rateErr.Rate.Reset.Time)}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RateLimitError{FetchError: fetchErr, RetryAfter: abuseErr.GetRetryAfter()}
	}

	// go-github only recognizes 403 rate limits; secondary limits may also
	// come back as 429.
	if fetchErr.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{FetchError: fetchErr, RetryAfter: retryAfter(resp.Header)}
	}

	return fetchErr
}

// retryAfter reads the wait from Retry-After (seconds), falling back to
// X-RateLimit-Reset (epoch seconds). It is zero when neither header is usable.
func retryAfter(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Until(time.Unix(epoch, 0))
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
