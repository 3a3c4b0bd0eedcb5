package collector

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klimeurt/healthrepo-collector/internal/config"
	natsserver "github.com/nats-io/nats-server/v2/server"
)

// searchServer is a mock of the GitHub search endpoint that records every
// request it receives.
type searchServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []searchRequest
}

type searchRequest struct {
	Query   string
	Page    int
	PerPage int
	Sort    string
	Order   string
}

// respondFunc writes the response for one search request.
type respondFunc func(w http.ResponseWriter, req searchRequest)

func newSearchServer(t *testing.T, respond respondFunc) *searchServer {
	t.Helper()

	s := &searchServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))
		req := searchRequest{
			Query:   q.Get("q"),
			Page:    page,
			PerPage: perPage,
			Sort:    q.Get("sort"),
			Order:   q.Get("order"),
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		respond(w, req)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *searchServer) Requests() []searchRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]searchRequest(nil), s.requests...)
}

func (s *searchServer) RequestsFor(query string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Query == query {
			n++
		}
	}
	return n
}

func writeItems(w http.ResponseWriter, items []map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"total_count":        len(items),
		"incomplete_results": false,
		"items":              items,
	})
}

func writeRateLimited(w http.ResponseWriter, reset time.Time) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Limit", "10")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message":           "API rate limit exceeded for 127.0.0.1.",
		"documentation_url": "https://docs.github.com/rest/overview/resources-in-the-rest-api#rate-limiting",
	})
}

func writeTooManyRequests(w http.ResponseWriter, retryAfter string) {
	w.Header().Set("Content-Type", "application/json")
	if retryAfter != "" {
		w.Header().Set("Retry-After", retryAfter)
	}
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": "You have exceeded a secondary rate limit.",
	})
}

// pageOfItems returns n mock repositories named prefix-<page>-<i>.
func pageOfItems(prefix string, page, n int) []map[string]interface{} {
	items := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, createMockRepoJSON(fmt.Sprintf("org/%s-%d-%d", prefix, page, i), 10*i))
	}
	return items
}

func createMockRepoJSON(fullName string, stars int) map[string]interface{} {
	owner, name, _ := strings.Cut(fullName, "/")
	return map[string]interface{}{
		"full_name":        fullName,
		"name":             name,
		"owner":            map[string]interface{}{"login": owner},
		"description":      "dataset for " + name,
		"stargazers_count": stars,
		"forks_count":      1,
		"language":         "Python",
		"topics":           []string{"health"},
		"created_at":       "2023-01-01T00:00:00Z",
		"updated_at":       "2023-12-01T00:00:00Z",
	}
}

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		GitHubAPIURL:     apiURL,
		Target:           1000,
		PerPage:          3,
		MaxPages:         10,
		RequestTimeout:   5 * time.Second,
		RateLimitRetries: 2,
		RateLimitMaxWait: time.Minute,
		NATSSubject:      "healthcare.repositories",
	}
}

func runMockNATSServer() *natsserver.Server {
	opts := &natsserver.Options{
		Host: "127.0.0.1",
		Port: -1, // Use random port
	}

	server, err := natsserver.NewServer(opts)
	if err != nil {
		panic(fmt.Sprintf("NATS server not created: %v", err))
	}

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		panic("NATS server not ready")
	}

	return server
}
