package collector

import (
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/klimeurt/healthrepo-collector/internal/classifier"
)

// Repository represents a classified GitHub search result
type Repository struct {
	FullName    string              `json:"full_name"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Stars       int                 `json:"stars"`
	Forks       int                 `json:"forks"`
	Language    string              `json:"language,omitempty"`
	Topics      []string            `json:"topics,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Category    classifier.Category `json:"category"`
}

// URL is the repository page on github.com.
func (r Repository) URL() string {
	return "https://github.com/" + r.FullName
}

// newRepository converts a search result without classifying it. It reports
// false for results that carry no full name.
func newRepository(repo *github.Repository) (Repository, bool) {
	if repo.GetFullName() == "" {
		return Repository{}, false
	}

	var topics []string
	if len(repo.Topics) > 0 {
		topics = append(topics, repo.Topics...)
	}

	return Repository{
		FullName:    repo.GetFullName(),
		Name:        repo.GetName(),
		Description: strings.TrimSpace(strings.ReplaceAll(repo.GetDescription(), "\n", " ")),
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		Language:    repo.GetLanguage(),
		Topics:      topics,
		CreatedAt:   repo.GetCreatedAt().Time.UTC(),
		UpdatedAt:   repo.GetUpdatedAt().Time.UTC(),
	}, true
}

// Collection maps a repository identifier (owner/name) to its record.
type Collection map[string]Repository

// Sorted returns the records ordered by stars, highest first, with the
// identifier as tie-break.
func (c Collection) Sorted() []Repository {
	out := make([]Repository, 0, len(c))
	for _, r := range c {
		out = append(out, r)
	}
	SortByStars(out)
	return out
}

// SortByStars orders records by descending stars, then ascending identifier.
func SortByStars(repos []Repository) {
	sort.Slice(repos, func(i, j int) bool {
		if repos[i].Stars != repos[j].Stars {
			return repos[i].Stars > repos[j].Stars
		}
		return repos[i].FullName < repos[j].FullName
	})
}

// QueryFailure records a query that stopped on a fetch error.
type QueryFailure struct {
	Query string
	Page  int
	Err   error
}

// RunStats describes a collection run.
type RunStats struct {
	Target   int
	Queries  int
	Pages    int
	Failures []QueryFailure
}
