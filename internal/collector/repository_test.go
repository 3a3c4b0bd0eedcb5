package collector

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/klimeurt/healthrepo-collector/internal/classifier"
)

func TestRepositoryFieldMapping(t *testing.T) {
	createdAt := time.Date(2023, 1, 1, 7, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	updatedAt := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

	gr := &github.Repository{
		FullName:        github.String("dinkes/rekam-medis"),
		Name:            github.String("rekam-medis"),
		Description:     github.String("  Dataset rekam medis\nRSUD  "),
		StargazersCount: github.Int(42),
		ForksCount:      github.Int(7),
		Language:        github.String("Python"),
		Topics:          []string{"health", "indonesia"},
		CreatedAt:       &github.Timestamp{Time: createdAt},
		UpdatedAt:       &github.Timestamp{Time: updatedAt},
	}

	r, ok := newRepository(gr)
	if !ok {
		t.Fatal("newRepository() rejected a repository with a full name")
	}

	if r.FullName != "dinkes/rekam-medis" {
		t.Errorf("FullName = %v, want %v", r.FullName, "dinkes/rekam-medis")
	}
	if r.Name != "rekam-medis" {
		t.Errorf("Name = %v, want %v", r.Name, "rekam-medis")
	}
	if r.Description != "Dataset rekam medis RSUD" {
		t.Errorf("Description = %q, want %q", r.Description, "Dataset rekam medis RSUD")
	}
	if r.Stars != 42 || r.Forks != 7 {
		t.Errorf("Stars/Forks = %d/%d, want 42/7", r.Stars, r.Forks)
	}
	if r.Language != "Python" {
		t.Errorf("Language = %v, want %v", r.Language, "Python")
	}
	if len(r.Topics) != 2 || r.Topics[0] != "health" || r.Topics[1] != "indonesia" {
		t.Errorf("Topics = %v, want [health indonesia]", r.Topics)
	}
	if !r.CreatedAt.Equal(createdAt) || r.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v, want %v in UTC", r.CreatedAt, createdAt)
	}
	if !r.UpdatedAt.Equal(updatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", r.UpdatedAt, updatedAt)
	}
	if r.Category != "" {
		t.Errorf("Category = %v, want it unset before classification", r.Category)
	}
	if r.URL() != "https://github.com/dinkes/rekam-medis" {
		t.Errorf("URL() = %v", r.URL())
	}
}

func TestRepositorySparseFields(t *testing.T) {
	r, ok := newRepository(&github.Repository{FullName: github.String("a/b")})
	if !ok {
		t.Fatal("newRepository() rejected a repository with a full name")
	}
	if r.Topics != nil {
		t.Errorf("Topics = %#v, want nil", r.Topics)
	}
	if r.Description != "" || r.Language != "" {
		t.Errorf("Description/Language = %q/%q, want empty", r.Description, r.Language)
	}

	if _, ok := newRepository(&github.Repository{Name: github.String("orphan")}); ok {
		t.Error("newRepository() accepted a repository without a full name")
	}
}

func TestRepositoryEmptyFields(t *testing.T) {
	repo := Repository{
		FullName:  "org/test-repo",
		Name:      "test-repo",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Category:  classifier.General,
	}

	data, err := json.Marshal(repo)
	if err != nil {
		t.Fatalf("Failed to marshal repository: %v", err)
	}

	jsonStr := string(data)
	if strings.Contains(jsonStr, `"language"`) {
		t.Error("Empty language field should be omitted from JSON")
	}
	if strings.Contains(jsonStr, `"topics"`) {
		t.Error("Empty topics field should be omitted from JSON")
	}
	if !strings.Contains(jsonStr, `"category":"General"`) {
		t.Errorf("Category missing from JSON: %s", jsonStr)
	}
}

func TestCollectionSorted(t *testing.T) {
	coll := Collection{
		"z/ten":    {FullName: "z/ten", Stars: 10},
		"b/fifty":  {FullName: "b/fifty", Stars: 50},
		"m/thirty": {FullName: "m/thirty", Stars: 30},
		"a/fifty":  {FullName: "a/fifty", Stars: 50},
	}

	got := coll.Sorted()
	want := []string{"a/fifty", "b/fifty", "m/thirty", "z/ten"}
	if len(got) != len(want) {
		t.Fatalf("Sorted() returned %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].FullName != id {
			t.Errorf("Sorted()[%d] = %s, want %s", i, got[i].FullName, id)
		}
	}
}
