package storage

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klimeurt/healthrepo-collector/internal/classifier"
	"github.com/klimeurt/healthrepo-collector/internal/collector"
)

const (
	// TopN is the number of repositories listed in the star ranking.
	TopN = 20

	// UnknownLanguage labels repositories without a detected language.
	UnknownLanguage = "Unknown"
)

// Count is a label with the number of repositories carrying it.
type Count struct {
	Name  string
	Count int
}

// Summary holds the aggregate figures of a run.
type Summary struct {
	Target     int
	Total      int
	Categories []Count
	Languages  []Count
	TopStarred []collector.Repository
	Failures   []collector.QueryFailure
}

// Summarize computes the report figures from what was actually collected.
func Summarize(coll collector.Collection, stats collector.RunStats) Summary {
	byCategory := map[classifier.Category]int{}
	byLanguage := map[string]int{}
	repos := make([]collector.Repository, 0, len(coll))

	for _, r := range coll {
		byCategory[r.Category]++
		lang := r.Language
		if lang == "" {
			lang = UnknownLanguage
		}
		byLanguage[lang]++
		repos = append(repos, r)
	}

	categories := make([]Count, 0, len(byCategory))
	for _, c := range classifier.Categories() {
		categories = append(categories, Count{Name: string(c), Count: byCategory[c]})
	}

	languages := make([]Count, 0, len(byLanguage))
	for name, n := range byLanguage {
		languages = append(languages, Count{Name: name, Count: n})
	}
	sort.Slice(languages, func(i, j int) bool {
		if languages[i].Count != languages[j].Count {
			return languages[i].Count > languages[j].Count
		}
		return languages[i].Name < languages[j].Name
	})

	return Summary{
		Target:     stats.Target,
		Total:      len(coll),
		Categories: categories,
		Languages:  languages,
		TopStarred: TopStarred(repos, TopN),
		Failures:   stats.Failures,
	}
}

// TopStarred returns at most n records by descending stars, ties broken by
// identifier. The input slice is not modified.
func TopStarred(repos []collector.Repository, n int) []collector.Repository {
	sorted := append([]collector.Repository(nil), repos...)
	collector.SortByStars(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// WriteSummary writes the markdown report to path.
func WriteSummary(path string, s Summary) error {
	return writeFile(path, func(w io.Writer) error {
		return RenderSummary(w, s)
	})
}

// RenderSummary writes the markdown report.
func RenderSummary(w io.Writer, s Summary) error {
	var b strings.Builder

	b.WriteString("# Ringkasan Pengumpulan GitHub Healthcare Repositories\n\n")
	fmt.Fprintf(&b, "- Target entri: **%d**\n", s.Target)
	fmt.Fprintf(&b, "- Total entri terkumpul: **%d**\n\n", s.Total)

	b.WriteString("## Distribusi Kategori\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "- %s: %d\n", c.Name, c.Count)
	}

	b.WriteString("\n## Distribusi Bahasa Pemrograman\n")
	for _, c := range s.Languages {
		fmt.Fprintf(&b, "- %s: %d\n", c.Name, c.Count)
	}

	fmt.Fprintf(&b, "\n## Top %d Repository Berdasarkan Stars\n", TopN)
	for i, r := range s.TopStarred {
		fmt.Fprintf(&b, "%d. [%s](%s) - %d stars - %s\n", i+1, r.FullName, r.URL(), r.Stars, r.Category)
	}

	if len(s.Failures) > 0 {
		b.WriteString("\n## Query Gagal\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "- `%s` (halaman %d): %v\n", f.Query, f.Page, f.Err)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
