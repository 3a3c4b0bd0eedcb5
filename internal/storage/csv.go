// Package storage writes the collected repositories to disk: the CSV export,
// the markdown summary and the optional HTML chart.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klimeurt/healthrepo-collector/internal/classifier"
	"github.com/klimeurt/healthrepo-collector/internal/collector"
)

// Columns is the header of the CSV export, in order.
var Columns = []string{
	"full_name",
	"name",
	"description",
	"stars",
	"forks",
	"language",
	"topics",
	"created_at",
	"updated_at",
	"category",
}

const topicSeparator = ","

// WriteCSV writes the records, in the given order, to path.
func WriteCSV(path string, repos []collector.Repository) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodeCSV(w, repos)
	})
}

// EncodeCSV writes the header and one row per record.
func EncodeCSV(w io.Writer, repos []collector.Repository) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	for _, r := range repos {
		row := []string{
			r.FullName,
			r.Name,
			r.Description,
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			r.Language,
			strings.Join(r.Topics, topicSeparator),
			formatTime(r.CreatedAt),
			formatTime(r.UpdatedAt),
			string(r.Category),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export written by WriteCSV.
func ReadCSV(path string) ([]collector.Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	repos, err := DecodeCSV(f)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return repos, nil
}

// DecodeCSV parses the header and rows produced by EncodeCSV.
func DecodeCSV(r io.Reader) ([]collector.Repository, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("column %d is %q, want %q", i+1, header[i], col)
		}
	}

	var repos []collector.Repository
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		repo, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func parseRow(row []string) (collector.Repository, error) {
	stars, err := strconv.Atoi(row[3])
	if err != nil {
		return collector.Repository{}, fmt.Errorf("stars: %w", err)
	}
	forks, err := strconv.Atoi(row[4])
	if err != nil {
		return collector.Repository{}, fmt.Errorf("forks: %w", err)
	}
	created, err := parseTime(row[7])
	if err != nil {
		return collector.Repository{}, fmt.Errorf("created_at: %w", err)
	}
	updated, err := parseTime(row[8])
	if err != nil {
		return collector.Repository{}, fmt.Errorf("updated_at: %w", err)
	}

	var topics []string
	if row[6] != "" {
		topics = strings.Split(row[6], topicSeparator)
	}

	return collector.Repository{
		FullName:    row[0],
		Name:        row[1],
		Description: row[2],
		Stars:       stars,
		Forks:       forks,
		Language:    row[5],
		Topics:      topics,
		CreatedAt:   created,
		UpdatedAt:   updated,
		Category:    classifier.Category(row[9]),
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
