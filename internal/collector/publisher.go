package collector

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// connectNATS opens the publishing connection, or returns nil when
// publishing is not configured.
func connectNATS(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}

	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// publishRepository publishes a classified repository to the NATS subject
func (s *Scanner) publishRepository(r Repository) error {
	if s.nc == nil {
		return nil
	}

	// Serialize to JSON
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal repository: %w", err)
	}

	// Publish to NATS
	if err := s.nc.Publish(s.config.NATSSubject, data); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}

	return nil
}
