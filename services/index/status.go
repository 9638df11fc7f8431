package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meghashyamc/wordindex/db/kvdb"
)

type RunState string

const (
	StatePending   RunState = "pending"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// RunStatus is what GetStatus reports for a Build request.
type RunStatus struct {
	ID        string    `json:"id"`
	Root      string    `json:"root"`
	State     RunState  `json:"state"`
	Summary   *Summary  `json:"summary,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetStatus retrieves the status of an index request
func (s *Service) GetStatus(requestID string) (*RunStatus, error) {
	value, err := s.statusStore.Get(kvdb.RequestsBucket, requestID)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
		}
		s.logger.Error("failed to read request status", "request_id", requestID, "err", err.Error())
		return nil, fmt.Errorf("could not read request status: %w", err)
	}

	var status RunStatus
	if err := json.Unmarshal([]byte(value), &status); err != nil {
		s.logger.Error("failed to unmarshal request status", "request_id", requestID, "err", err.Error())
		return nil, fmt.Errorf("invalid status value: %w", err)
	}

	return &status, nil
}

func (s *Service) setRequestStatus(status *RunStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		s.logger.Error("failed to marshal request status", "request_id", status.ID, "err", err.Error())
		return
	}

	if err := s.statusStore.Set(kvdb.RequestsBucket, status.ID, string(data)); err != nil {
		s.logger.Error("failed to update request status", "request_id", status.ID, "state", status.State, "err", err.Error())
	}
}
