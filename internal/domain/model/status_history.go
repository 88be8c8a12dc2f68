package model

import (
	"encoding/json"
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// StatusEntry is a single record of the order status log.
type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

// StatusHistory is an append-only, time-ordered status log.
// Entries can only be added through Append; the zero value is an empty log.
type StatusHistory struct {
	entries []StatusEntry
}

// NewStatusHistory builds a history from stored entries, validating order.
func NewStatusHistory(entries []StatusEntry) (StatusHistory, error) {
	var h StatusHistory
	for _, e := range entries {
		if err := h.Append(e.Status, e.Timestamp, e.Note); err != nil {
			return StatusHistory{}, err
		}
	}
	return h, nil
}

// Append adds an entry. Timestamps must not go backwards.
func (h *StatusHistory) Append(status OrderStatus, at time.Time, note string) error {
	if status == "" {
		return fmt.Errorf("%w: empty status in history", domainErrors.ErrInvariantViolation)
	}
	if last, ok := h.Last(); ok && at.Before(last.Timestamp) {
		return fmt.Errorf("%w: history entry %s at %s precedes %s",
			domainErrors.ErrInvariantViolation, status, at.Format(time.RFC3339Nano), last.Timestamp.Format(time.RFC3339Nano))
	}
	h.entries = append(h.entries, StatusEntry{Status: status, Timestamp: at.UTC(), Note: note})
	return nil
}

// Entries returns a copy of the log.
func (h StatusHistory) Entries() []StatusEntry {
	out := make([]StatusEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len reports the number of entries.
func (h StatusHistory) Len() int {
	return len(h.entries)
}

// Last returns the most recent entry.
func (h StatusHistory) Last() (StatusEntry, bool) {
	if len(h.entries) == 0 {
		return StatusEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Contains reports whether any entry has the given status.
func (h StatusHistory) Contains(status OrderStatus) bool {
	for _, e := range h.entries {
		if e.Status == status {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the log as a JSON array.
func (h StatusHistory) MarshalJSON() ([]byte, error) {
	if h.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.entries)
}

// UnmarshalJSON decodes a JSON array, rejecting out-of-order entries.
func (h *StatusHistory) UnmarshalJSON(data []byte) error {
	var entries []StatusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	decoded, err := NewStatusHistory(entries)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}
