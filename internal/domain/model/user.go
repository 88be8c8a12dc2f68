package model

import "time"

// Buyer is the subset of a registered customer the engine needs.
type Buyer struct {
	ID        int64
	CreatedAt time.Time
}
