package auth

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Strategy issues and verifies the tokens shared with the auth service.
type Strategy interface {
	IssueToken(actor model.Actor) (string, error)
	ParseToken(token string) (model.Actor, error)
	Name() string
}

// Options tunes token issuance. Zero values fall back to defaults.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}
