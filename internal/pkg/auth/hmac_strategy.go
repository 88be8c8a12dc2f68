package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const defaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid auth token")
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

var tokenEncoding = base64.RawURLEncoding

// HMACStrategy signs "<id>|<role>|<unix expiry>" payloads with HMAC-SHA256.
// Tokens have the form base64url(payload) "." base64url(signature) so they
// travel unchanged in headers and cookies.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	s := &HMACStrategy{secret: []byte(secret), ttl: opts.TTL, now: opts.Now}
	if s.ttl <= 0 {
		s.ttl = defaultTokenTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// IssueToken generates signed auth token for the actor.
func (s *HMACStrategy) IssueToken(actor model.Actor) (string, error) {
	if !actor.Role.Valid() {
		return "", fmt.Errorf("unknown role %q", actor.Role)
	}
	payload := strings.Join([]string{
		strconv.FormatInt(actor.ID, 10),
		string(actor.Role),
		strconv.FormatInt(s.now().Add(s.ttl).Unix(), 10),
	}, "|")
	return tokenEncoding.EncodeToString([]byte(payload)) + "." + tokenEncoding.EncodeToString(s.sign(payload)), nil
}

// ParseToken validates token and returns the encoded actor.
func (s *HMACStrategy) ParseToken(token string) (model.Actor, error) {
	encPayload, encSig, ok := strings.Cut(token, ".")
	if !ok {
		return model.Actor{}, ErrInvalidToken
	}
	rawPayload, err := tokenEncoding.DecodeString(encPayload)
	if err != nil {
		return model.Actor{}, ErrInvalidToken
	}
	sig, err := tokenEncoding.DecodeString(encSig)
	if err != nil {
		return model.Actor{}, ErrInvalidToken
	}
	payload := string(rawPayload)
	if !hmac.Equal(sig, s.sign(payload)) {
		return model.Actor{}, ErrInvalidToken
	}

	fields := strings.Split(payload, "|")
	if len(fields) != 3 {
		return model.Actor{}, ErrInvalidToken
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return model.Actor{}, ErrInvalidToken
	}
	role := model.ActorRole(fields[1])
	if !role.Valid() {
		return model.Actor{}, ErrInvalidToken
	}
	expires, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return model.Actor{}, ErrInvalidToken
	}
	if !s.now().Before(time.Unix(expires, 0)) {
		return model.Actor{}, ErrTokenExpired
	}

	return model.Actor{ID: id, Role: role}, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac-sha256"
}

func (s *HMACStrategy) sign(payload string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
