package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// DefaultTTL is how long an untouched cart is kept.
const DefaultTTL = 30 * 24 * time.Hour

// addLineScript merges a line into the cart list. A line for a variant that
// is already present has its quantity increased in place.
// KEYS[1] = cart key
// ARGV[1] = variant id, ARGV[2] = quantity, ARGV[3] = ttl seconds
var addLineScript = redis.NewScript(`
local key = KEYS[1]
local variant = ARGV[1]
local qty = tonumber(ARGV[2])
local lines = redis.call("LRANGE", key, 0, -1)
for i, raw in ipairs(lines) do
    local line = cjson.decode(raw)
    if tostring(line.variant_id) == variant then
        local total = line.quantity + qty
        redis.call("LSET", key, i - 1, string.format('{"variant_id":%s,"quantity":%d}', variant, total))
        redis.call("EXPIRE", key, ARGV[3])
        return total
    end
end
redis.call("RPUSH", key, string.format('{"variant_id":%s,"quantity":%d}', variant, qty))
redis.call("EXPIRE", key, ARGV[3])
return qty
`)

// removeLinesScript subtracts checked-out quantities from the cart list.
// Lines that drop to zero are removed, lines added after the checkout read
// stay untouched. Returns the number of lines left.
// KEYS[1] = cart key
// ARGV = variant id, quantity pairs
var removeLinesScript = redis.NewScript(`
local key = KEYS[1]
local take = {}
for i = 1, #ARGV, 2 do
    take[ARGV[i]] = (take[ARGV[i]] or 0) + tonumber(ARGV[i + 1])
end
local lines = redis.call("LRANGE", key, 0, -1)
local left = 0
for i, raw in ipairs(lines) do
    local ok, line = pcall(cjson.decode, raw)
    local variant = ok and tostring(line.variant_id) or nil
    local qty = variant and take[variant]
    if qty and qty > 0 then
        local rest = line.quantity - qty
        take[variant] = qty - line.quantity
        if rest > 0 then
            redis.call("LSET", key, i - 1, string.format('{"variant_id":%s,"quantity":%d}', variant, rest))
            left = left + 1
        else
            redis.call("LSET", key, i - 1, "__removed__")
        end
    else
        left = left + 1
    end
end
redis.call("LREM", key, 0, "__removed__")
return left
`)

type redisClient interface {
	redis.Scripter
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisStore keeps buyer carts as Redis lists of JSON encoded lines.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStore creates a cart store on top of client.
func NewRedisStore(client redisClient, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func cartKey(buyerID int64) string {
	return "cart:" + strconv.FormatInt(buyerID, 10)
}

// Cart returns the buyer's cart lines in insertion order.
func (s *RedisStore) Cart(ctx context.Context, buyerID int64) (*model.Cart, error) {
	raw, err := s.client.LRange(ctx, cartKey(buyerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	cart := &model.Cart{BuyerID: buyerID, Lines: make([]model.CartLine, 0, len(raw))}
	for _, item := range raw {
		var line model.CartLine
		if err := json.Unmarshal([]byte(item), &line); err != nil {
			s.logger.Warn("skipping malformed cart line",
				slog.Int64("buyer_id", buyerID),
				slog.String("line", item),
			)
			continue
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart, nil
}

// AddLine adds quantity of a variant to the buyer's cart.
func (s *RedisStore) AddLine(ctx context.Context, buyerID int64, line model.CartLine) error {
	total, err := addLineScript.Run(ctx, s.client, []string{cartKey(buyerID)},
		strconv.FormatInt(line.VariantID, 10), line.Quantity, int64(s.ttl/time.Second)).Int64()
	if err != nil {
		return fmt.Errorf("add cart line: %w", err)
	}
	s.logger.Debug("cart line added",
		slog.Int64("buyer_id", buyerID),
		slog.Int64("variant_id", line.VariantID),
		slog.Int64("quantity", total),
	)
	return nil
}

// RemoveLines subtracts the quantities of lines from the buyer's cart.
func (s *RedisStore) RemoveLines(ctx context.Context, buyerID int64, lines []model.CartLine) error {
	if len(lines) == 0 {
		return nil
	}
	args := make([]interface{}, 0, 2*len(lines))
	for _, line := range lines {
		args = append(args, strconv.FormatInt(line.VariantID, 10), line.Quantity)
	}
	left, err := removeLinesScript.Run(ctx, s.client, []string{cartKey(buyerID)}, args...).Int64()
	if err != nil {
		return fmt.Errorf("remove cart lines: %w", err)
	}
	s.logger.Debug("cart lines removed",
		slog.Int64("buyer_id", buyerID),
		slog.Int("removed", len(lines)),
		slog.Int64("left", left),
	)
	return nil
}
