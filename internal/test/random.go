package test

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

var words = []string{
	"wrong", "size", "ordered", "twice", "found", "cheaper", "elsewhere",
	"delivery", "too", "slow", "changed", "my", "mind", "gift", "damaged",
}

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomReason returns a space separated phrase of at least minLen characters.
func RandomReason(minLen int) string {
	var b strings.Builder
	for b.Len() < minLen {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(words[randomIntn(len(words))])
	}
	return b.String()
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
