package spotdiff

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is a goroutine-safe wrapper over an explicit random source so tests
// can seed it and production can share one across requests.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// NewTimeRand seeds from the wall clock.
func NewTimeRand() *Rand {
	return NewRand(time.Now().UnixNano())
}

func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

func (r *Rand) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Perm(n)
}
