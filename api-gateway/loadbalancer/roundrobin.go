package loadbalancer

import (
	"sync"

	"github.com/halvard/stockledger/pkg/logger"
)

// RoundRobin hands out upstream instances in rotation
type RoundRobin struct {
	instances []string
	current   int
	mu        sync.Mutex
}

// NewRoundRobin creates a round-robin pool over the given instances
func NewRoundRobin(instances []string) *RoundRobin {
	logger.Logger.Info().
		Int("instance_count", len(instances)).
		Strs("instances", instances).
		Msg("Upstream pool initialized")

	return &RoundRobin{instances: instances}
}

// Next returns the next instance, or "" when the pool is empty
func (rr *RoundRobin) Next() string {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if len(rr.instances) == 0 {
		return ""
	}

	instance := rr.instances[rr.current]
	rr.current = (rr.current + 1) % len(rr.instances)
	return instance
}

// Instances returns a copy of the pool
func (rr *RoundRobin) Instances() []string {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return append([]string{}, rr.instances...)
}

// Size returns the number of pooled instances
func (rr *RoundRobin) Size() int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return len(rr.instances)
}
