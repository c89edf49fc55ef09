package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/halvard/stockledger/api-gateway/config"
)

// InstanceHealth reports the health of one ledger instance
type InstanceHealth struct {
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// GatewayHealth reports the gateway and its upstream instances
type GatewayHealth struct {
	Gateway   string           `json:"gateway"`
	Status    string           `json:"status"`
	Instances []InstanceHealth `json:"instances,omitempty"`
	UptimeSec float64          `json:"uptime_seconds"`
}

// HealthChecker probes ledger instances
type HealthChecker struct {
	upstream  config.UpstreamConfig
	client    *http.Client
	startTime time.Time
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(cfg *config.GatewayConfig) *HealthChecker {
	return &HealthChecker{
		upstream: cfg.Upstream,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		startTime: time.Now(),
	}
}

// QuickCheck reports gateway liveness without touching the upstream
func (h *HealthChecker) QuickCheck() GatewayHealth {
	return GatewayHealth{
		Gateway:   "api-gateway",
		Status:    "healthy",
		UptimeSec: time.Since(h.startTime).Seconds(),
	}
}

// CheckInstances probes every ledger instance in parallel
func (h *HealthChecker) CheckInstances(ctx context.Context) GatewayHealth {
	instances := make([]InstanceHealth, len(h.upstream.Instances))

	var wg sync.WaitGroup
	for i, url := range h.upstream.Instances {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			instances[i] = h.checkInstance(ctx, url)
		}(i, url)
	}
	wg.Wait()

	healthy := 0
	for _, inst := range instances {
		if inst.Status == "healthy" {
			healthy++
		}
	}

	status := "healthy"
	switch {
	case healthy == 0:
		status = "unhealthy"
	case healthy < len(instances):
		status = "degraded"
	}

	return GatewayHealth{
		Gateway:   "api-gateway",
		Status:    status,
		Instances: instances,
		UptimeSec: time.Since(h.startTime).Seconds(),
	}
}

func (h *HealthChecker) checkInstance(ctx context.Context, url string) InstanceHealth {
	result := InstanceHealth{
		URL:       url,
		Timestamp: time.Now(),
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+h.upstream.HealthCheck, nil)
	if err != nil {
		result.Status = "unknown"
		result.Error = err.Error()
		return result
	}

	resp, err := h.client.Do(req)
	result.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Status = "unhealthy"
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		result.Status = "healthy"
	} else {
		result.Status = "unhealthy"
		result.Error = resp.Status
	}
	return result
}
