package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/halvard/stockledger/api-gateway/config"
	"github.com/halvard/stockledger/api-gateway/loadbalancer"
	"github.com/halvard/stockledger/api-gateway/middleware"
	"github.com/halvard/stockledger/pkg/logger"
)

// ReverseProxy forwards requests to the ledger instances behind the pool,
// guarded by the circuit breaker
type ReverseProxy struct {
	upstream config.UpstreamConfig
	pool     *loadbalancer.RoundRobin
	breaker  *middleware.CircuitBreaker
	client   *http.Client
}

// NewReverseProxy creates a new reverse proxy for the configured upstream
func NewReverseProxy(cfg *config.GatewayConfig, breaker *middleware.CircuitBreaker) *ReverseProxy {
	return &ReverseProxy{
		upstream: cfg.Upstream,
		pool:     loadbalancer.NewRoundRobin(cfg.Upstream.Instances),
		breaker:  breaker,
		client: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
	}
}

// Forward proxies the request, trying each instance in the pool at most
// once before giving up
func (p *ReverseProxy) Forward(c *fiber.Ctx) error {
	attempts := p.pool.Size()
	if attempts == 0 {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "No upstream instances configured",
		})
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		instance := p.pool.Next()

		err := p.breaker.Call(func() error {
			return p.forwardTo(c, instance)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		logger.Logger.Warn().
			Err(err).
			Str("instance", instance).
			Str("path", c.Path()).
			Int("attempt", attempt+1).
			Msg("Upstream attempt failed")
	}

	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error":   "Failed to reach ledger service",
		"service": p.upstream.Name,
		"details": lastErr.Error(),
	})
}

// forwardTo sends the request to one instance and copies the response back
func (p *ReverseProxy) forwardTo(c *fiber.Ctx, instance string) error {
	req, err := http.NewRequestWithContext(
		c.UserContext(),
		c.Method(),
		targetURL(c, instance),
		bytes.NewReader(c.Body()),
	)
	if err != nil {
		return err
	}

	copyRequestHeaders(c, req)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	copyResponseHeaders(c, resp)
	c.Status(resp.StatusCode)
	return c.Send(body)
}

func targetURL(c *fiber.Ctx, instance string) string {
	path := string(c.Request().URI().Path())
	query := string(c.Request().URI().QueryString())
	if query != "" {
		query = "?" + query
	}
	return instance + path + query
}

func copyRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		if strings.EqualFold(string(key), "host") {
			return
		}
		req.Header.Set(string(key), string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}

func copyResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for key, values := range resp.Header {
		if strings.EqualFold(key, "content-length") {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
}
