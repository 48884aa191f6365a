package goAuthClient

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/MrEthical07/goAuthClient/internal/api"
	"github.com/MrEthical07/goAuthClient/mode"
	"go.uber.org/zap"
)

type modeResponse struct {
	Mode           string          `json:"mode"`
	Authentication json.RawMessage `json:"authentication,omitempty"`
}

// ResolveMode asks the API for the tenant's mode and first factors. The
// lookup runs at most once per initialization; concurrent callers share it.
// On failure the error is logged and returned, and the heuristic mode stays
// in place.
func (c *Client) ResolveMode(ctx context.Context) (mode.Mode, error) {
	c.mu.RLock()
	attempted := c.modeAttempt
	current := c.mode
	tenantID := c.tenantID
	gen := c.generation
	c.mu.RUnlock()
	if attempted {
		return current, nil
	}

	key := tenantID + "/" + strconv.FormatUint(gen, 10)
	_, err, _ := c.modeLookups.Do(key, func() (any, error) {
		return nil, c.lookupMode(ctx, tenantID, gen)
	})
	return c.Mode(), err
}

func (c *Client) lookupMode(ctx context.Context, tenantID string, gen uint64) error {
	c.mu.Lock()
	if c.generation != gen || c.modeAttempt {
		c.mu.Unlock()
		return nil
	}
	c.modeAttempt = true
	c.mu.Unlock()

	var resp modeResponse
	if err := c.api.Get(ctx, "tenants/"+tenantID+"/mode", api.Request{}, &resp); err != nil {
		c.metrics.Inc(MetricModeLookupFailure)
		c.log.Warn("tenant mode lookup failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return err
	}
	c.metrics.Inc(MetricModeLookupSuccess)

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return nil
	}
	c.mode = mode.Parse(resp.Mode)
	c.mu.Unlock()

	if len(resp.Authentication) > 0 {
		c.mfa.SetFirstFactors(resp.Authentication)
	}
	return nil
}
