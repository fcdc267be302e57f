// Package host implements the outbound bridge to the browser-extension
// host. The extension keeps a long-poll channel open against the bridge
// endpoint; every TabGateway call becomes one JSON command the extension
// executes with the browser tab API and answers synchronously.
package host

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"tabwise_server/core/domain"
	"tabwise_server/core/port/out"
	"tabwise_server/pkg/httputil"
	"tabwise_server/pkg/metrics"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// =============================================================================
// Bridge Adapter
// =============================================================================

// BridgeAdapter implements out.TabGateway over the host bridge HTTP API.
type BridgeAdapter struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewBridgeAdapter creates a new bridge adapter.
func NewBridgeAdapter(baseURL string, log zerolog.Logger) *BridgeAdapter {
	cbSettings := gobreaker.Settings{
		Name:        "host-bridge",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &BridgeAdapter{
		baseURL: baseURL,
		client:  httputil.BridgeClient(),
		cb:      gobreaker.NewCircuitBreaker(cbSettings),
		log:     log.With().Str("adapter", "bridge").Logger(),
	}
}

// QueryTabs returns a snapshot of all tabs in the current window.
func (a *BridgeAdapter) QueryTabs(ctx context.Context) ([]domain.TabSnapshot, error) {
	var resp struct {
		Tabs []domain.TabSnapshot `json:"tabs"`
	}
	if err := a.call(ctx, "tabs/query", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tabs, nil
}

// GroupTabs places the given tabs into a new group and returns its id.
func (a *BridgeAdapter) GroupTabs(ctx context.Context, tabIDs []int) (int, error) {
	req := map[string]any{"tab_ids": tabIDs}
	var resp struct {
		GroupID int `json:"group_id"`
	}
	if err := a.call(ctx, "tabs/group", req, &resp); err != nil {
		return 0, err
	}
	return resp.GroupID, nil
}

// UpdateGroup sets a group's label, color and collapsed state.
func (a *BridgeAdapter) UpdateGroup(ctx context.Context, groupID int, style out.GroupStyle) error {
	req := map[string]any{
		"group_id":  groupID,
		"title":     style.Title,
		"color":     style.Color,
		"collapsed": style.Collapsed,
	}
	return a.call(ctx, "groups/update", req, nil)
}

// UngroupTabs removes the given tabs from whatever groups they are in.
func (a *BridgeAdapter) UngroupTabs(ctx context.Context, tabIDs []int) error {
	return a.call(ctx, "tabs/ungroup", map[string]any{"tab_ids": tabIDs}, nil)
}

// RemoveTabs closes the given tabs.
func (a *BridgeAdapter) RemoveTabs(ctx context.Context, tabIDs []int) error {
	return a.call(ctx, "tabs/remove", map[string]any{"tab_ids": tabIDs}, nil)
}

// CreateTab opens a URL in a new tab.
func (a *BridgeAdapter) CreateTab(ctx context.Context, url string, active bool) (int, error) {
	req := map[string]any{"url": url, "active": active}
	var resp struct {
		TabID int `json:"tab_id"`
	}
	if err := a.call(ctx, "tabs/create", req, &resp); err != nil {
		return 0, err
	}
	return resp.TabID, nil
}

// =============================================================================
// Transport
// =============================================================================

// bridgeEnvelope is the response wrapper the bridge sends back.
type bridgeEnvelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// call posts one command through the circuit breaker and decodes the
// response data into out (nil when no payload is expected).
func (a *BridgeAdapter) call(ctx context.Context, op string, payload any, result any) error {
	start := time.Now()
	defer func() { metrics.RecordLatency("bridge:"+op, time.Since(start)) }()

	_, err := a.cb.Execute(func() (interface{}, error) {
		return nil, a.post(ctx, op, payload, result)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		a.log.Warn().Str("op", op).Msg("bridge call rejected by circuit breaker")
		return fmt.Errorf("host bridge unavailable: %w", err)
	}
	return err
}

func (a *BridgeAdapter) post(ctx context.Context, op string, payload any, result any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/bridge/"+op, &body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge %s: unexpected status %d", op, resp.StatusCode)
	}

	var envelope bridgeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	if !envelope.Success {
		return fmt.Errorf("bridge %s: %s", op, envelope.Error)
	}
	if result != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("decode %s data: %w", op, err)
		}
	}
	return nil
}

// Healthy reports whether the breaker currently lets calls through.
func (a *BridgeAdapter) Healthy() bool {
	return a.cb.State() != gobreaker.StateOpen
}
