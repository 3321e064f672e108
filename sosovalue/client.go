// Package sosovalue implements the upstream SoSoValue API client: credential
// mode selection, the retrying transport, the current-metrics and history
// endpoints, and the aggregate fallback probe.
package sosovalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/etnz/etfflow"
)

// Mode identifies which credential mode the client runs in. Exactly one mode
// is active per run; the paired credential takes priority when both are
// configured.
type Mode string

const (
	// ModeV2 is the paired-credential production mode.
	ModeV2 Mode = "v2"
	// ModeV1 is the single-token demo mode.
	ModeV1 Mode = "v1"
)

const (
	baseV2 = "https://openapi.sosovalue.com"
	baseV1 = "https://api.sosovalue.xyz"

	currentMetricsPath = "/openapi/v2/etf/currentEtfDataMetrics"
	historyPath        = "/openapi/v2/etf/historicalInflowChart"
)

const (
	maxAttempts = 3
	baseBackoff = 2 * time.Second
	// dumpLimit caps the size of the debug payload dump.
	dumpLimit = 400_000
)

// Client talks to the upstream API. It is synchronous and single-use per run;
// the only timeout boundary is the per-request socket timeout.
type Client struct {
	base     string
	mode     Mode
	header   http.Header
	hc       *http.Client
	dumpPath string

	// OnCall, when set, is invoked once per HTTP attempt, before the outcome
	// is known. The caller uses it for quota bookkeeping: an attempt consumes
	// upstream capacity whether or not it succeeds.
	OnCall func()
}

// New builds a client from the configuration, selecting the credential mode.
func New(cfg etfflow.Config) (*Client, error) {
	c := &Client{
		hc:       &http.Client{Timeout: 30 * time.Second},
		dumpPath: cfg.DumpPath,
		header:   make(http.Header),
	}
	c.header.Set("accept", "application/json")
	c.header.Set("content-type", "application/json")

	switch {
	case cfg.ClientID != "" && cfg.ClientSecret != "":
		c.mode = ModeV2
		c.base = baseV2
		c.header.Set("client-id", cfg.ClientID)
		c.header.Set("client-secret", cfg.ClientSecret)
		c.header.Set("user-agent", "efs/2.0")
	case cfg.APIKey != "":
		c.mode = ModeV1
		c.base = baseV1
		c.header.Set("x-soso-api-key", cfg.APIKey)
		c.header.Set("user-agent", "efs/1.x")
	default:
		return nil, fmt.Errorf("no upstream credential configured")
	}
	if cfg.BaseURL != "" {
		c.base = cfg.BaseURL
	}
	return c, nil
}

// Mode returns the active credential mode.
func (c *Client) Mode() Mode { return c.mode }

// retryable reports whether a status is a transient upstream condition.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// post issues one POST with a {"type": kind} body and returns the parsed JSON
// body untouched. Transient statuses are retried with a doubling backoff;
// any other non-2xx status is terminal for this call.
func (c *Client) post(path string, kind etfflow.Asset) (any, error) {
	url := c.base + path
	body, err := json.Marshal(map[string]string{"type": string(kind)})
	if err != nil {
		return nil, err
	}

	backoff := baseBackoff
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("cannot create http request %q: %w", url, err)
		}
		req.Header = c.header.Clone()

		if c.OnCall != nil {
			c.OnCall()
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("cannot execute http request %q: %w", url, err)
		}
		log.Printf("[http] (%s) POST %s -> %d", c.mode, url, resp.StatusCode)

		if resp.StatusCode == http.StatusOK {
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("cannot read response body from %q: %w", url, err)
			}
			c.dump(data)
			var payload any
			if err := json.Unmarshal(data, &payload); err != nil {
				return nil, fmt.Errorf("cannot decode json from %q: %w", url, err)
			}
			return payload, nil
		}
		resp.Body.Close()

		if retryable(resp.StatusCode) && attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
			continue
		}
		return nil, fmt.Errorf("http POST %s: status %d", url, resp.StatusCode)
	}
}

// dump writes the most recent raw body for operator inspection, size-capped.
// Dump failures are warnings: the artifact is a convenience, never a
// dependency of the run.
func (c *Client) dump(data []byte) {
	if c.dumpPath == "" {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err == nil {
		data = pretty.Bytes()
	}
	if len(data) > dumpLimit {
		data = data[:dumpLimit]
	}
	if err := os.WriteFile(c.dumpPath, data, 0o644); err != nil {
		log.Printf("[warn] payload dump failed: %v", err)
		return
	}
	log.Printf("[debug] payload dumped -> %s", c.dumpPath)
}
