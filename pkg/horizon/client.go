// Package horizon is a minimal client for the balance-oracle slice of the
// Horizon API: look up an account and extract its native XLM balance.
package horizon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnavailable marks transport-level failures (timeouts, connection
// errors, 5xx). Callers can retry; it is never conflated with a zero
// balance or a cryptographic failure.
var ErrUnavailable = errors.New("balance oracle unavailable")

const defaultTimeout = 10 * time.Second

type Client struct {
	base string
	hc   *http.Client
	log  zerolog.Logger
}

func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: defaultTimeout},
		log:  log.With().Str("component", "horizon").Logger(),
	}
}

// WithTimeout overrides the default request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.hc.Timeout = d
	return c
}

type accountResource struct {
	Balances []struct {
		Balance   string `json:"balance"`
		AssetType string `json:"asset_type"`
	} `json:"balances"`
}

// NativeBalance returns the account's native XLM balance as a decimal
// string. A 404 or an account without a native entry reads as "0": an
// unfunded account has nothing, which is different from not knowing.
func (c *Client) NativeBalance(ctx context.Context, address string) (string, error) {
	u := c.base + "/accounts/" + url.PathEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("address", address).Msg("account lookup failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "0", nil
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: horizon returned %s", ErrUnavailable, resp.Status)
	}

	var acct accountResource
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		return "", fmt.Errorf("%w: decoding account: %v", ErrUnavailable, err)
	}
	for _, b := range acct.Balances {
		if b.AssetType == "native" {
			return b.Balance, nil
		}
	}
	return "0", nil
}
