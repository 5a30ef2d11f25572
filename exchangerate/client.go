// Package exchangerate fetches historical daily exchange rates from a
// timeframe quote API (api.exchangerate.host compatible).
package exchangerate

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/etnz/bankimport/date"
)

// DefaultURL is the timeframe quote endpoint used when no override is given.
const DefaultURL = "https://api.exchangerate.host/timeframe"

// Quotes holds the daily quote tables returned by the timeframe endpoint,
// keyed by ISO date and then by concatenated currency pair ("USDGBP").
type Quotes map[string]map[string]decimal.Decimal

// payload is the timeframe endpoint response.
//
//	{
//	  "success": true,
//	  "source": "USD",
//	  "quotes": {
//	    "2025-06-01": {"USDGBP": 0.79, "USDEUR": 0.93},
//	    "2025-06-02": {"USDGBP": 0.80}
//	  }
//	}
type payload struct {
	// Success defaults to true when the field is absent.
	Success *bool           `json:"success"`
	Source  string          `json:"source"`
	Quotes  json.RawMessage `json:"quotes"`
}

// Timeframe issues one GET to the timeframe endpoint for the inclusive date
// range and returns the API's declared source currency and its daily quote
// tables. One request per run, no retry.
func Timeframe(client *http.Client, apiURL, apiKey string, r date.Range) (source string, quotes Quotes, err error) {
	addr, err := url.Parse(apiURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid exchange rate API URL %q: %w", apiURL, err)
	}
	params := url.Values{}
	params.Set("start_date", r.From.String())
	params.Set("end_date", r.To.String())
	params.Set("access_key", apiKey)
	addr.RawQuery = params.Encode()

	body, err := wget(client, addr.String())
	if err != nil {
		return "", nil, err
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", nil, fmt.Errorf("unexpected exchange rate API response: %w", err)
	}
	if p.Success != nil && !*p.Success {
		if info := errorInfo(body); info != "" {
			return "", nil, fmt.Errorf("exchange rate API error: %s", info)
		}
		return "", nil, fmt.Errorf("exchange rate API error: %s", body)
	}
	if len(p.Quotes) == 0 || p.Quotes[0] != '{' {
		return "", nil, fmt.Errorf("unexpected exchange rate API response: quotes is not an object")
	}
	if err := json.Unmarshal(p.Quotes, &quotes); err != nil {
		return "", nil, fmt.Errorf("unexpected exchange rate API response: %w", err)
	}

	source = p.Source
	if source == "" {
		source = "USD"
	}
	return source, quotes, nil
}

// errorInfo extracts the human readable message from a failure payload.
// The error object's shape varies across providers, so it is probed loosely
// instead of typed.
func errorInfo(body []byte) string {
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return ""
	}
	jval, err := jsonpath.Get("$.error.info", jobj)
	if err != nil {
		return ""
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	info, _ := jval.(string)
	return info
}

// wget performs an HTTP GET request to the given address and returns the
// response body. Non-2xx statuses are errors.
func wget(client *http.Client, addr string) ([]byte, error) {
	resp, err := client.Get(addr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// NewClient returns the http.Client used for quote requests: a fixed 30s
// timeout, no retry, and a disk cache so re-runs within the same day do not
// hit the API again.
func NewClient() *http.Client {
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: &dayCache{base: http.DefaultTransport},
	}
}
