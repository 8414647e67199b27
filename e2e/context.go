// Package e2e drives a running SureBet server through godog scenarios.
// Point SUREBET_E2E_URL at the server; the suite is skipped when it is unset.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// TestContext holds per-scenario HTTP state.
type TestContext struct {
	BaseURL string

	client   *http.Client
	headers  map[string]string
	lastResp *http.Response
	lastBody []byte
}

func NewTestContext(baseURL string) *TestContext {
	tc := &TestContext{BaseURL: strings.TrimRight(baseURL, "/")}
	tc.Reset()
	return tc
}

// Reset clears cookies and headers between scenarios.
func (tc *TestContext) Reset() {
	jar, _ := cookiejar.New(nil)
	tc.client = &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
		// Redirects are asserted, never followed.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	tc.headers = map[string]string{}
	tc.lastResp = nil
	tc.lastBody = nil
}

// SetHeader applies a header to every following request.
func (tc *TestContext) SetHeader(name, value string) {
	tc.headers[name] = value
}

func (tc *TestContext) ClearHeader(name string) {
	delete(tc.headers, name)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range tc.headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastResp = resp
	return nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.lastResp == nil {
		return 0
	}
	return tc.lastResp.StatusCode
}

func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.lastResp == nil {
		return ""
	}
	return tc.lastResp.Header.Get(name)
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetResponseField reads a top-level field of the last JSON body.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var out map[string]any
	if err := json.Unmarshal(tc.lastBody, &out); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := out[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from response", field)
	}
	return v, nil
}
