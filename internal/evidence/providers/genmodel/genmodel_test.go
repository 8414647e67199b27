package genmodel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surebet/internal/evidence/providers"
	"surebet/internal/evidence/providers/contract"
)

var (
	idImage   = providers.Image{MIME: providers.MIMEJPEG, Data: []byte("id-photo")}
	liveImage = providers.Image{MIME: providers.MIMEPNG, Data: []byte("live-photo")}
)

// gateway is a fake prompt-model gateway keyed by flow name.
type gateway struct {
	t        *testing.T
	apiKey   string
	outputs  map[string]string
	requests map[string]map[string]any
}

func newGateway(t *testing.T) *gateway {
	return &gateway{
		t:      t,
		apiKey: "test-key",
		outputs: map[string]string{
			FlowExtractID:    `{"fullName":"John Doe","dateOfBirth":"1990-01-01","address":"123 Main St","gender":"M"}`,
			FlowCompareFaces: `{"matchConfidence":0.93,"isMatch":true,"reviewRequired":false}`,
			FlowEstimateAge:  `{"estimatedAge":34,"ageMatchesId":true,"reviewRequired":false}`,
		},
		requests: map[string]map[string]any{},
	}
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+g.apiKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	flow, ok := strings.CutPrefix(r.URL.Path, "/v1/flows/")
	if !ok || !strings.HasSuffix(flow, ":run") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	flow = strings.TrimSuffix(flow, ":run")

	var req struct {
		Flow  string         `json:"flow"`
		Input map[string]any `json:"input"`
	}
	if !assert.NoError(g.t, json.NewDecoder(r.Body).Decode(&req)) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	assert.Equal(g.t, flow, req.Flow)
	g.requests[flow] = req.Input

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"output":` + g.outputs[flow] + `}`))
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: url, APIKey: "test-key", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestAdaptersContract(t *testing.T) {
	gw := newGateway(t)
	srv := httptest.NewServer(gw)
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	suite := &contract.ContractSuite{
		ProviderID: "genmodel-ocr",
		Extractor:  NewOCR("genmodel-ocr", client),
		Comparer:   NewFaceMatcher("genmodel-face", client),
		Estimator:  NewAgeEstimator("genmodel-age", client),
		ExtractorCases: []contract.ExtractorCase{{
			Name:  "reads name and date of birth",
			Input: providers.IDExtractionInput{IDImage: idImage},
			ValidateFunc: func(t *testing.T, _ string, fullName, dob string) {
				assert.Equal(t, "John Doe", fullName)
				assert.Equal(t, "1990-01-01", dob)
			},
		}},
		FaceCases: []contract.FaceCase{{
			Name:        "matching faces",
			Input:       providers.FaceComparisonInput{IDImage: idImage, LiveImages: []providers.Image{liveImage, liveImage}},
			WantIsMatch: contract.Bool(true),
		}},
		AgeCases: []contract.AgeCase{{
			Name:    "age consistent with DOB",
			Input:   providers.AgeEstimationInput{FaceImage: liveImage, DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
			WantAge: contract.Bool(true),
		}},
	}
	suite.Run(t)

	t.Run("flow inputs use data URIs", func(t *testing.T) {
		assert.Equal(t, idImage.DataURI(), gw.requests[FlowExtractID]["idDataUri"])
		assert.Equal(t, idImage.DataURI(), gw.requests[FlowCompareFaces]["idPhotoDataUri"])
		assert.Len(t, gw.requests[FlowCompareFaces]["livePhotoDataUris"], 2)
		assert.Equal(t, "1990-01-01", gw.requests[FlowEstimateAge]["dateOfBirth"])
	})
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCat   providers.ErrorCategory
		wantRetry bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, providers.ErrorAuthentication, false},
		{"forbidden", http.StatusForbidden, ``, providers.ErrorAuthentication, false},
		{"rate limited", http.StatusTooManyRequests, ``, providers.ErrorRateLimited, true},
		{"content policy", http.StatusUnprocessableEntity, `{"error":"blocked","reason":"content_policy"}`, providers.ErrorContentPolicy, false},
		{"other unprocessable", http.StatusUnprocessableEntity, `{"error":"schema"}`, providers.ErrorBadInput, false},
		{"gateway timeout", http.StatusGatewayTimeout, ``, providers.ErrorTimeout, true},
		{"server error", http.StatusInternalServerError, ``, providers.ErrorProviderOutage, true},
		{"bad gateway", http.StatusBadGateway, ``, providers.ErrorProviderOutage, true},
		{"not json", http.StatusOK, `<html>`, providers.ErrorMalformedOutput, false},
		{"safety finish", http.StatusOK, `{"output":null,"finishReason":"SAFETY"}`, providers.ErrorContentPolicy, false},
		{"missing output", http.StatusOK, `{}`, providers.ErrorMalformedOutput, false},
		{"unknown field", http.StatusOK, `{"output":{"matchConfidence":0.9,"isMatch":true,"reviewRequired":false,"score":90}}`, providers.ErrorMalformedOutput, false},
		{"confidence out of range", http.StatusOK, `{"output":{"matchConfidence":1.7,"isMatch":true,"reviewRequired":false}}`, providers.ErrorMalformedOutput, false},
		{"wrong type", http.StatusOK, `{"output":{"matchConfidence":"high","isMatch":true,"reviewRequired":false}}`, providers.ErrorMalformedOutput, false},
		{"match only", http.StatusOK, `{"output":{"isMatch":true}}`, providers.ErrorMalformedOutput, false},
		{"missing confidence", http.StatusOK, `{"output":{"isMatch":true,"reviewRequired":false}}`, providers.ErrorMalformedOutput, false},
		{"missing review flag", http.StatusOK, `{"output":{"matchConfidence":0.9,"isMatch":true}}`, providers.ErrorMalformedOutput, false},
		{"null match", http.StatusOK, `{"output":{"matchConfidence":0.9,"isMatch":null,"reviewRequired":false}}`, providers.ErrorMalformedOutput, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			face := NewFaceMatcher("genmodel-face", newTestClient(t, srv.URL))
			ect := contract.ErrorContractTest{
				Name: tc.name,
				Call: func(ctx context.Context) error {
					_, err := face.CompareFaces(ctx, providers.FaceComparisonInput{IDImage: idImage, LiveImages: []providers.Image{liveImage}})
					return err
				},
				ExpectedError: tc.wantCat,
				ExpectedRetry: tc.wantRetry,
			}
			ect.Run(t)
		})
	}
}

func TestIncompleteOutputIsMalformed(t *testing.T) {
	dob := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := map[string]func(context.Context, *Client) error{
		FlowExtractID: func(ctx context.Context, c *Client) error {
			_, err := NewOCR("genmodel-ocr", c).ExtractID(ctx, providers.IDExtractionInput{IDImage: idImage})
			return err
		},
		FlowCompareFaces: func(ctx context.Context, c *Client) error {
			_, err := NewFaceMatcher("genmodel-face", c).CompareFaces(ctx, providers.FaceComparisonInput{IDImage: idImage, LiveImages: []providers.Image{liveImage}})
			return err
		},
		FlowEstimateAge: func(ctx context.Context, c *Client) error {
			_, err := NewAgeEstimator("genmodel-age", c).EstimateAge(ctx, providers.AgeEstimationInput{FaceImage: liveImage, DateOfBirth: dob})
			return err
		},
	}

	tests := []struct {
		flow   string
		output string
	}{
		{FlowExtractID, `{"dateOfBirth":"1990-01-01","address":"123 Main St","gender":"M"}`},
		{FlowExtractID, `{"fullName":"","dateOfBirth":"1990-01-01","address":"123 Main St","gender":"M"}`},
		{FlowExtractID, `{"fullName":"John Doe","address":"123 Main St","gender":"M"}`},
		{FlowExtractID, `{"fullName":"John Doe","dateOfBirth":"1990-01-01","gender":"M"}`},
		{FlowExtractID, `{"fullName":"John Doe","dateOfBirth":"1990-01-01","address":"123 Main St"}`},
		{FlowCompareFaces, `{"isMatch":true,"reviewRequired":false}`},
		{FlowCompareFaces, `{"matchConfidence":0.93,"reviewRequired":false}`},
		{FlowCompareFaces, `{"matchConfidence":0.93,"isMatch":true}`},
		{FlowEstimateAge, `{"ageMatchesId":true,"reviewRequired":false}`},
		{FlowEstimateAge, `{"estimatedAge":34,"reviewRequired":false}`},
		{FlowEstimateAge, `{"estimatedAge":34,"ageMatchesId":true}`},
		{FlowEstimateAge, `{"estimatedAge":-3,"ageMatchesId":true,"reviewRequired":false}`},
	}

	for _, tc := range tests {
		t.Run(tc.flow+" "+tc.output, func(t *testing.T) {
			gw := newGateway(t)
			gw.outputs[tc.flow] = tc.output
			srv := httptest.NewServer(gw)
			defer srv.Close()

			err := calls[tc.flow](context.Background(), newTestClient(t, srv.URL))
			require.Error(t, err)
			assert.Equal(t, providers.ErrorMalformedOutput, providers.GetCategory(err))
		})
	}
}

func TestFalseAndZeroValuesAreAccepted(t *testing.T) {
	gw := newGateway(t)
	gw.outputs[FlowCompareFaces] = `{"matchConfidence":0,"isMatch":false,"reviewRequired":false}`
	gw.outputs[FlowEstimateAge] = `{"estimatedAge":0,"ageMatchesId":false,"reviewRequired":true}`
	srv := httptest.NewServer(gw)
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	match, err := NewFaceMatcher("genmodel-face", client).CompareFaces(context.Background(), providers.FaceComparisonInput{IDImage: idImage, LiveImages: []providers.Image{liveImage}})
	require.NoError(t, err)
	assert.False(t, match.IsMatch)
	assert.Zero(t, match.MatchConfidence)

	age, err := NewAgeEstimator("genmodel-age", client).EstimateAge(context.Background(), providers.AgeEstimationInput{
		FaceImage:   liveImage,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, age.AgeMatchesID)
	assert.True(t, age.ReviewRequired)
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = NewOCR("genmodel-ocr", client).ExtractID(context.Background(), providers.IDExtractionInput{IDImage: idImage})
	require.Error(t, err)
	assert.Equal(t, providers.ErrorTimeout, providers.GetCategory(err))
	assert.True(t, providers.IsRetryable(err))
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAgeEstimator("genmodel-age", newTestClient(t, url)).EstimateAge(context.Background(), providers.AgeEstimationInput{
		FaceImage:   liveImage,
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, providers.ErrorProviderOutage, providers.GetCategory(err))
}

func TestAdaptersRejectEmptyInput(t *testing.T) {
	client := newTestClient(t, "http://gateway.invalid")

	_, err := NewOCR("ocr", client).ExtractID(context.Background(), providers.IDExtractionInput{})
	assert.Equal(t, providers.ErrorBadInput, providers.GetCategory(err))

	_, err = NewFaceMatcher("face", client).CompareFaces(context.Background(), providers.FaceComparisonInput{IDImage: idImage})
	assert.Equal(t, providers.ErrorBadInput, providers.GetCategory(err))

	_, err = NewAgeEstimator("age", client).EstimateAge(context.Background(), providers.AgeEstimationInput{FaceImage: liveImage})
	assert.Equal(t, providers.ErrorBadInput, providers.GetCategory(err))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
