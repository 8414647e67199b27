package genmodel

import (
	"context"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
)

const (
	FlowExtractID    = "extractIdDataFlow"
	FlowCompareFaces = "compareFacialEmbeddingsFlow"
	FlowEstimateAge  = "estimateAgeFromFacialScanFlow"
)

// OCR reads identity fields off an ID photo.
type OCR struct {
	id     string
	client *Client
}

func NewOCR(id string, client *Client) *OCR {
	return &OCR{id: id, client: client}
}

func (o *OCR) ID() string { return o.id }

type extractIDInput struct {
	IDDataURI string `json:"idDataUri"`
}

func (o *OCR) ExtractID(ctx context.Context, in providers.IDExtractionInput) (*decision.ExtractedIdentity, error) {
	if in.IDImage.IsZero() {
		return nil, providers.NewProviderError(providers.ErrorBadInput, o.id, "id image is empty", nil)
	}
	var out extractIDOutput
	if err := o.client.Run(ctx, o.id, FlowExtractID, extractIDInput{IDDataURI: in.IDImage.DataURI()}, &out); err != nil {
		return nil, err
	}
	return out.identity(), nil
}
