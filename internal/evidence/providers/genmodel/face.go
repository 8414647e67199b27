package genmodel

import (
	"context"

	"surebet/internal/decision"
	"surebet/internal/evidence/providers"
)

// FaceMatcher compares live captures against the ID photo.
type FaceMatcher struct {
	id     string
	client *Client
}

func NewFaceMatcher(id string, client *Client) *FaceMatcher {
	return &FaceMatcher{id: id, client: client}
}

func (f *FaceMatcher) ID() string { return f.id }

type compareFacesInput struct {
	IDPhotoDataURI    string   `json:"idPhotoDataUri"`
	LivePhotoDataURIs []string `json:"livePhotoDataUris"`
}

func (f *FaceMatcher) CompareFaces(ctx context.Context, in providers.FaceComparisonInput) (*decision.FacialMatch, error) {
	if in.IDImage.IsZero() || len(in.LiveImages) == 0 {
		return nil, providers.NewProviderError(providers.ErrorBadInput, f.id, "id image and at least one live image are required", nil)
	}
	req := compareFacesInput{
		IDPhotoDataURI:    in.IDImage.DataURI(),
		LivePhotoDataURIs: make([]string, 0, len(in.LiveImages)),
	}
	for _, img := range in.LiveImages {
		req.LivePhotoDataURIs = append(req.LivePhotoDataURIs, img.DataURI())
	}

	var out compareFacesOutput
	if err := f.client.Run(ctx, f.id, FlowCompareFaces, req, &out); err != nil {
		return nil, err
	}
	return out.facialMatch(), nil
}
