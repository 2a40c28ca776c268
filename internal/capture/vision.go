package capture

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/vision/v1"

	"foodhive/internal/category"
	"foodhive/internal/pantry"
)

// Vision reads product photos with the Google Cloud Vision API.
type Vision struct {
	svc *vision.Service
}

// NewVision creates a Vision client authenticated with apiKey.
func NewVision(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Vision, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &Vision{svc: svc}, nil
}

func (v *Vision) annotate(ctx context.Context, image []byte, feature string) (*vision.AnnotateImageResponse, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{Type: feature, MaxResults: 3}},
		}},
	}
	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to annotate image: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("vision returned no response")
	}
	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return nil, fmt.Errorf("vision error: %s", r.Error.Message)
	}
	return r, nil
}

// Labels names the product after the most likely image label.
func (v *Vision) Labels(ctx context.Context, image []byte) (Draft, error) {
	r, err := v.annotate(ctx, image, "LABEL_DETECTION")
	if err != nil {
		return Draft{}, err
	}
	if len(r.LabelAnnotations) == 0 {
		return Draft{}, ErrProductNotFound
	}

	label := r.LabelAnnotations[0].Description
	return Draft{
		Name:     capitalize(label),
		Category: category.MapToAppCategory(label),
		Quantity: 1,
		Note:     "Detected: " + label,
		Source:   pantry.SourceImage,
	}, nil
}

// Text reads the label text of the photo and parses it.
func (v *Vision) Text(ctx context.Context, image []byte) (Draft, error) {
	r, err := v.annotate(ctx, image, "TEXT_DETECTION")
	if err != nil {
		return Draft{}, err
	}
	if len(r.TextAnnotations) == 0 || r.TextAnnotations[0].Description == "" {
		return Draft{}, ErrProductNotFound
	}
	return ParseText(r.TextAnnotations[0].Description), nil
}
