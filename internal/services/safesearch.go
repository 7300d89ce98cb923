package services

import (
	"context"
	"encoding/base64"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// ContentScreener decides whether downloaded image bytes may be put on the map.
type ContentScreener interface {
	IsUnsafe(ctx context.Context, image []byte) (bool, error)
}

type SafeSearchResult struct {
	Adult    string
	Violence string
	Racy     string
	Spoof    string
	Medical  string
}

func isUnsafeLikelyOrHigher(l string) bool {
	return l == "LIKELY" || l == "VERY_LIKELY"
}

func (r *SafeSearchResult) IsUnsafe() bool {
	return isUnsafeLikelyOrHigher(r.Adult) || isUnsafeLikelyOrHigher(r.Violence) || isUnsafeLikelyOrHigher(r.Racy)
}

// VisionScreener runs Vision SAFE_SEARCH_DETECTION on inline image content.
type VisionScreener struct {
	svc *vision.Service
}

// NewVisionScreener uses Application Default Credentials.
func NewVisionScreener(ctx context.Context, opts ...option.ClientOption) (*VisionScreener, error) {
	opts = append([]option.ClientOption{option.WithScopes(vision.CloudPlatformScope)}, opts...)
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &VisionScreener{svc: svc}, nil
}

func (v *VisionScreener) Detect(ctx context.Context, image []byte) (*SafeSearchResult, error) {
	req := &vision.AnnotateImageRequest{
		Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []*vision.Feature{
			{Type: "SAFE_SEARCH_DETECTION"},
		},
	}
	resp, err := v.svc.Images.Annotate(&vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{req},
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Responses) == 0 || resp.Responses[0].SafeSearchAnnotation == nil {
		return &SafeSearchResult{}, nil
	}
	ss := resp.Responses[0].SafeSearchAnnotation
	return &SafeSearchResult{
		Adult:    ss.Adult,
		Violence: ss.Violence,
		Racy:     ss.Racy,
		Spoof:    ss.Spoof,
		Medical:  ss.Medical,
	}, nil
}

func (v *VisionScreener) IsUnsafe(ctx context.Context, image []byte) (bool, error) {
	res, err := v.Detect(ctx, image)
	if err != nil {
		return false, err
	}
	return res.IsUnsafe(), nil
}
