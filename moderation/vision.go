package moderation

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// VisionClassifier classifies images with the Cloud Vision safe-search API.
type VisionClassifier struct {
	client *vision.ImageAnnotatorClient
	bucket string
}

// NewVisionClassifier creates a classifier for objects in the given bucket.
// When no credentials file is given, application default credentials are used.
func NewVisionClassifier(ctx context.Context, bucket, credentialsPath string) (*VisionClassifier, error) {
	wrapMsg := "unable to initialize the safe-search classifier"

	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return &VisionClassifier{client: client, bucket: bucket}, nil
}

// Classify runs safe-search detection on the named object. The annotation API
// reads the image straight from the bucket, so nothing is downloaded unless
// the image ends up being flagged.
func (c *VisionClassifier) Classify(ctx context.Context, name string) (*SafeSearchResult, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{
					Source: &visionpb.ImageSource{
						ImageUri: fmt.Sprintf("gs://%s/%s", c.bucket, name),
					},
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
				},
			},
		},
	}
	resp, err := c.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to classify object `%s`", name)
	}

	return safeSearchFromResponse(resp, name)
}

// safeSearchFromResponse extracts the safe-search likelihoods from a batch
// annotation response covering a single image.
func safeSearchFromResponse(resp *visionpb.BatchAnnotateImagesResponse, name string) (*SafeSearchResult, error) {
	if len(resp.Responses) == 0 {
		return nil, errors.Errorf("no annotation returned for object `%s`", name)
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return nil, errors.Errorf("unable to classify object `%s`: %s", name, annotated.Error.Message)
	}
	annotation := annotated.SafeSearchAnnotation
	if annotation == nil {
		return nil, errors.Errorf("no safe-search annotation returned for object `%s`", name)
	}

	return &SafeSearchResult{
		Adult:    annotation.Adult.String(),
		Violence: annotation.Violence.String(),
		Racy:     annotation.Racy.String(),
	}, nil
}

// Close closes the underlying API client.
func (c *VisionClassifier) Close() error {
	return c.client.Close()
}
