package moderation

import (
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"
)

func annotated(adult, violence, racy visionpb.Likelihood) *visionpb.BatchAnnotateImagesResponse {
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{
			{
				SafeSearchAnnotation: &visionpb.SafeSearchAnnotation{
					Adult:    adult,
					Violence: violence,
					Racy:     racy,
				},
			},
		},
	}
}

func TestSafeSearchFromResponse(t *testing.T) {
	resp := annotated(visionpb.Likelihood_VERY_UNLIKELY, visionpb.Likelihood_LIKELY, visionpb.Likelihood_POSSIBLE)

	result, err := safeSearchFromResponse(resp, "donation_images/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "VERY_UNLIKELY", result.Adult)
	assert.Equal(t, "LIKELY", result.Violence)
	assert.Equal(t, "POSSIBLE", result.Racy)
	assert.True(t, result.Explicit())
}

func TestSafeSearchFromResponseEmpty(t *testing.T) {
	resp := &visionpb.BatchAnnotateImagesResponse{}

	result, err := safeSearchFromResponse(resp, "donation_images/a.jpg")
	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestSafeSearchFromResponseAnnotationError(t *testing.T) {
	resp := &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{
			{Error: &status.Status{Message: "image not found"}},
		},
	}

	result, err := safeSearchFromResponse(resp, "donation_images/a.jpg")
	assert.Nil(t, result)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "image not found")
	}
}

func TestSafeSearchFromResponseMissingAnnotation(t *testing.T) {
	resp := &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{}},
	}

	result, err := safeSearchFromResponse(resp, "donation_images/a.jpg")
	assert.Nil(t, result)
	assert.Error(t, err)
}
