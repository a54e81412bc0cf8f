// Package moderation reacts to finalized uploads in the image bucket. An
// uploaded image that the safe-search classifier flags as explicit is
// replaced in place by a blurred copy; everything else is left untouched.
package moderation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/foodbridge/notifier/handlers"
)

var log = logrus.WithFields(logrus.Fields{"package": "moderation"})

// RoutingKey is the routing key of storage object finalization events.
const RoutingKey = "events.storage.object.finalized"

// blurSigma is the fixed blur strength applied to flagged images.
const blurSigma = 12.0

// monitoredPrefixes lists the storage folders subject to moderation. Uploads
// anywhere else are ignored.
var monitoredPrefixes = []string{"donation_images/", "profile_images/"}

// ObjectEvent is the metadata carried by a storage object finalization event.
type ObjectEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

// SafeSearchResult holds the classifier's confidence label for each content
// category of interest.
type SafeSearchResult struct {
	Adult    string
	Violence string
	Racy     string
}

// Explicit reports whether any category was flagged with enough confidence to
// act on.
func (r *SafeSearchResult) Explicit() bool {
	for _, likelihood := range []string{r.Adult, r.Violence, r.Racy} {
		if likelihood == "LIKELY" || likelihood == "VERY_LIKELY" {
			return true
		}
	}
	return false
}

// Classifier describes the safe-search classification service.
type Classifier interface {
	Classify(ctx context.Context, name string) (*SafeSearchResult, error)
}

// ObjectStore describes the storage operations used during remediation.
// Remove exists as an alternate remediation but is never invoked: blurring in
// place is the only action taken on a flagged image.
type ObjectStore interface {
	Download(ctx context.Context, name, localPath string) error
	Upload(ctx context.Context, localPath, name, contentType string) error
	Remove(ctx context.Context, name string) error
}

// Moderator is the message handler for storage object finalization events.
type Moderator struct {
	store      ObjectStore
	classifier Classifier
	bucket     string
}

// New creates a new moderator for the given bucket.
func New(store ObjectStore, classifier Classifier, bucket string) *Moderator {
	return &Moderator{store: store, classifier: classifier, bucket: bucket}
}

// inScope determines whether an uploaded object is subject to moderation.
func (m *Moderator) inScope(event *ObjectEvent) bool {
	if event.Bucket != "" && event.Bucket != m.bucket {
		return false
	}
	if !strings.HasPrefix(event.ContentType, "image/") {
		return false
	}
	for _, prefix := range monitoredPrefixes {
		if strings.HasPrefix(event.Name, prefix) {
			return true
		}
	}
	return false
}

// HandleMessage handles a single storage object finalization event.
func (m *Moderator) HandleMessage(ctx context.Context, delivery amqp.Delivery) error {

	// Deserialize and validate the event.
	var event ObjectEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		log.Infof("ignoring storage event: %s", err.Error())
		return nil
	}
	if event.Name == "" || event.ContentType == "" {
		log.Info("ignoring storage event: missing object metadata")
		return nil
	}
	if !m.inScope(&event) {
		log.Debugf("object %s is not subject to moderation", event.Name)
		return nil
	}

	// Classify the image.
	result, err := m.classifier.Classify(ctx, event.Name)
	if err != nil {
		return handlers.NewRecoverableError("unable to classify object %s: %s", event.Name, err.Error())
	}
	if !result.Explicit() {
		log.Debugf("object %s passed moderation", event.Name)
		return nil
	}

	// Replace the image with a blurred copy.
	if err := m.blurInPlace(ctx, &event); err != nil {
		return handlers.NewRecoverableError("unable to blur object %s: %s", event.Name, err.Error())
	}
	log.Infof("replaced object %s with a blurred copy", event.Name)
	return nil
}

// encodeExtensions maps image content types to the file extensions that select
// the corresponding encoder.
var encodeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/tiff": ".tif",
	"image/bmp":  ".bmp",
}

// encodeExtension picks the temp-file extension used to select the encoder for
// the blurred copy. Objects uploaded without an extension fall back to the
// event's content type, then to JPEG.
func encodeExtension(event *ObjectEvent) string {
	if ext := filepath.Ext(event.Name); ext != "" {
		return ext
	}
	if ext, ok := encodeExtensions[event.ContentType]; ok {
		return ext
	}
	return ".jpg"
}

// blurInPlace downloads the object, blurs it, and overwrites the original,
// cleaning up the temporary local copies on the way out.
func (m *Moderator) blurInPlace(ctx context.Context, event *ObjectEvent) error {
	ext := encodeExtension(event)
	originalPath := filepath.Join(os.TempDir(), uuid.NewString()+ext)
	blurredPath := filepath.Join(os.TempDir(), uuid.NewString()+ext)
	defer func() {
		_ = os.Remove(originalPath)
		_ = os.Remove(blurredPath)
	}()

	if err := m.store.Download(ctx, event.Name, originalPath); err != nil {
		return err
	}
	original, err := imaging.Open(originalPath)
	if err != nil {
		return errors.Wrap(err, "unable to decode the image")
	}
	blurred := imaging.Blur(original, blurSigma)
	if err := imaging.Save(blurred, blurredPath); err != nil {
		return errors.Wrap(err, "unable to encode the blurred image")
	}

	return m.store.Upload(ctx, blurredPath, event.Name, event.ContentType)
}
