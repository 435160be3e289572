package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/2beens/bodyforecast/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"
)

const gcsPublicBaseURL = "https://storage.googleapis.com"

// GCSStore uploads blobs to a Google Cloud Storage bucket.
type GCSStore struct {
	service       *storage.Service
	bucket        string
	publicBaseURL string
}

func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket cannot be empty")
	}
	service, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create storage client: %w", err)
	}
	return &GCSStore{
		service:       service,
		bucket:        bucket,
		publicBaseURL: gcsPublicBaseURL,
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, data []byte, path string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "media.gcs.upload")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(data) == 0 {
		return "", ErrEmptyUpload
	}
	cleaned, err := cleanPath(path)
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.String("media.path", cleaned))
	span.SetAttributes(attribute.String("media.bucket", s.bucket))

	obj, err := s.service.Objects.
		Insert(s.bucket, &storage.Object{
			Name:        cleaned,
			ContentType: http.DetectContentType(data),
		}).
		Media(bytes.NewReader(data)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("insert object %s: %w", cleaned, err)
	}

	log.Debugf("gcs media: stored %s/%s", obj.Bucket, obj.Name)
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, strings.TrimPrefix(obj.Name, "/")), nil
}
