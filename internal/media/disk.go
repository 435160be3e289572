package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/bodyforecast/internal/telemetry/tracing"
	"github.com/2beens/bodyforecast/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// DiskStore keeps uploads on the local file system, served back by Handler.
type DiskStore struct {
	rootPath      string
	publicBaseURL string
}

func NewDiskStore(rootPath, publicBaseURL string) (*DiskStore, error) {
	if rootPath == "" {
		return nil, errors.New("root path cannot be empty")
	}
	exists, err := pkg.PathExists(rootPath, true)
	if err != nil {
		return nil, fmt.Errorf("check media root: %w", err)
	}
	if !exists {
		if err := os.MkdirAll(rootPath, 0o755); err != nil {
			return nil, fmt.Errorf("create media root: %w", err)
		}
	}
	return &DiskStore{
		rootPath:      rootPath,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

func (ds *DiskStore) Upload(ctx context.Context, data []byte, path string) (_ string, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "media.disk.upload")
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
	span.SetAttributes(attribute.Int("media.size", len(data)))

	filePath := filepath.Join(ds.rootPath, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}

	log.Debugf("disk media: stored %s (%d bytes)", cleaned, len(data))
	return ds.publicBaseURL + "/media/" + cleaned, nil
}

// Open returns the stored file for path, ErrFileNotFound if there is none.
func (ds *DiskStore) Open(path string) (*os.File, error) {
	cleaned, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(ds.rootPath, filepath.FromSlash(cleaned)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, ErrFileNotFound
	}
	return f, nil
}
