package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/expense-tracker/internal/domain"
	"github.com/dvloznov/expense-tracker/internal/logger"
	"github.com/google/uuid"
)

const gcsScheme = "gs://"

// ObjectStore uploads objects to cloud storage.
// This interface enables mocking and testing of storage functionality.
type ObjectStore interface {
	// Upload writes everything from r to bucket/object.
	Upload(ctx context.Context, bucket, object string, r io.Reader) error
}

// GCSStore is the ObjectStore backed by Google Cloud Storage.
// It uses Application Default Credentials.
type GCSStore struct {
	timeout time.Duration
}

// NewGCSStore creates a GCS uploader whose uploads are bounded by timeout.
func NewGCSStore(timeout time.Duration) *GCSStore {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &GCSStore{timeout: timeout}
}

// Upload implements ObjectStore.
func (s *GCSStore) Upload(ctx context.Context, bucket, object string, r io.Reader) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("Upload: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize upload: %w", err)
	}
	return nil
}

// Exporter writes CSV snapshots of the transaction log.
type Exporter struct {
	objects ObjectStore
	now     func() time.Time
}

// NewExporter creates an Exporter. objects may be nil when only local
// destinations are used.
func NewExporter(objects ObjectStore) *Exporter {
	return &Exporter{objects: objects, now: time.Now}
}

// Export writes txs as CSV to dest and returns where the snapshot ended up.
// dest is either a local file path or a gs://bucket/object URI. A URI that
// ends in "/" or names only the bucket gets a generated object name.
func (e *Exporter) Export(ctx context.Context, txs []domain.Transaction, dest string) (string, error) {
	log := logger.FromContext(ctx)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, txs); err != nil {
		return "", fmt.Errorf("Export: %w", err)
	}

	if !strings.HasPrefix(dest, gcsScheme) {
		if err := writeLocal(dest, buf.Bytes()); err != nil {
			return "", fmt.Errorf("Export: %w", err)
		}
		log.Info().Str("path", dest).Int("transaction_count", len(txs)).Msg("Exported transactions")
		return dest, nil
	}

	if e.objects == nil {
		return "", fmt.Errorf("Export: no object store configured for %s", dest)
	}

	bucket, object, err := ParseGCSURI(dest)
	if err != nil {
		return "", fmt.Errorf("Export: %w", err)
	}
	if object == "" || strings.HasSuffix(object, "/") {
		object = path.Join(object, e.objectName())
	}

	if err := e.objects.Upload(ctx, bucket, object, &buf); err != nil {
		return "", fmt.Errorf("Export: %w", err)
	}

	uri := gcsScheme + bucket + "/" + object
	log.Info().Str("uri", uri).Int("transaction_count", len(txs)).Msg("Exported transactions")
	return uri, nil
}

func (e *Exporter) objectName() string {
	return fmt.Sprintf("expenses-%s-%s.csv", e.now().UTC().Format("20060102T150405Z"), uuid.NewString())
}

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object.
// The object is empty when the URI names only a bucket.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, gcsScheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no bucket): %s", uri)
	}
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], parts[1], nil
}

func writeLocal(dest string, data []byte) error {
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(dest, data, 0o600); err != nil {
		return fmt.Errorf("writing file %q: %w", dest, err)
	}
	return nil
}
