package bank

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"storagebox/core/kv"
	"storagebox/core/stats"
	"storagebox/core/storage"
	"storagebox/core/utils"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const defaultImportChunk = 500

// Service exposes the bank operations to the HTTP and CLI layers.
type Service struct {
	resolver  *Resolver
	client    storage.Client
	bucket    string
	chunkSize int
	stats     stats.Recorder
	logger    *zap.Logger
}

// NewService creates a bank service. client may be nil when object storage is not configured.
func NewService(resolver *Resolver, client storage.Client, bucket string, chunkSize int, rec stats.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if chunkSize <= 0 {
		chunkSize = defaultImportChunk
	}
	if rec == nil {
		rec = stats.Nop{}
	}
	return &Service{
		resolver:  resolver,
		client:    client,
		bucket:    bucket,
		chunkSize: chunkSize,
		stats:     rec,
		logger:    logger,
	}
}

// Resolver returns the underlying resolver.
func (s *Service) Resolver() *Resolver { return s.resolver }

// AddItems inserts items into the pool as given and returns how many were written.
func (s *Service) AddItems(ctx context.Context, items []string) (int, error) {
	if err := s.resolver.AddItems(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Resolve returns the item for a deduplication id.
func (s *Service) Resolve(ctx context.Context, id string) (*Resolution, error) {
	return s.resolver.Resolve(ctx, id)
}

// ImportObject reads a newline-delimited item list from the bucket and adds it in chunks.
// On failure the count of items already added is returned with the error.
func (s *Service) ImportObject(ctx context.Context, object string) (int, error) {
	if s.client == nil {
		return 0, ErrStorageDisabled
	}
	object = strings.TrimPrefix(object, "/")
	if object == "" {
		return 0, fmt.Errorf("%w: object name is empty", ErrInvalidRequest)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", object, err)
	}
	defer obj.Close()

	added := 0
	chunk := make([]string, 0, s.chunkSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := s.resolver.AddItems(ctx, chunk); err != nil {
			return err
		}
		added += len(chunk)
		chunk = chunk[:0]
		return nil
	}

	err = utils.EachItem(obj, func(item string) error {
		chunk = append(chunk, item)
		if len(chunk) < s.chunkSize {
			return nil
		}
		return flush()
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		s.logger.Error("Import stopped", zap.String("object", object), zap.Int("added", added), zap.Error(err))
		return added, fmt.Errorf("import %s: %w", object, err)
	}

	s.logger.Info("Imported item list", zap.String("object", object), zap.Int("added", added))
	return added, nil
}

// ListImports returns the object names under prefix.
func (s *Service) ListImports(ctx context.Context, prefix string) ([]string, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// ExportPool writes every unclaimed item to object, one per line, and returns the item count.
// The snapshot is not atomic with respect to concurrent claims.
func (s *Service) ExportPool(ctx context.Context, object string) (int, error) {
	if s.client == nil {
		return 0, ErrStorageDisabled
	}
	object = strings.TrimPrefix(object, "/")
	if object == "" || path.Base(object) == "." {
		return 0, fmt.Errorf("%w: object name is empty", ErrInvalidRequest)
	}

	var buf bytes.Buffer
	n := 0
	err := kv.ScanAll(ctx, s.resolver.Pool().Table(), s.resolver.Pool().PageSize(), func(rec kv.Record) error {
		buf.WriteString(rec.Value)
		buf.WriteByte('\n')
		n++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan pool: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return 0, fmt.Errorf("upload %s: %w", object, err)
	}
	s.logger.Info("Exported pool", zap.String("object", object), zap.Int("items", n))
	return n, nil
}

// Report is the bank statistics view.
type Report struct {
	PoolSize int              `json:"pool_size"`
	Outcomes map[string]int64 `json:"outcomes"`
}

// Stats returns the pool size and the recorded resolve outcomes.
func (s *Service) Stats(ctx context.Context) (*Report, error) {
	size, err := s.resolver.Pool().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pool: %w", err)
	}
	snap, err := s.stats.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{PoolSize: size, Outcomes: snap.Total}, nil
}
