// Package s3 uploads and fetches objects on S3-compatible stores (AWS S3,
// MinIO, LocalStack, Cloudflare R2) with best-effort cleanup of anything
// a failed upload leaves behind.
//
// Small payloads go up in a single conditional PutObject. Large payloads
// use a multipart upload; if any step fails the upload is aborted on a
// fresh context, the abort outcome is discarded, and the caller gets the
// failure that stopped the upload.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/pithecene-io/ignore/ignore"
)

// Upload limits.
const (
	// minPartSize is the smallest part S3 accepts (except the last one).
	minPartSize = 5 * 1024 * 1024 // 5MB

	// maxParts is the most parts a multipart upload may have.
	maxParts = 10000

	// maxObjectSize is the S3 object size limit.
	maxObjectSize = 5 * 1024 * 1024 * 1024 * 1024 // 5TB

	// maxAtomicPutSize is the PutObject limit; anything larger goes multipart.
	maxAtomicPutSize = 5 * 1024 * 1024 * 1024 // 5GB

	// abortTimeout bounds the best-effort abort of a failed upload.
	abortTimeout = 30 * time.Second
)

// Errors returned by Store.
var (
	// ErrExists indicates the key is already present.
	ErrExists = errors.New("s3: object exists")

	// ErrNotFound indicates the key is absent.
	ErrNotFound = errors.New("s3: object not found")

	// ErrInvalidKey indicates an empty key or one escaping the prefix.
	ErrInvalidKey = errors.New("s3: invalid key")
)

// API is the subset of *s3.Client used by Store.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

var _ API = (*s3.Client)(nil)

// Config holds configuration for the store.
type Config struct {
	// Bucket is the bucket name. Required.
	Bucket string

	// Prefix is prepended to every key. A trailing slash is added if missing.
	Prefix string
}

// Store reads and writes objects in one bucket.
type Store struct {
	client API
	bucket string
	prefix string

	atomicLimit int64
	partSize    int64
	createTemp  func() (*os.File, error)
}

// New creates a store. The client must already carry credentials, region
// and endpoint; see NewClient.
func New(client API, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("s3: client is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &Store{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      prefix,
		atomicLimit: maxAtomicPutSize,
		partSize:    minPartSize,
		createTemp:  func() (*os.File, error) { return os.CreateTemp("", "ignore-s3-*") },
	}, nil
}

// Put uploads the content of r under key. Returns ErrExists if the key is
// already present.
//
// The payload is spooled to a temp file first so its size is known and the
// upload is seekable; the temp file is removed best-effort afterwards.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) error {
	fullKey, err := s.fullKey(key)
	if err != nil {
		return err
	}

	tmp, err := s.createTemp()
	if err != nil {
		return fmt.Errorf("s3: creating temp file: %w", err)
	}
	defer func() {
		ignore.Close(tmp)
		ignore.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return fmt.Errorf("s3: writing temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("s3: seeking temp file: %w", err)
	}

	if size <= s.atomicLimit {
		return s.putObject(ctx, fullKey, tmp, size)
	}
	return s.putMultipart(ctx, fullKey, tmp, size)
}

func (s *Store) putObject(ctx context.Context, fullKey string, body io.ReadSeeker, size int64) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(fullKey),
		Body:          body,
		ContentLength: aws.Int64(size),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return ErrExists
		}
		return fmt.Errorf("s3: put object: %w", err)
	}
	return nil
}

// putMultipart uploads body in parts. The no-overwrite guarantee comes from
// If-None-Match on completion; the HeadObject preflight only fails fast.
func (s *Store) putMultipart(ctx context.Context, fullKey string, body io.ReaderAt, size int64) error {
	if size > maxObjectSize {
		return fmt.Errorf("s3: object size %d exceeds maximum %d", size, int64(maxObjectSize))
	}

	exists, err := s.exists(ctx, fullKey)
	if err != nil {
		return fmt.Errorf("s3: checking existence: %w", err)
	}
	if exists {
		return ErrExists
	}

	created, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("s3: create multipart upload: %w", err)
	}
	uploadID := aws.ToString(created.UploadId)

	parts, err := s.uploadParts(ctx, fullKey, uploadID, body, size)
	if err != nil {
		return ignore.Preserve(err, s.abortFunc(fullKey, uploadID))
	}

	_, err = s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(fullKey),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
		IfNoneMatch:     aws.String("*"),
	})
	if err != nil {
		if isPreconditionFailed(err) {
			err = ErrExists
		} else {
			err = fmt.Errorf("s3: complete multipart upload: %w", err)
		}
		return ignore.Preserve(err, s.abortFunc(fullKey, uploadID))
	}
	return nil
}

func (s *Store) uploadParts(ctx context.Context, fullKey, uploadID string, body io.ReaderAt, size int64) ([]types.CompletedPart, error) {
	partSize := s.partSize
	if size > partSize*maxParts {
		partSize = (size + maxParts - 1) / maxParts
	}

	var parts []types.CompletedPart
	var partNum int32
	for offset := int64(0); offset < size; offset += partSize {
		partNum++
		n := min(partSize, size-offset)

		out, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(fullKey),
			UploadId:      aws.String(uploadID),
			PartNumber:    aws.Int32(partNum),
			Body:          io.NewSectionReader(body, offset, n),
			ContentLength: aws.Int64(n),
		})
		if err != nil {
			return nil, fmt.Errorf("s3: upload part %d: %w", partNum, err)
		}
		parts = append(parts, types.CompletedPart{
			ETag:       out.ETag,
			PartNumber: aws.Int32(partNum),
		})
	}
	return parts, nil
}

// abortFunc returns a cleanup that aborts the upload. It runs on its own
// context so a canceled caller context still releases the stored parts.
//
//nolint:contextcheck // cleanup must outlive the caller's context
func (s *Store) abortFunc(fullKey, uploadID string) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), abortTimeout)
		defer cancel()
		_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
			Bucket:   aws.String(s.bucket),
			Key:      aws.String(fullKey),
			UploadId: aws.String(uploadID),
		})
		return err
	}
}

// Get returns a reader for the object at key. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullKey, err := s.fullKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3: get object: %w", err)
	}
	return out.Body, nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	fullKey, err := s.fullKey(key)
	if err != nil {
		return false, err
	}
	return s.exists(ctx, fullKey)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	fullKey, err := s.fullKey(key)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("s3: delete object: %w", err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, fullKey string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// fullKey cleans key and prepends the store prefix.
func (s *Store) fullKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		return "", ErrInvalidKey
	}
	return s.prefix + cleaned, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey" || code == "404"
	}
	return false
}

// isPreconditionFailed reports a conditional write rejected because the
// object already exists.
func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "412", "ConditionalRequestConflict", "409":
		return true
	}
	return false
}
