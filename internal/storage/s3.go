package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3MediaStore stores media in an S3-compatible bucket (AWS S3, MinIO, etc.).
type S3MediaStore struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ MediaStorage = (*S3MediaStore)(nil)

type S3Options struct {
	Client *s3.Client
	Bucket string
	Prefix string // optional key prefix, e.g. "media/"
}

func NewS3MediaStore(opts S3Options) *S3MediaStore {
	return &S3MediaStore{
		client: opts.Client,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}
}

type S3ClientOptions struct {
	Region          string
	Endpoint        string // custom endpoint for MinIO and friends
	AccessKeyID     string // empty means the default credential chain
	SecretAccessKey string
	ForcePathStyle  bool
}

// NewS3Client builds a client from the default AWS config chain, overriding
// region, endpoint and credentials when set.
func NewS3Client(ctx context.Context, opts S3ClientOptions) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	}), nil
}

func (s *S3MediaStore) objectKey(name string) string {
	if s.prefix != "" {
		return s.prefix + name
	}
	return name
}

// nameFromKey maps an object key back to a media name. Keys outside the
// prefix or nested below it are not media names.
func (s *S3MediaStore) nameFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, s.prefix) {
		return "", false
	}
	name := strings.TrimPrefix(key, s.prefix)
	if ValidateName(name) != nil {
		return "", false
	}
	return name, true
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// isMissingObject reports whether err is S3's answer for an absent key.
// CopyObject surfaces NoSuchKey as a generic API error rather than the
// typed one, so match on the error code.
func isMissingObject(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func (s *S3MediaStore) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}

	// Spool to a temp file first to get a seekable body with a known length.
	tmpFile, err := os.CreateTemp("", "s3-media-*")
	if err != nil {
		return 0, fmt.Errorf("create tmp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
	}()

	n, err := io.Copy(tmpFile, r)
	if err != nil {
		return 0, fmt.Errorf("write tmp media: %w", err)
	}
	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek tmp file: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(name)),
		Body:          tmpFile,
		ContentLength: aws.Int64(n),
		ContentType:   aws.String(contentTypeFor(name)),
	})
	if err != nil {
		return 0, fmt.Errorf("s3 put %q: %w", name, err)
	}
	return n, nil
}

func (s *S3MediaStore) Open(ctx context.Context, name string) (*BlobFile, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(name)),
	})
	if err != nil {
		if isMissingObject(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get %q: %w", name, err)
	}
	defer resp.Body.Close()

	// Download to a temp file so callers can seek for range requests.
	tmpFile, err := os.CreateTemp("", "s3-read-*")
	if err != nil {
		return nil, fmt.Errorf("create tmp file: %w", err)
	}

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return nil, fmt.Errorf("download s3 object: %w", err)
	}

	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return nil, fmt.Errorf("seek tmp file: %w", err)
	}

	blob := NewBlobFile(tmpFile, n, aws.ToTime(resp.LastModified))
	blob.tmpPath = tmpFile.Name()
	return blob, nil
}

func (s *S3MediaStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(name)),
	})
	if err != nil {
		if isMissingObject(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %q: %w", name, err)
	}
	return true, nil
}

// Rename copies src to dst and then deletes src; S3 has no native move.
func (s *S3MediaStore) Rename(ctx context.Context, src, dst string) error {
	if err := ValidateName(src); err != nil {
		return err
	}
	if err := ValidateName(dst); err != nil {
		return err
	}
	if src == dst {
		return nil
	}

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(s.objectKey(dst)),
		CopySource: aws.String(s.bucket + "/" + s.prefix + url.PathEscape(src)),
	})
	if err != nil {
		if isMissingObject(err) {
			return fmt.Errorf("%s: %w", src, ErrNotFound)
		}
		return fmt.Errorf("s3 copy %q to %q: %w", src, dst, err)
	}
	return s.Delete(ctx, src)
}

func (s *S3MediaStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(name)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", name, err)
	}
	return nil
}

func (s *S3MediaStore) List(ctx context.Context) ([]MediaInfo, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix)
	}

	var out []MediaInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			name, ok := s.nameFromKey(aws.ToString(obj.Key))
			if !ok {
				continue
			}
			out = append(out, MediaInfo{
				Name:    name,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return out, nil
}
