// Package storage uploads report images to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/observability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxImageSize caps how much of a single image is read into memory.
const maxImageSize = 20 << 20

type Options struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
	// AllowedBuckets are the buckets callers may pick besides Bucket.
	AllowedBuckets []string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores images and returns their public URL.
type S3Uploader struct {
	client        objectPutter
	httpClient    *http.Client
	defaultBucket string
	buckets       map[string]bool
	publicURL     string
	maxSize       int64
	log           *zap.Logger
	now           func() time.Time
}

func NewS3Uploader(ctx context.Context, opts Options, log *zap.Logger) (*S3Uploader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := opts.PublicURL
	if base == "" {
		base = opts.Endpoint
	}
	u := newUploader(client, opts.Bucket, base, opts.AllowedBuckets, log)
	u.httpClient = observability.NewHTTPClient(30*time.Second, publicOnlyTransport())
	return u, nil
}

func newUploader(client objectPutter, bucket, publicURL string, allowed []string, log *zap.Logger) *S3Uploader {
	buckets := map[string]bool{bucket: true}
	for _, b := range allowed {
		buckets[b] = true
	}
	return &S3Uploader{
		client:        client,
		httpClient:    observability.NewHTTPClient(30*time.Second, nil),
		defaultBucket: bucket,
		buckets:       buckets,
		publicURL:     strings.TrimRight(publicURL, "/"),
		maxSize:       maxImageSize,
		log:           log,
		now:           time.Now,
	}
}

// Upload fetches the image at an http(s) uri and stores it in bucket under a
// generated report_* name. Other schemes are rejected with ErrUnsupportedImageURI.
func (u *S3Uploader) Upload(ctx context.Context, uri, bucket string) (string, error) {
	if strings.TrimSpace(uri) == "" {
		return "", errs.ErrEmptyImage
	}
	if !IsRemoteURI(uri) {
		return "", errs.ErrUnsupportedImageURI
	}
	bucket, err := u.resolveBucket(bucket)
	if err != nil {
		return "", err
	}
	data, err := u.fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	return u.put(ctx, bucket, fileExtension(uri), data)
}

// UploadFile stores a file from the local filesystem (a plain path or file://).
// It is meant for operator tooling and is not exposed over HTTP.
func (u *S3Uploader) UploadFile(ctx context.Context, p, bucket string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errs.ErrEmptyImage
	}
	if strings.HasPrefix(p, "file://") {
		if parsed, err := url.Parse(p); err == nil && parsed.Path != "" {
			p = parsed.Path
		} else {
			p = strings.TrimPrefix(p, "file://")
		}
	}
	bucket, err := u.resolveBucket(bucket)
	if err != nil {
		return "", err
	}
	f, err := os.Open(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrImageFetch, err)
	}
	defer f.Close()
	data, err := u.readLimited(f)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errs.ErrEmptyImage
	}
	return u.put(ctx, bucket, fileExtension(p), data)
}

// UploadStream stores the content of r; filename only determines the extension.
func (u *S3Uploader) UploadStream(ctx context.Context, r io.Reader, filename, bucket string) (string, error) {
	bucket, err := u.resolveBucket(bucket)
	if err != nil {
		return "", err
	}
	data, err := u.readLimited(r)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errs.ErrEmptyImage
	}
	return u.put(ctx, bucket, fileExtension(filename), data)
}

// IsRemoteURI reports whether uri is an absolute http(s) URL with a host.
func IsRemoteURI(uri string) bool {
	parsed, err := url.Parse(uri)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func (u *S3Uploader) resolveBucket(bucket string) (string, error) {
	if bucket == "" {
		return u.defaultBucket, nil
	}
	if !u.buckets[bucket] {
		return "", fmt.Errorf("%w: %q", errs.ErrBucketNotAllowed, bucket)
	}
	return bucket, nil
}

func (u *S3Uploader) put(ctx context.Context, bucket, ext string, data []byte) (string, error) {
	key := generateFileName(u.now()) + "." + ext
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(ext)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUploadFailed, err)
	}
	publicURL := fmt.Sprintf("%s/%s/%s", u.publicURL, bucket, key)
	u.log.Info("image uploaded", zap.String("bucket", bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return publicURL, nil
}

func (u *S3Uploader) fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrImageFetch, err)
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrImageFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", errs.ErrImageFetch, resp.StatusCode)
	}
	if resp.ContentLength > u.maxSize {
		return nil, errs.ErrImageTooLarge
	}
	return u.readLimited(resp.Body)
}

// readLimited reads at most maxSize bytes and fails when r holds more.
func (u *S3Uploader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrImageFetch, err)
	}
	if int64(len(data)) > u.maxSize {
		return nil, errs.ErrImageTooLarge
	}
	return data, nil
}

// fileExtension returns the extension of the uri's last path segment,
// "jpg" when there is none.
func fileExtension(uri string) string {
	p := uri
	if parsed, err := url.Parse(uri); err == nil && parsed.Path != "" {
		p = parsed.Path
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}

func contentType(ext string) string {
	switch strings.ToLower(ext) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func generateFileName(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("report_%d_%s", now.UnixMilli(), suffix)
}
