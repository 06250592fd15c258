package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-retryablehttp"

	"product-image-studio/logging"
	"product-image-studio/utils"
)

// maxImageBytes bounds a single fetched image.
const maxImageBytes = 50 << 20

// ObjectFetcher fetches the raw bytes behind a parsed reference.
type ObjectFetcher interface {
	Fetch(ctx context.Context, ref *utils.Reference) ([]byte, error)
}

// ByteFetcher fetches the raw bytes behind a reference string.
type ByteFetcher interface {
	FetchBytes(ctx context.Context, raw string) ([]byte, error)
}

// SourceRouter dispatches references to the fetcher of their kind.
type SourceRouter struct {
	fetchers map[utils.ReferenceKind]ObjectFetcher
}

// Ensure SourceRouter implements ByteFetcher
var _ ByteFetcher = (*SourceRouter)(nil)

// NewSourceRouter creates a router. Kinds without a fetcher fall back to the
// HTTP fetcher when one is registered.
func NewSourceRouter(fetchers map[utils.ReferenceKind]ObjectFetcher) *SourceRouter {
	return &SourceRouter{fetchers: fetchers}
}

// FetchBytes parses raw and fetches it.
func (r *SourceRouter) FetchBytes(ctx context.Context, raw string) ([]byte, error) {
	ref, err := utils.ParseReference(raw)
	if err != nil {
		return nil, err
	}
	fetcher, ok := r.fetchers[ref.Kind]
	if !ok && (ref.Kind == utils.KindDrive || ref.Kind == utils.KindAzureBlob) {
		fetcher, ok = r.fetchers[utils.KindHTTP]
	}
	if !ok {
		return nil, fmt.Errorf("no source configured for %s reference %q", ref.Kind, raw)
	}
	return fetcher.Fetch(ctx, ref)
}

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorf("🔄 [RETRY ERROR] %s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("[RETRY] %s %v", msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnf("⚠️  [RETRY WARN] %s %v", msg, keysAndValues)
}

// HTTPSource fetches plain http(s) references with retries.
type HTTPSource struct {
	client *retryablehttp.Client
}

// NewHTTPSource creates an HTTPSource. retryMax is the number of retries after the
// first attempt.
func NewHTTPSource(retryMax int, log *logging.Logger) *HTTPSource {
	if log == nil {
		log = logging.Nop()
	}
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = &retryLogger{log: log}
	return &HTTPSource{client: client}
}

// StandardClient returns a net/http client backed by the retrying client.
func (s *HTTPSource) StandardClient() *http.Client {
	return s.client.StandardClient()
}

// Fetch downloads ref.Raw.
func (s *HTTPSource) Fetch(ctx context.Context, ref *utils.Reference) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, ref.Raw, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image endpoint returned status %d", resp.StatusCode)
	}
	return readLimited(resp.Body)
}

// DriveSource fetches Drive references through the Drive API.
type DriveSource struct {
	drive DriveServiceInterface
}

// NewDriveSource creates a DriveSource.
func NewDriveSource(drive DriveServiceInterface) *DriveSource {
	return &DriveSource{drive: drive}
}

// Fetch downloads the Drive file of ref.
func (s *DriveSource) Fetch(ctx context.Context, ref *utils.Reference) ([]byte, error) {
	return s.drive.DownloadImage(ctx, ref.DriveFileID)
}

// S3Source fetches s3:// references using the default AWS credential chain.
type S3Source struct {
	region string

	once   sync.Once
	client *s3.Client
	err    error
}

// NewS3Source creates an S3Source. The AWS config is loaded on first use.
func NewS3Source(region string) *S3Source {
	return &S3Source{region: region}
}

func (s *S3Source) init(ctx context.Context) error {
	s.once.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s.region))
		if err != nil {
			s.err = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		s.client = s3.NewFromConfig(cfg)
	})
	return s.err
}

// Fetch downloads the object of ref.
func (s *S3Source) Fetch(ctx context.Context, ref *utils.Reference) ([]byte, error) {
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3 object %s/%s: %w", ref.Bucket, ref.Key, err)
	}
	defer out.Body.Close()
	return readLimited(out.Body)
}

// AzureBlobSource fetches public or SAS-signed Azure blob references.
type AzureBlobSource struct {
	transport *http.Client

	mu      sync.Mutex
	clients map[string]*azblob.Client
}

// NewAzureBlobSource creates an AzureBlobSource sending requests through transport.
func NewAzureBlobSource(transport *http.Client) *AzureBlobSource {
	return &AzureBlobSource{transport: transport, clients: make(map[string]*azblob.Client)}
}

func (s *AzureBlobSource) client(serviceURL string) (*azblob.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[serviceURL]; ok {
		return c, nil
	}
	opts := &azblob.ClientOptions{}
	if s.transport != nil {
		opts.ClientOptions = azcore.ClientOptions{Transport: s.transport}
	}
	c, err := azblob.NewClientWithNoCredential(serviceURL, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}
	s.clients[serviceURL] = c
	return c, nil
}

// Fetch downloads the blob of ref.
func (s *AzureBlobSource) Fetch(ctx context.Context, ref *utils.Reference) ([]byte, error) {
	c, err := s.client(ref.ServiceURL)
	if err != nil {
		return nil, err
	}
	resp, err := c.DownloadStream(ctx, ref.Container, ref.Blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s/%s: %w", ref.Container, ref.Blob, err)
	}
	defer resp.Body.Close()
	return readLimited(resp.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return data, nil
}
