package docstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/notifero/mail-service/internal/config"
	"go.uber.org/zap"
)

// EmptyHTMLDocument is the placeholder body for templates that have no
// stored content yet.
const EmptyHTMLDocument = "<h1>Vacío</h1>"

// Client reads raw template documents out of the object store. A content
// ref is an opaque "bucket/objectName" handle stored in the catalog.
type Client struct {
	s3     *minio.Client
	logger *zap.SugaredLogger
}

func NewClient(cfg *config.MinioConfig, logger *zap.SugaredLogger) (*Client, error) {
	s3, err := minio.New(cfg.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure: cfg.USE_SSL,
	})
	if err != nil {
		return nil, err
	}

	return &Client{s3: s3, logger: logger}, nil
}

// FetchText retrieves the document behind contentRef and returns its
// content as UTF-8 text along with the stored MIME type.
func (c *Client) FetchText(ctx context.Context, contentRef string) (string, string, error) {
	bucket, objectName, ok := strings.Cut(contentRef, "/")
	if !ok || bucket == "" || objectName == "" {
		return "", "", fmt.Errorf("invalid content ref %q, expected bucket/objectName", contentRef)
	}

	object, err := c.s3.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", "", err
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		return "", "", err
	}

	data, err := io.ReadAll(object)
	if err != nil {
		return "", "", err
	}

	c.logger.Debugf("Fetched document %s (%s, %d bytes)", contentRef, info.ContentType, info.Size)

	if len(data) == 0 {
		return EmptyHTMLDocument, info.ContentType, nil
	}

	return string(data), info.ContentType, nil
}
