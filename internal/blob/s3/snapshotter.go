package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Snapshotter archives raw feed pages so a run can be replayed or audited
// after the fact. Objects are keyed by date, run ID, and page index.
type Snapshotter struct {
	client   *Client
	uploader *manager.Uploader
	now      func() time.Time
}

// NewSnapshotter creates a Snapshotter backed by the given client. Uploads
// go through the S3 upload manager, which handles multipart transfers for
// large pages transparently.
func NewSnapshotter(client *Client) *Snapshotter {
	return &Snapshotter{
		client:   client,
		uploader: manager.NewUploader(client.S3()),
		now:      time.Now,
	}
}

// SnapshotPage writes the raw body of one feed page under
// feed/{date}/{runID}/page-{n}.json.
func (s *Snapshotter) SnapshotPage(ctx context.Context, runID string, page int, body []byte) error {
	key := fmt.Sprintf("feed/%s/%s/page-%d.json", s.now().UTC().Format("2006-01-02"), runID, page)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.client.Bucket()),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: upload %s: %w", key, err)
	}
	return nil
}
