// Package s3 archives the promotion console transcripts in object storage.
package s3

import (
	"context"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"path"
	"strings"
)

// Uploader is the part of the S3 upload manager used by the archive.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// NewUploader creates the upload manager using the default AWS credentials chain.
func NewUploader(ctx context.Context) (*manager.Uploader, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "s3.NewUploader.LoadDefaultConfig"})
	}
	return manager.NewUploader(s3.NewFromConfig(cfg)), nil
}

// NewArchive creates a new instance of the transcripts archive.
func NewArchive(uploader Uploader, bucket, prefix string) (Archive, error) {
	if bucket == "" {
		return Archive{}, fmt.Errorf("%w: s3 bucket is required", errtype.ErrConfiguration)
	}
	return Archive{uploader: uploader, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// Archive uploads the transcripts to <prefix>/<job>/<process>/<promotion>.log.
type Archive struct {
	uploader Uploader
	bucket   string
	prefix   string
}

// Key returns the object key of the promotion transcript.
func (a Archive) Key(p app.Promotion) string {
	return path.Join(a.prefix, p.Job, p.Process, fmt.Sprintf("%d.log", p.ID))
}

// Archive uploads the transcript and returns the object key.
func (a Archive) Archive(ctx context.Context, p app.Promotion) (string, error) {
	key := a.Key(p)
	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(p.Console),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata: map[string]string{
			"build":  p.BuildID,
			"branch": p.Branch,
			"status": p.Status,
		},
	})
	if err != nil {
		return "", errors.WrapContext(err, errors.Context{
			Path:   "s3.Archive.Archive.Upload",
			Params: errors.Params{"promotion": p.ID, "key": key},
		})
	}
	return key, nil
}
