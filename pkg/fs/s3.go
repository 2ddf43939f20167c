package fs

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// S3 implements Storage for a single S3-compatible bucket.
type S3 struct {
	api    s3iface.S3API
	bucket string
}

func NewS3(bucket string) (*S3, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize S3 session")
	}

	return &S3{api: s3.New(sess), bucket: bucket}, nil
}

func (s *S3) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string

	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	err := s.api.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list bucket %q", s.bucket)
	}

	log.Debugf("listed %d object(s) in %s", len(keys), s.bucket)
	return keys, nil
}

func (s *S3) GetObject(ctx context.Context, key string) (*Object, error) {
	resp, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get object %q", key)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read object %q", key)
	}

	obj := &Object{
		Body:         body,
		Size:         int64(len(body)),
		LastModified: aws.TimeValue(resp.LastModified),
	}
	if resp.ContentLength != nil {
		obj.Size = *resp.ContentLength
	}

	return obj, nil
}

func (s *S3) Create(ctx context.Context, key, contentType string, body []byte) error {
	logger := log.WithField("key", key)

	logger.Infof("uploading file to %s", s.bucket)
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         aws.String(s3.BucketCannedACLPublicRead),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upload %q", key)
	}

	logger.Debugf("written %d bytes", len(body))
	return nil
}

func (s *S3) EnsurePublicRead(ctx context.Context, key string) error {
	acl, err := s.api.GetObjectAclWithContext(ctx, &s3.GetObjectAclInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to read ACL of %q", key)
	}

	for _, grant := range acl.Grants {
		if aws.StringValue(grant.Permission) == s3.PermissionRead {
			log.Debugf("ACL for %s is fine", key)
			return nil
		}
	}

	log.Infof("allowing public read on %s", key)
	_, err = s.api.PutObjectAclWithContext(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		ACL:    aws.String(s3.BucketCannedACLPublicRead),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to set ACL of %q", key)
	}

	return nil
}
