package fs

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCtx = context.Background()

func TestS3_ListKeys(t *testing.T) {
	stor := newMockS3(map[string][]byte{
		"rss.md":          []byte("# Show"),
		"2024-01-10/e.md": []byte("# Episode"),
	})

	keys, err := stor.ListKeys(testCtx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rss.md", "2024-01-10/e.md"}, keys)
}

func TestS3_ListKeysPaginated(t *testing.T) {
	files := make(map[string][]byte)
	files["a"] = []byte("1")
	files["b"] = []byte("2")
	files["c"] = []byte("3")

	stor := newMockS3(files)
	stor.api.(*mockS3API).pageSize = 2

	keys, err := stor.ListKeys(testCtx)
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestS3_GetObject(t *testing.T) {
	stor := newMockS3(map[string][]byte{"e.md": []byte("hello")})

	obj, err := stor.GetObject(testCtx, "e.md")
	require.NoError(t, err)
	assert.EqualValues(t, "hello", obj.Body)
	assert.EqualValues(t, 5, obj.Size)
	assert.False(t, obj.LastModified.IsZero())
}

func TestS3_GetObjectMissing(t *testing.T) {
	stor := newMockS3(nil)

	_, err := stor.GetObject(testCtx, "nope")
	assert.Error(t, err)
}

func TestS3_Create(t *testing.T) {
	files := make(map[string][]byte)
	stor := newMockS3(files)

	err := stor.Create(testCtx, "rss", "application/xml", []byte("<rss/>"))
	require.NoError(t, err)

	assert.EqualValues(t, "<rss/>", files["rss"])
	assert.EqualValues(t, "application/xml", stor.api.(*mockS3API).contentTypes["rss"])
	assert.EqualValues(t, s3.BucketCannedACLPublicRead, stor.api.(*mockS3API).acls["rss"])
}

func TestS3_EnsurePublicRead(t *testing.T) {
	stor := newMockS3(map[string][]byte{"e.mp3": {1, 2, 3}})
	api := stor.api.(*mockS3API)

	// No grant yet, a public-read ACL gets written.
	require.NoError(t, stor.EnsurePublicRead(testCtx, "e.mp3"))
	assert.EqualValues(t, s3.BucketCannedACLPublicRead, api.acls["e.mp3"])

	// Second call sees the READ grant and leaves the ACL alone.
	api.aclPuts = 0
	require.NoError(t, stor.EnsurePublicRead(testCtx, "e.mp3"))
	assert.Zero(t, api.aclPuts)
}

type mockS3API struct {
	s3iface.S3API

	files        map[string][]byte
	contentTypes map[string]string
	acls         map[string]string
	aclPuts      int
	pageSize     int
}

func newMockS3(files map[string][]byte) *S3 {
	if files == nil {
		files = make(map[string][]byte)
	}

	api := &mockS3API{
		files:        files,
		contentTypes: make(map[string]string),
		acls:         make(map[string]string),
	}

	return &S3{api: api, bucket: "mock-bucket"}
}

func (m *mockS3API) ListObjectsV2PagesWithContext(_ aws.Context, _ *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	var keys []string
	for key := range m.files {
		keys = append(keys, key)
	}

	pageSize := m.pageSize
	if pageSize == 0 {
		pageSize = 1000
	}

	for start := 0; start < len(keys) || start == 0; start += pageSize {
		end := start + pageSize
		if end > len(keys) {
			end = len(keys)
		}

		page := &s3.ListObjectsV2Output{}
		for _, key := range keys[start:end] {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(key)})
		}

		if !fn(page, end == len(keys)) {
			break
		}
		if end == len(keys) {
			break
		}
	}

	return nil
}

func (m *mockS3API) GetObjectWithContext(_ aws.Context, input *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := m.files[*input.Key]
	if !ok {
		return nil, awserr.New("NoSuchKey", "", nil)
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
		LastModified:  aws.Time(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
	}, nil
}

func (m *mockS3API) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	m.files[*input.Key] = body
	m.contentTypes[*input.Key] = aws.StringValue(input.ContentType)
	m.acls[*input.Key] = aws.StringValue(input.ACL)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3API) GetObjectAclWithContext(_ aws.Context, input *s3.GetObjectAclInput, _ ...request.Option) (*s3.GetObjectAclOutput, error) {
	if _, ok := m.files[*input.Key]; !ok {
		return nil, awserr.New("NoSuchKey", "", nil)
	}

	out := &s3.GetObjectAclOutput{}
	if m.acls[*input.Key] == s3.BucketCannedACLPublicRead {
		out.Grants = append(out.Grants, &s3.Grant{Permission: aws.String(s3.PermissionRead)})
	}

	return out, nil
}

func (m *mockS3API) PutObjectAclWithContext(_ aws.Context, input *s3.PutObjectAclInput, _ ...request.Option) (*s3.PutObjectAclOutput, error) {
	m.acls[*input.Key] = aws.StringValue(input.ACL)
	m.aclPuts++
	return &s3.PutObjectAclOutput{}, nil
}
