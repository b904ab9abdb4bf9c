package blobs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/sharelink/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.objects[*in.Bucket+"/"+*in.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func withFakeS3(t *testing.T, fake *fakeS3) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew
	})

	applied := &s3.Options{}
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(applied)
		}
		return fake
	}
	return applied
}

func TestS3Store_PutGetDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	opts := withFakeS3(t, fake)

	s, err := NewS3Store(context.Background(), S3Config{
		Region: "us-east-1", Endpoint: "http://localhost:9000", Bucket: "blobs",
		AccessKey: "ak", SecretKey: "sk",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "projects/p/1", []byte("data")))
	assert.Contains(t, fake.objects, "blobs/projects/p/1")

	got, err := s.Get(ctx, "projects/p/1")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	require.NoError(t, s.Delete(ctx, "projects/p/1"))
	_, err = s.Get(ctx, "projects/p/1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Store_RequiresBucket(t *testing.T) {
	withFakeS3(t, &fakeS3{objects: map[string][]byte{}})
	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestS3Store_LoadConfigError(t *testing.T) {
	withFakeS3(t, &fakeS3{objects: map[string][]byte{}})
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}
	_, err := NewS3Store(context.Background(), S3Config{Bucket: "b"})
	require.Error(t, err)
}

func TestS3Store_PutErrorWrapped(t *testing.T) {
	boom := errors.New("boom")
	withFakeS3(t, &fakeS3{objects: map[string][]byte{}, putErr: boom})
	s, err := NewS3Store(context.Background(), S3Config{Bucket: "b"})
	require.NoError(t, err)
	require.ErrorIs(t, s.Put(context.Background(), "k", nil), boom)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("x")))
}
