package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	err    error
	inputs []*s3.PutObjectInput
	bodies []string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestStore_Put(t *testing.T) {
	fake := &fakeS3{}
	store := newStore(fake, "flood-artifacts", "runs/2024")

	require.NoError(t, store.Put(context.Background(), "Midwest_2019_summary.csv", []byte("date\n"), "text/csv"))

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "flood-artifacts", aws.ToString(in.Bucket))
	assert.Equal(t, "runs/2024/Midwest_2019_summary.csv", aws.ToString(in.Key))
	assert.Equal(t, "text/csv", aws.ToString(in.ContentType))
	assert.Equal(t, "date\n", fake.bodies[0])
}

func TestStore_Key(t *testing.T) {
	assert.Equal(t, "a.json", newStore(&fakeS3{}, "b", "").Key("a.json"))
	assert.Equal(t, "p/a.json", newStore(&fakeS3{}, "b", "p/").Key("a.json"))
}

func TestStore_PutError(t *testing.T) {
	store := newStore(&fakeS3{err: errors.New("access denied")}, "b", "")

	err := store.Put(context.Background(), "x.png", nil, "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put x.png")
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewStore_CustomEndpoint(t *testing.T) {
	store, err := NewStore(context.Background(), Config{
		Bucket:    "local",
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	assert.Equal(t, "local", store.bucket)
}
