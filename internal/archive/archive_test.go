package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts []s3.PutObjectInput
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, *in)
	return &s3.PutObjectOutput{}, nil
}

func TestSavePayloadWritesDatedKey(t *testing.T) {
	fake := &fakeS3{}
	a := NewWithClient(fake, "clinichq-imports")

	key := a.SavePayload(context.Background(), "webhook", []byte(`{"airtableData":[]}`))
	require.NotEmpty(t, key)
	require.Len(t, fake.puts, 1)

	assert.True(t, strings.HasPrefix(key, "imports/webhook/"))
	assert.True(t, strings.HasSuffix(key, ".json"))
	assert.Equal(t, "clinichq-imports", *fake.puts[0].Bucket)

	body, err := io.ReadAll(fake.puts[0].Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"airtableData":[]}`, string(body))
}

func TestSavePayloadFailureIsNonFatal(t *testing.T) {
	a := NewWithClient(&fakeS3{err: errors.New("access denied")}, "bucket")
	key := a.SavePayload(context.Background(), "pull", []byte(`{}`))
	assert.Empty(t, key)
}

func TestDisabledArchiverIsNoop(t *testing.T) {
	a, err := New(context.Background(), "", "us-east-1")
	require.NoError(t, err)
	assert.Empty(t, a.SavePayload(context.Background(), "webhook", []byte(`{}`)))

	var nilA *Archiver
	assert.Empty(t, nilA.SavePayload(context.Background(), "webhook", []byte(`{}`)))
}
