package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"

	"trible.dev/space/hash"
	"trible.dev/space/id"
)

// fakeAPIError is a minimal smithy.APIError, standing in for the generic
// 412 responses S3 returns for a failed IfMatch/IfNoneMatch precondition
// (the real SDK has no generated type for these; it surfaces them as a bare
// API error carrying the HTTP status's error code).
type fakeAPIError struct{ code string }

func (e *fakeAPIError) Error() string                { return e.code }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return "" }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }

var errPreconditionFailed = &fakeAPIError{code: "PreconditionFailed"}

type fakeObject struct {
	body []byte
	etag string
}

// fakeS3 is an in-memory stand-in for *s3.Client implementing just enough
// of S3's conditional-write semantics to exercise Store without a network.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	seq     int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]fakeObject{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := aws.ToString(in.Key)
	existing, exists := f.objects[key]

	if aws.ToString(in.IfNoneMatch) == "*" && exists {
		return nil, errPreconditionFailed
	}
	if in.IfMatch != nil {
		if !exists || existing.etag != aws.ToString(in.IfMatch) {
			return nil, errPreconditionFailed
		}
	}

	body, err := readAllSeeker(in.Body)
	if err != nil {
		return nil, err
	}
	f.seq++
	etag := fmt.Sprintf("etag-%d", f.seq)
	f.objects[key] = fakeObject{body: body, etag: etag}
	return &s3.PutObjectOutput{ETag: aws.String(etag)}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body: readCloserFromBytes(obj.body),
		ETag: aws.String(obj.etag),
	}, nil
}

func readAllSeeker(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

func readCloserFromBytes(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}

func openTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	client := newFakeS3()
	cfg := DefaultConfig()
	cfg.Bucket = "test-bucket"
	cfg.IndexPath = filepath.Join(t.TempDir(), "cache.db")
	s, err := open(client, cfg, hash.SHA3256{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, client
}

func TestPutGetRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	handle, err := s.Put([]byte("payload"))
	require.NoError(t, err)
	got, ok, err := s.Get(handle)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "payload", string(got))
}

func TestGetFallsBackToBucketWhenCacheMiss(t *testing.T) {
	s, client := openTestStore(t)
	handle, err := s.Put([]byte("payload"))
	require.NoError(t, err)

	// Drop the local cache entry and reopen against the same fake bucket to
	// force Get to round-trip through PutObject's stored bytes.
	cfg2 := s.cfg
	cfg2.IndexPath = filepath.Join(t.TempDir(), "cache2.db")
	s2, err := open(client, cfg2, hash.SHA3256{}, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, ok, err := s2.Get(handle)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "payload", string(got))
}

func TestGetServesFromMemCacheWithoutBucketCall(t *testing.T) {
	s, client := openTestStore(t)
	handle, err := s.Put([]byte("payload"))
	require.NoError(t, err)

	// Removing the object from the fake bucket proves a subsequent Get is
	// served from the in-process fastcache layer, not a network round trip.
	client.mu.Lock()
	delete(client.objects, s.blobKey(handle))
	client.mu.Unlock()

	got, ok, err := s.Get(handle)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "payload", string(got))
}

func TestGetUnknownHandle(t *testing.T) {
	s, _ := openTestStore(t)
	var h [32]byte
	_, ok, err := s.Get(h)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateCAS(t *testing.T) {
	s, _ := openTestStore(t)
	branch := id.NewRandom()
	var zero, h1, h2 [32]byte
	h1[0], h2[0] = 1, 2

	res, err := s.Update(branch, zero, h1)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = s.Update(branch, zero, h2)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, h1, res.Observed)

	res, err = s.Update(branch, h1, h2)
	require.NoError(t, err)
	require.True(t, res.Success)

	head, ok, err := s.Head(branch)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, h2, head)
}

func TestHeadUnknownBranch(t *testing.T) {
	s, _ := openTestStore(t)
	_, ok, err := s.Head(id.NewRandom())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := open(newFakeS3(), Config{}, hash.SHA3256{}, nil)
	require.Error(t, err)
}
