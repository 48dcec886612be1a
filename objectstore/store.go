// Package objectstore implements a BlobStore/BranchStore backed by an S3
// bucket, with a local bbolt cache so a blob already fetched or put doesn't
// round-trip to the network again. Put/Get/Update/Head stay synchronous;
// the network I/O happens underneath.
package objectstore

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"path"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"trible.dev/space/hash"
	"trible.dev/space/id"
	"trible.dev/space/store"
)

var cacheBucket = []byte("blobs")

// s3API is the subset of *s3.Client this package calls, narrowed to an
// interface in the same "accept interfaces" style as store.Store, so tests
// can substitute an in-memory fake instead of a real bucket.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store is a synchronous BlobStore/BranchStore backed by an S3 bucket.
type Store struct {
	client   s3API
	cache    *bolt.DB
	memCache *fastcache.Cache

	hashProto hash.Protocol
	cfg       Config
	logger    *zap.Logger
}

// Open builds an S3 client from cfg and the default AWS credential chain,
// and opens the local bbolt cache at cfg.IndexPath.
func Open(ctx context.Context, cfg Config, h hash.Protocol, logger *zap.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, &Error{Code: IoError, Msg: "objectstore: load aws config", Err: err}
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return open(client, cfg, h, logger)
}

// open wires a Store around an already-constructed s3API, the seam Open and
// tests both go through.
func open(client s3API, cfg Config, h hash.Protocol, logger *zap.Logger) (*Store, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, &Error{Code: InvalidConfig, Msg: err.Error()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bolt.Open(cfg.IndexPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, &Error{Code: IoError, Msg: "objectstore: open cache", Err: err}
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, &Error{Code: IoError, Msg: "objectstore: provision cache bucket", Err: err}
	}

	memCache := fastcache.New(cfg.MemCacheBytes)

	return &Store{client: client, cache: db, memCache: memCache, hashProto: h, cfg: cfg, logger: logger}, nil
}

// Close releases the local cache file. It does not close any underlying S3
// client, which owns no unmanaged resources.
func (s *Store) Close() error {
	if err := s.cache.Close(); err != nil {
		return &Error{Code: IoError, Msg: "objectstore: close cache", Err: err}
	}
	return nil
}

func (s *Store) blobKey(handle [32]byte) string {
	return path.Join(s.cfg.Prefix, "blobs", hex.EncodeToString(handle[:]))
}

func (s *Store) branchKey(branch id.Id) string {
	return path.Join(s.cfg.Prefix, "branches", branch.String())
}

// cacheGet checks the in-process fastcache layer before falling back to the
// durable bbolt cache, promoting a bbolt hit back into fastcache so the next
// lookup of the same blob in this process skips the disk read entirely.
func (s *Store) cacheGet(handle [32]byte) ([]byte, bool) {
	if v := s.memCache.Get(nil, handle[:]); v != nil {
		return v, true
	}

	var out []byte
	_ = s.cache.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cacheBucket).Get(handle[:]); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if out != nil {
		s.memCache.Set(handle[:], out)
	}
	return out, out != nil
}

func (s *Store) cachePut(handle [32]byte, payload []byte) {
	s.memCache.Set(handle[:], payload)
	_ = s.cache.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(handle[:], payload)
	})
}

// Put uploads payload under its content handle, creating the object only if
// absent: a blob already present under its content handle is never
// rewritten.
func (s *Store) Put(payload []byte) ([32]byte, error) {
	handle := s.hashProto.Sum(payload)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(s.blobKey(handle)),
		Body:        bytes.NewReader(payload),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil && !isPreconditionFailed(err) {
		return [32]byte{}, &Error{Code: IoError, Msg: "objectstore: put blob", Err: err}
	}

	s.cachePut(handle, payload)
	return handle, nil
}

// Get returns the blob payload stored under handle, checking the local
// cache before falling back to S3.
func (s *Store) Get(handle [32]byte) ([]byte, bool, error) {
	if payload, ok := s.cacheGet(handle); ok {
		return payload, true, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.blobKey(handle)),
	})
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Code: IoError, Msg: "objectstore: get blob", Err: err}
	}
	defer out.Body.Close()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, &Error{Code: IoError, Msg: "objectstore: read blob body", Err: err}
	}
	if s.hashProto.Sum(payload) != handle {
		return nil, false, &Error{Code: HashMismatch, Msg: "objectstore: stored object does not hash to its key"}
	}

	s.cachePut(handle, payload)
	return payload, true, nil
}

// Head returns branch's current head handle, if the branch object exists.
func (s *Store) Head(branch id.Id) ([32]byte, bool, error) {
	handle, _, found, err := s.getBranchObject(branch)
	if err != nil {
		return [32]byte{}, false, err
	}
	return handle, found, nil
}

// getBranchObject returns the branch's current head, its ETag (for a
// subsequent IfMatch), and whether the object exists at all.
func (s *Store) getBranchObject(branch id.Id) ([32]byte, string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.branchKey(branch)),
	})
	if isNotFound(err) {
		return [32]byte{}, "", false, nil
	}
	if err != nil {
		return [32]byte{}, "", false, &Error{Code: IoError, Msg: "objectstore: get branch head", Err: err}
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return [32]byte{}, "", false, &Error{Code: IoError, Msg: "objectstore: read branch head body", Err: err}
	}
	if len(raw) != 32 {
		return [32]byte{}, "", false, &Error{Code: IoError, Msg: "objectstore: malformed branch head object"}
	}
	etag := ""
	if out.ETag != nil {
		etag = *out.ETag
	}
	return [32]byte(raw), etag, true, nil
}

// Update performs the branch-head compare-and-swap with a conditional
// PutObject: IfNoneMatch for branches previously absent, IfMatch of the
// object's current ETag for an existing branch, so the check-and-write is
// atomic on the bucket's side rather than racing a separate read against the
// write. Update makes exactly one attempt and reports the conflict via
// UpdateResult — the retry loop belongs to the caller, consistent with the
// single-shot CAS contract every other backend in this module exposes.
func (s *Store) Update(branch id.Id, old, new [32]byte) (store.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.branchKey(branch)),
		Body:   bytes.NewReader(new[:]),
	}
	if old == [32]byte{} {
		input.IfNoneMatch = aws.String("*")
	} else {
		current, etag, found, err := s.getBranchObject(branch)
		if err != nil {
			return store.UpdateResult{}, err
		}
		if !found || current != old {
			return store.UpdateResult{Success: false, Observed: current}, nil
		}
		input.IfMatch = aws.String(etag)
	}

	_, err := s.client.PutObject(ctx, input)
	if isPreconditionFailed(err) {
		current, _, _, getErr := s.getBranchObject(branch)
		if getErr != nil {
			return store.UpdateResult{}, getErr
		}
		return store.UpdateResult{Success: false, Observed: current}, nil
	}
	if err != nil {
		return store.UpdateResult{}, &Error{Code: IoError, Msg: "objectstore: put branch head", Err: err}
	}
	return store.UpdateResult{Success: true}, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

func isPreconditionFailed(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	default:
		return false
	}
}
