package memstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trible.dev/space/hash"
	"trible.dev/space/id"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New(hash.SHA3256{})
	handle, err := s.Put([]byte("payload"))
	require.NoError(t, err)
	got, ok, err := s.Get(handle)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "payload", string(got))
}

func TestGetUnknownHandle(t *testing.T) {
	s := New(hash.SHA3256{})
	var h [32]byte
	_, ok, err := s.Get(h)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutIsIdempotentByHandle(t *testing.T) {
	s := New(hash.SHA3256{})
	h1, err := s.Put([]byte("same"))
	require.NoError(t, err)
	h2, err := s.Put([]byte("same"))
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	count := 0
	s.Each(func([32]byte, []byte) bool { count++; return true })
	require.Equal(t, 1, count)
}

func TestUpdateCAS(t *testing.T) {
	s := New(hash.SHA3256{})
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
	s := New(hash.SHA3256{})
	_, ok, err := s.Head(id.NewRandom())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEachStopsOnFalse(t *testing.T) {
	s := New(hash.SHA3256{})
	_, err := s.Put([]byte("a"))
	require.NoError(t, err)
	_, err = s.Put([]byte("b"))
	require.NoError(t, err)
	_, err = s.Put([]byte("c"))
	require.NoError(t, err)

	visited := 0
	s.Each(func([32]byte, []byte) bool {
		visited++
		return false
	})
	require.Equal(t, 1, visited)
}

func TestDeleteRemovesBlob(t *testing.T) {
	s := New(hash.SHA3256{})
	handle, err := s.Put([]byte("gone"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(handle))

	_, ok, err := s.Get(handle)
	require.NoError(t, err)
	require.False(t, ok)
}
