package store

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBTreeCacheGetSet does basic sanity checks on our cache
func TestBTreeCacheGetSet(t *testing.T) {
	// devnull is a black hole... just to keep our types proper
	devnull := BTreeCacheable{EmptyKVStore{}}

	// base is the root of our data, we can layer on top and
	// all queries should work
	base := devnull.CacheWrap()

	k, v := []byte("french"), []byte("fry")
	assertMissing(t, base, k)
	require.NoError(t, base.Set(k, v))
	assertValue(t, base, k, v)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	assertValue(t, cache, k, v)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	assertMissing(t, cache, k2)
	require.NoError(t, cache.Set(k2, v2))
	assertValue(t, cache, k2, v2)
	assertMissing(t, base, k2)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	assertValue(t, base, k, v)
	assertValue(t, base, k2, v2)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	assertValue(t, c2, k, v)
	assertValue(t, c2, k2, v2)
	require.NoError(t, c2.Set(k3, v3))
	c2.Discard()

	// and commit another
	c3 := base.CacheWrap()
	assertValue(t, c3, k, v)
	require.NoError(t, c3.Delete(k))
	require.NoError(t, c3.Write())

	// make sure it commits proper
	assertMissing(t, base, k)
	assertValue(t, base, k2, v2)
	assertMissing(t, base, k3)

	// and to test devnull....
	require.NoError(t, base.Write())
	got, err := devnull.Get(k2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBTreeCacheConflicts(t *testing.T) {
	devnull := BTreeCacheable{EmptyKVStore{}}

	ks := randKeys(10, 16)
	vs := randKeys(20, 40)

	type pair struct {
		key   []byte
		value []byte
	}

	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []pair // key is what we query, value is what we expect
		childQueries  []pair
	}{
		"overwrite one, delete another, add a third": {
			parentOps:     []Op{SetOp(ks[1], vs[1]), SetOp(ks[2], vs[2])},
			childOps:      []Op{SetOp(ks[1], vs[11]), SetOp(ks[3], vs[7]), DelOp(ks[2])},
			parentQueries: []pair{{ks[1], vs[1]}, {ks[2], vs[2]}, {ks[3], nil}},
			childQueries:  []pair{{ks[1], vs[11]}, {ks[2], nil}, {ks[3], vs[7]}},
		},
		"delete then set again": {
			parentOps:     []Op{SetOp(ks[4], vs[4])},
			childOps:      []Op{DelOp(ks[4]), SetOp(ks[4], vs[5])},
			parentQueries: []pair{{ks[4], vs[4]}},
			childQueries:  []pair{{ks[4], vs[5]}},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent := devnull.CacheWrap()
			for _, op := range tc.parentOps {
				require.NoError(t, op.Apply(parent))
			}

			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				require.NoError(t, op.Apply(child))
			}

			for _, q := range tc.parentQueries {
				if q.value == nil {
					assertMissing(t, parent, q.key)
				} else {
					assertValue(t, parent, q.key, q.value)
				}
			}
			for _, q := range tc.childQueries {
				if q.value == nil {
					assertMissing(t, child, q.key)
				} else {
					assertValue(t, child, q.key, q.value)
				}
			}

			// write child to parent and make sure it also shows proper data
			require.NoError(t, child.Write())
			for _, q := range tc.childQueries {
				if q.value == nil {
					assertMissing(t, parent, q.key)
				} else {
					assertValue(t, parent, q.key, q.value)
				}
			}
		})
	}
}

func TestLogableStore(t *testing.T) {
	kv, ops := LogableStore()
	require.NoError(t, kv.Set([]byte("a"), []byte("1")))
	require.NoError(t, kv.Delete([]byte("b")))

	got := ops.ShowOps()
	require.Len(t, got, 2)
	assert.True(t, got[0].IsSetOp())
	assert.Equal(t, []byte("a"), got[0].Key())
	assert.Equal(t, []byte("1"), got[0].Value())
	assert.False(t, got[1].IsSetOp())
	assert.Equal(t, []byte("b"), got[1].Key())
}

func assertValue(t testing.TB, kv ReadOnlyKVStore, key, want []byte) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	has, err := kv.Has(key)
	require.NoError(t, err)
	assert.True(t, has)
}

func assertMissing(t testing.TB, kv ReadOnlyKVStore, key []byte) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)
	has, err := kv.Has(key)
	require.NoError(t, err)
	assert.False(t, has)
}

func randKeys(count, length int) [][]byte {
	res := make([][]byte, count)
	for i := 0; i < count; i++ {
		res[i] = randBytes(length)
	}
	return res
}

func randBytes(length int) []byte {
	res := make([]byte, length)
	if _, err := rand.Read(res); err != nil {
		panic(err)
	}
	return res
}
