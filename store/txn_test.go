package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testParent(t *testing.T) *Store {
	s := testStore(t)
	return s
}

func TestTxnShadowsParent(t *testing.T) {
	parent := testParent(t)
	require.NoError(t, parent.Set([]byte("a"), []byte("parent")))
	txn := NewTxn(parent)
	// reads fall through to the parent until the key is touched
	got, err := txn.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("parent"), got)
	require.NoError(t, txn.Set([]byte("a"), []byte("txn")))
	got, err = txn.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("txn"), got)
	// a buffered delete reads back as nil while the parent still holds the value
	require.NoError(t, txn.Delete([]byte("a")))
	got, err = txn.Get([]byte("a"))
	require.NoError(t, err)
	require.Nil(t, got)
	got, err = parent.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("parent"), got)
}

func TestTxnWriteAppliesBuffer(t *testing.T) {
	parent := testParent(t)
	require.NoError(t, parent.Set([]byte("a"), []byte("1")))
	require.NoError(t, parent.Set([]byte("b"), []byte("2")))
	txn := NewTxn(parent)
	require.NoError(t, txn.Set([]byte("a"), []byte("updated")))
	require.NoError(t, txn.Delete([]byte("b")))
	require.NoError(t, txn.Set([]byte("c"), []byte("new")))
	require.NoError(t, txn.Write())
	got, err := parent.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("updated"), got)
	got, err = parent.Get([]byte("b"))
	require.NoError(t, err)
	require.Nil(t, got)
	got, err = parent.Get([]byte("c"))
	require.NoError(t, err)
	require.Equal(t, []byte("new"), got)
}

func TestTxnMergedIteration(t *testing.T) {
	tests := []struct {
		name     string
		parent   map[string]string
		sets     map[string]string
		deletes  []string
		prefix   string
		reverse  bool
		expected []string // expected key order
	}{
		{
			name:     "buffer interleaves with parent",
			parent:   map[string]string{"k/1": "p", "k/3": "p"},
			sets:     map[string]string{"k/2": "t", "k/4": "t"},
			prefix:   "k/",
			expected: []string{"k/1", "k/2", "k/3", "k/4"},
		},
		{
			name:     "buffered write shadows parent on equal key",
			parent:   map[string]string{"k/1": "p", "k/2": "p"},
			sets:     map[string]string{"k/2": "t"},
			prefix:   "k/",
			expected: []string{"k/1", "k/2"},
		},
		{
			name:     "buffered delete hides parent entry",
			parent:   map[string]string{"k/1": "p", "k/2": "p", "k/3": "p"},
			deletes:  []string{"k/2"},
			prefix:   "k/",
			expected: []string{"k/1", "k/3"},
		},
		{
			name:     "reverse merged order",
			parent:   map[string]string{"k/1": "p", "k/3": "p"},
			sets:     map[string]string{"k/2": "t"},
			prefix:   "k/",
			reverse:  true,
			expected: []string{"k/3", "k/2", "k/1"},
		},
		{
			name:     "prefix bounds both sides",
			parent:   map[string]string{"k/1": "p", "x/1": "p"},
			sets:     map[string]string{"k/2": "t", "y/1": "t"},
			prefix:   "k/",
			expected: []string{"k/1", "k/2"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			parent := testParent(t)
			for k, v := range test.parent {
				require.NoError(t, parent.Set([]byte(k), []byte(v)))
			}
			txn := NewTxn(parent)
			for k, v := range test.sets {
				require.NoError(t, txn.Set([]byte(k), []byte(v)))
			}
			for _, k := range test.deletes {
				require.NoError(t, txn.Delete([]byte(k)))
			}
			var keys []string
			if test.reverse {
				iter, err := txn.RevIterator([]byte(test.prefix))
				require.NoError(t, err)
				defer iter.Close()
				for ; iter.Valid(); iter.Next() {
					keys = append(keys, string(iter.Key()))
				}
			} else {
				iter, err := txn.Iterator([]byte(test.prefix))
				require.NoError(t, err)
				defer iter.Close()
				for ; iter.Valid(); iter.Next() {
					keys = append(keys, string(iter.Key()))
				}
			}
			require.Equal(t, test.expected, keys)
		})
	}
}

func TestNestedTxnDiscard(t *testing.T) {
	parent := testParent(t)
	require.NoError(t, parent.Set([]byte("a"), []byte("1")))
	outer := NewTxn(parent)
	require.NoError(t, outer.Set([]byte("b"), []byte("2")))
	inner := NewTxn(outer)
	require.NoError(t, inner.Set([]byte("c"), []byte("3")))
	// discarding the inner overlay leaves the outer buffer intact
	inner.Discard()
	got, err := outer.Get([]byte("c"))
	require.NoError(t, err)
	require.Nil(t, got)
	got, err = outer.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)
}
