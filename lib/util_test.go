package lib

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinLenPrefixRoundTrip(t *testing.T) {
	segments := [][]byte{{1}, []byte("address-bytes-here.."), FormatUint64(42)}
	key := JoinLenPrefix(segments...)
	decoded := DecodeLengthPrefixed(key)
	require.Len(t, decoded, 3)
	for i, segment := range segments {
		require.Equal(t, segment, decoded[i])
	}
	// nil segments are skipped rather than encoded as empty
	require.Equal(t, JoinLenPrefix([]byte("a")), JoinLenPrefix(nil, []byte("a")))
}

func TestJoinLenPrefixNoCollisions(t *testing.T) {
	// the length byte keeps adjacent segments from bleeding into each other
	a := JoinLenPrefix([]byte("ab"), []byte("c"))
	b := JoinLenPrefix([]byte("a"), []byte("bc"))
	require.NotEqual(t, a, b)
}

func TestFormatUint64Sorts(t *testing.T) {
	// big endian encoding sorts lexicographically by value
	prev := FormatUint64(0)
	for _, v := range []uint64{1, 255, 256, 1 << 20, 1 << 40} {
		next := FormatUint64(v)
		require.Equal(t, -1, bytes.Compare(prev, next))
		prev = next
	}
}

func TestHexBytesJSON(t *testing.T) {
	type record struct {
		Data HexBytes `json:"data"`
	}
	bz, err := Marshal(&record{Data: []byte{0xde, 0xad, 0xbe, 0xef}})
	require.NoError(t, err)
	require.Equal(t, `{"data":"deadbeef"}`, string(bz))
	decoded := new(record)
	require.NoError(t, Unmarshal(bz, decoded))
	require.Equal(t, HexBytes{0xde, 0xad, 0xbe, 0xef}, decoded.Data)
}

func TestSafeMulDiv(t *testing.T) {
	// intermediates wider than 64 bits do not overflow
	require.Equal(t, uint64(1<<63), SafeMulDiv(1<<62, 10, 5))
	// flooring
	require.Equal(t, uint64(0), SafeMulDiv(1, 1, 3))
	// a zero denominator reads as zero; callers validate beforehand
	require.Equal(t, uint64(0), SafeMulDiv(5, 5, 0))
}
