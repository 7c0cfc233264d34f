package lib

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"os"
	"path/filepath"
)

const HashSize = sha256.Size

// HexBytes is a byte slice that JSON round-trips as a hex string
type HexBytes []byte

// String() returns the hex representation of the bytes
func (x HexBytes) String() string { return BytesToString(x) }

// MarshalJSON() encodes the bytes as a quoted hex string
func (x HexBytes) MarshalJSON() ([]byte, error) {
	return []byte("\"" + x.String() + "\""), nil
}

// UnmarshalJSON() decodes a quoted hex string into bytes
func (x *HexBytes) UnmarshalJSON(b []byte) (err error) {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return ErrInvalidArgument()
	}
	bz, err := hex.DecodeString(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*x = bz
	return nil
}

// Hash() returns the sha256 hash of the input bytes
func Hash(bz []byte) []byte {
	h := sha256.Sum256(bz)
	return h[:]
}

// HashString() returns the hex encoded sha256 hash of the input bytes
func HashString(bz []byte) string { return BytesToString(Hash(bz)) }

// BytesToString() converts a byte slice to a hexadecimal string
func BytesToString(b []byte) string {
	return hex.EncodeToString(b)
}

// StringToBytes() converts a hexadecimal string back into a byte slice
func StringToBytes(s string) ([]byte, ErrorI) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrStringToBytes(err)
	}
	return b, nil
}

// Append() joins two byte slices into a newly allocated slice
func Append(a, b []byte) (c []byte) {
	c = make([]byte, 0, len(a)+len(b))
	c = append(append(c, a...), b...)
	return
}

// JoinLenPrefix() appends the items together separated by a single byte to represent the length of the segment
func JoinLenPrefix(toAppend ...[]byte) (res []byte) {
	// for each item to append
	for _, item := range toAppend {
		if item == nil {
			continue
		}
		// store the length of the segment in a single byte
		length := []byte{byte(len(item))}
		// append to the rest of the segment
		res = append(append(res, length...), item...)
	}
	return
}

// DecodeLengthPrefixed() decodes a key that is delimited by the length of the segment in a single byte
func DecodeLengthPrefixed(key []byte) (segments [][]byte) {
	var length int
	for i := 0; i < len(key); i += length {
		if i >= len(key) {
			break
		}
		// read the length prefix
		length = int(key[i])
		i++
		if i+length > len(key) {
			return nil
		}
		segments = append(segments, key[i:i+length])
	}
	return
}

// FormatUint64() encodes a uint64 big-endian so keys sort lexicographically by value
func FormatUint64(u uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, u)
	return b
}

// SafeMulDiv() computes a * b / c with big.Int intermediates, flooring the result
// division by zero returns 0 rather than panicking; callers validate denominators
func SafeMulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	n := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	n.Div(n, new(big.Int).SetUint64(c))
	// bound to uint64 range
	if !n.IsUint64() {
		return 0
	}
	return n.Uint64()
}

// SqrtProductUint64() computes floor(sqrt(a * b)) with big.Int intermediates
func SqrtProductUint64(a, b uint64) uint64 {
	n := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return n.Sqrt(n).Uint64()
}

// NewJSONFromFile() reads a json object from file
func NewJSONFromFile(o any, dataDirPath, filePath string) ErrorI {
	bz, err := os.ReadFile(filepath.Join(dataDirPath, filePath))
	if err != nil {
		return ErrReadFile(err)
	}
	return UnmarshalJSON(bz, o)
}

// SaveJSONToFile() saves a json object to a file
func SaveJSONToFile(j any, dataDirPath, filePath string) (err ErrorI) {
	bz, err := MarshalJSONIndent(j)
	if err != nil {
		return
	}
	if e := os.WriteFile(filepath.Join(dataDirPath, filePath), bz, os.ModePerm); e != nil {
		return ErrWriteFile(e)
	}
	return
}
