package lib

import (
	jsoniter "github.com/json-iterator/go"
)

/*
	The state codec serializes every record that lands in the ledger store.
	Replicas must produce byte-identical encodings for identical state, so the
	codec is canonical JSON: map keys sorted, struct fields emitted in
	declaration order, no indentation. All state objects are plain structs
	with deterministic field encodings (amounts as fixed 8 digit strings,
	byte slices as hex).
*/

var cdc = jsoniter.Config{
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Marshal() serializes a state object into canonical bytes
func Marshal(message any) ([]byte, ErrorI) {
	bz, err := cdc.Marshal(message)
	if err != nil {
		return nil, ErrMarshal(err)
	}
	return bz, nil
}

// Unmarshal() deserializes canonical bytes into the specified object
// NOTE: nil data is a no-op, preserving the zero value of ptr
func Unmarshal(data []byte, ptr any) ErrorI {
	if data == nil || ptr == nil {
		return nil
	}
	if err := cdc.Unmarshal(data, ptr); err != nil {
		return ErrUnmarshal(err)
	}
	return nil
}

// MarshalJSON() serializes a message into a JSON byte slice
func MarshalJSON(message any) ([]byte, ErrorI) {
	bz, err := cdc.Marshal(message)
	if err != nil {
		return nil, ErrJSONMarshal(err)
	}
	return bz, nil
}

// MarshalJSONIndent() serializes a message into an indented JSON byte slice
func MarshalJSONIndent(message any) ([]byte, ErrorI) {
	bz, err := cdc.MarshalIndent(message, "", "  ")
	if err != nil {
		return nil, ErrJSONMarshal(err)
	}
	return bz, nil
}

// UnmarshalJSON() deserializes a JSON byte slice into the specified object
func UnmarshalJSON(bz []byte, ptr any) ErrorI {
	if err := cdc.Unmarshal(bz, ptr); err != nil {
		return ErrJSONUnmarshal(err)
	}
	return nil
}
