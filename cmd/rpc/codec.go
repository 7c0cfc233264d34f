package rpc

import (
	"io"
	"net/http"

	"github.com/meridian-network/meridian/lib"
)

// parse() reads and unmarshals a size limited JSON request body; a false
// return means the error response was already written
func parse(w http.ResponseWriter, r *http.Request, logger lib.LoggerI, ptr any, maxBodyKBs int64) bool {
	if r.Body == nil {
		writeError(w, logger, ErrInvalidRequest(io.EOF))
		return false
	}
	limited := io.LimitReader(r.Body, maxBodyKBs*1024)
	bz, err := io.ReadAll(limited)
	if err != nil {
		writeError(w, logger, ErrInvalidRequest(err))
		return false
	}
	if e := lib.UnmarshalJSON(bz, ptr); e != nil {
		writeError(w, logger, ErrInvalidRequest(e))
		return false
	}
	return true
}

// write() responds 200 with the JSON encoded payload
func write(w http.ResponseWriter, logger lib.LoggerI, payload any) {
	bz, err := lib.MarshalJSONIndent(payload)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	w.Header().Set(ContentType, ApplicationJSON)
	if _, e := w.Write(bz); e != nil {
		logger.Error(e.Error())
	}
}

// writeError() responds with the structured error and a status derived from
// its module and code
func writeError(w http.ResponseWriter, logger lib.LoggerI, err lib.ErrorI) {
	bz, e := lib.MarshalJSONIndent(err)
	if e != nil {
		bz = []byte(err.Error())
	}
	w.Header().Set(ContentType, ApplicationJSON)
	w.WriteHeader(statusFor(err))
	if _, e := w.Write(bz); e != nil {
		logger.Error(e.Error())
	}
}

// statusFor() maps an error to an http status code
func statusFor(err lib.ErrorI) int {
	if err.Module() == lib.StateMachineModule {
		switch err.Code() {
		case lib.CodeNoSuchToken, lib.CodeNoSuchPool, lib.CodeNoSuchOrder:
			return http.StatusNotFound
		}
	}
	return http.StatusBadRequest
}
