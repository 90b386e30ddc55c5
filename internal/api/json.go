package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

type invokeBody struct {
	ExecTimeMs int64 `json:"exec_time_ms"`
}

// decodeInvokeBody reads the optional invocation payload. An empty body is
// valid and maps to a zero-value payload, matching the original handler's
// "missing body means default args" behavior.
func decodeInvokeBody(r *http.Request) ([]byte, error) {
	var body invokeBody
	if err := decodeJSON(r, &body); err != nil {
		return nil, err
	}
	return json.Marshal(body)
}
