// Package respond writes the JSON envelopes the storefront pages read.
package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope for data endpoints: {"error":{"code","message"}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Outcome is the envelope the payment form expects: success plus either an
// order id and message or an error text.
type Outcome struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON encodes v before touching w, so an encoding failure still
// produces a clean 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":{"code":"internal_error","message":"encode response"}}` + "\n")
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func WriteBadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, "bad_request", msg)
}

func Succeeded(w http.ResponseWriter, orderID, msg string) {
	WriteJSON(w, http.StatusOK, Outcome{Success: true, OrderID: orderID, Message: msg})
}

func Failed(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Outcome{Success: false, Error: msg})
}
