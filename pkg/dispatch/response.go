package dispatch

import "github.com/mcptoolkit/forge/internal/errs"

// Response is the wire shape returned by every generated transport for
// every request (§4.7, §6.4): `{ "status", "value"? , "kind"?, "message"? }`.
type Response struct {
	Status  string `json:"status"`
	Value   any    `json:"value,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewOK(value any) *Response {
	return &Response{Status: "ok", Value: value}
}

func NewError(e *errs.Error) *Response {
	return &Response{Status: "error", Kind: string(e.Kind), Message: e.Error()}
}
