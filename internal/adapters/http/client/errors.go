package client

import "errors"

// Sentinel kinds for client failures. Rejections the server explains with
// a known code also wrap the matching customevents sentinel.
var (
	ErrRequest  = errors.New("request failed")
	ErrResponse = errors.New("unexpected response")
)
