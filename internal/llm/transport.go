package llm

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
)

// maxCapturedBody bounds how much of a response body is kept for diagnostics.
const maxCapturedBody = 8 << 10

type captureKey struct{}

// bodyCapture receives the leading bytes of the response body of one call.
type bodyCapture struct {
	body []byte
}

func withBodyCapture(ctx context.Context) (context.Context, *bodyCapture) {
	c := &bodyCapture{}
	return context.WithValue(ctx, captureKey{}, c), c
}

// endpointTransport sends every request to a fixed endpoint, when set, and
// records the start of each response body for the call that made it.
type endpointTransport struct {
	base     http.RoundTripper
	endpoint *url.URL
}

func (t *endpointTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.endpoint != nil {
		req = req.Clone(req.Context())
		u := *t.endpoint
		req.URL = &u
		req.Host = u.Host
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	c, ok := req.Context().Value(captureKey{}).(*bodyCapture)
	if !ok || resp.Body == nil {
		return resp, nil
	}

	head, _ := io.ReadAll(io.LimitReader(resp.Body, maxCapturedBody))
	c.body = head
	resp.Body = replayBody{
		Reader: io.MultiReader(bytes.NewReader(head), resp.Body),
		Closer: resp.Body,
	}
	return resp, nil
}

// replayBody yields the captured head followed by the unread remainder.
type replayBody struct {
	io.Reader
	io.Closer
}

// wrapTransport returns a copy of hc whose transport goes through
// endpointTransport.
func wrapTransport(hc *http.Client, endpoint *url.URL) *http.Client {
	wrapped := *hc
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped.Transport = &endpointTransport{base: base, endpoint: endpoint}
	return &wrapped
}
