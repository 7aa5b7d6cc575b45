package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxErrorBody caps how much of a failed response body is kept for diagnostics.
const maxErrorBody = 4096

var ErrInvalidArgument = errors.New("invalid argument")

// Endpoint describes the shape of a single HTTP call: method, path relative
// to the API base and the names of its query parameters, in argument order.
type Endpoint struct {
	Method string
	Path   string
	Query  []string
}

// TransportError is returned when the request never produced a response.
type TransportError struct {
	Url string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Url, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApiError is returned for any non-2xx response.
type ApiError struct {
	StatusCode int
	Body       string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode error: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewRequest resolves the endpoint against base and binds args to the query
// parameter names positionally.
func (ep Endpoint) NewRequest(ctx context.Context, base *url.URL, args ...string) (*http.Request, error) {
	if len(args) != len(ep.Query) {
		return nil, fmt.Errorf("%w: %s %s takes %d arguments, got %d",
			ErrInvalidArgument, ep.Method, ep.Path, len(ep.Query), len(args))
	}
	target := base.ResolveReference(&url.URL{Path: ep.Path})
	qParam := url.Values{}
	for i, name := range ep.Query {
		qParam.Add(name, args[i])
	}
	target.RawQuery = qParam.Encode()
	return http.NewRequestWithContext(ctx, ep.Method, target.String(), nil)
}

// fetcher sends a prepared request. *http.Client and *ReqCache both qualify.
type fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// fetchJSON executes ep and decodes a 2xx body into T.
func fetchJSON[T any](ctx context.Context, f fetcher, base *url.URL, ep Endpoint, args ...string) (*T, error) {
	req, err := ep.NewRequest(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	resp, err := f.Do(req)
	if err != nil {
		// url.Error repeats the full URL, key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, &TransportError{Url: redactKey(req.URL), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ApiError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var data T
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		// A body cut short by cancellation is a transport failure, not bad JSON.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &TransportError{Url: redactKey(req.URL), Err: ctxErr}
		}
		return nil, &DecodeError{Err: err}
	}
	return &data, nil
}

// redactKey hides the API key so URLs can be logged.
func redactKey(u *url.URL) string {
	c := *u
	q := c.Query()
	if q.Has("key") {
		q.Set("key", "xxxxx")
		c.RawQuery = q.Encode()
	}
	return c.Redacted()
}
