// internal/common/http/client.go
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxBodyBytes bounds how much of a remote response is read into memory.
const MaxBodyBytes = 8 << 20

// ErrResponseTooLarge is returned when a response body exceeds the client's limit.
var ErrResponseTooLarge = errors.New("response body too large")

// Client is the shared outbound HTTP client. Every request carries the
// configured default headers and a deadline.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	maxBody    int64
}

func NewClient(timeout time.Duration, headers map[string]string) *Client {
	h := make(map[string]string, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: h,
		maxBody: MaxBodyBytes,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Do sends req with the default headers and reads the whole body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	req = req.WithContext(ctx)
	for k, v := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxBody)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
