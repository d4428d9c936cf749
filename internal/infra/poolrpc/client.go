package poolrpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// Client submits ledger requests over a node HTTP gateway.
type Client struct {
	http *resty.Client
}

func New() *Client {
	return NewWithTimeout(defaultTimeout)
}

func NewWithTimeout(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{http: resty.New().SetTimeout(timeout)}
}

func (c *Client) Submit(ctx context.Context, addr string, request []byte) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post(fmt.Sprintf("http://%s/submit", addr))
	if err != nil {
		return nil, fmt.Errorf("post to node: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("node returned status %s: %s", resp.Status(), resp.Body())
	}
	return resp.Body(), nil
}
