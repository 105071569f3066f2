package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const defaultUserAgent = "PoolScanner/1.0 (pool schedule aggregator)"

// Client wraps an http.Client with retries and upstream text decoding.
// Every fetch carries a timeout; one slow source never stalls the run.
type Client struct {
	HTTP      *http.Client
	Retries   int
	UserAgent string
}

// New builds a client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		Retries:   2,
		UserAgent: defaultUserAgent,
	}
}

// Get fetches a URL, retrying transport failures and 5xx responses.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	attempts := c.Retries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		body, retryable, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("%s returned %s", url, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("%s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body from %s: %w", url, err)
	}
	return body, false, nil
}

// GetText fetches a URL and decodes the payload to UTF-8 text. The city
// endpoints serve a mix of UTF-8 (with or without BOM) and UTF-16LE with
// BOM; all variants come back as plain text with marks stripped.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return DecodeText(body)
}

// DecodeText normalizes raw upstream bytes to UTF-8 without a BOM.
func DecodeText(body []byte) (string, error) {
	if bytes.HasPrefix(body, []byte{0xFF, 0xFE}) || bytes.HasPrefix(body, []byte{0xFE, 0xFF}) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, body)
		if err != nil {
			return "", fmt.Errorf("decode utf-16 payload: %w", err)
		}
		body = decoded
	}
	body = bytes.TrimPrefix(body, []byte{0xEF, 0xBB, 0xBF})
	return string(body), nil
}
