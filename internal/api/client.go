// Package api is the HTTP client for the Peek-a-Peak backend. All
// requests share one cookie-backed session; any 401 response fires the
// configured unauthorized hook so the owning session can invalidate
// itself.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/peekapeak/peekctl/internal/config"
	"github.com/peekapeak/peekctl/internal/logger"
)

// Client talks to the backend REST surface
type Client struct {
	baseURL        string
	uploadsBaseURL string
	httpClient     *http.Client
	cookies        *cookieStore

	onUnauthorized func()
}

// New creates a Client from configuration. When cfg.CookiePath is set the
// session cookie survives across processes.
func New(cfg config.APIConfig) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		uploadsBaseURL: cfg.UploadsBaseURL,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
	}

	if cfg.CookiePath != "" {
		c.cookies = newCookieStore(cfg.CookiePath)
		if err := c.cookies.Restore(jar, c.baseURL); err != nil {
			logger.Warn("Could not restore session cookies: %v", err)
		}
	}

	return c, nil
}

// SetUnauthorizedHook registers fn to be called once per 401 response
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// SaveSession persists the current cookies, if a cookie path is configured
func (c *Client) SaveSession() error {
	if c.cookies == nil {
		return nil
	}
	return c.cookies.Persist(c.httpClient.Jar, c.baseURL)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	body, contentType, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, body, contentType, out)
}

func (c *Client) patch(ctx context.Context, path string, in, out interface{}) error {
	body, contentType, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, body, contentType, out)
}

func (c *Client) delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	body := strings.NewReader(form.Encode())
	return c.do(ctx, http.MethodPost, path, body, "application/x-www-form-urlencoded", out)
}

func jsonBody(in interface{}) (io.Reader, string, error) {
	if in == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// do performs one request against baseURL+path and decodes a JSON
// response into out (when out is non-nil and the response has a body)
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// multipartUpload posts a file plus a JSON form field, streaming the
// multipart body through a pipe
func (c *Client) multipartUpload(ctx context.Context, path string, file io.Reader, filename, jsonField string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", jsonField, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField(jsonField, string(data)); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	return c.do(ctx, http.MethodPost, path, pr, mw.FormDataContentType(), out)
}

// OpenUpload fetches a stored photo binary from the uploads base path
func (c *Client) OpenUpload(ctx context.Context, fileName string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uploadsBaseURL+fileName, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch upload %s: %w", fileName, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, 0, errorFromResponse(resp)
	}

	return resp.Body, resp.ContentLength, nil
}
