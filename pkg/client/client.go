// Package client provides the HTTP client for the studio server, with retry
// and auth.
package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/models"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/protocol"
	"github.com/Stellar-proximology/you-N-ide-STUDIO2-sub001/pkg/retry"
)

// Client talks to the studio server API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig retry.Config

	mu        sync.RWMutex
	online    bool
	authToken string
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RetryConfig retry.Config
	AuthToken   string
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.DefaultConfig()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retryConfig: cfg.RetryConfig,
		online:      true,
		authToken:   cfg.AuthToken,
	}
}

// SetAuthToken sets the JWT auth token for requests.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// applyAuth adds the auth header to a request if a token is set.
func (c *Client) applyAuth(req *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

// IsOnline returns true if the last request reached the server.
func (c *Client) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

func (c *Client) setOnline(online bool) {
	c.mu.Lock()
	c.online = online
	c.mu.Unlock()
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setOnline(false)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.setOnline(false)
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	c.setOnline(true)
	return nil
}

// Login exchanges the password for a session token and installs it on the
// client.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	var resp protocol.TokenResponse
	err := c.doJSON(ctx, "POST", "/api/auth/token", protocol.TokenRequest{Password: password}, &resp)
	if err != nil {
		return "", err
	}
	c.SetAuthToken(resp.Token)
	return resp.Token, nil
}

// ─── Archives ───────────────────────────────────────────────────────────────

// CreateUploadURL requests a one-shot upload target from the server.
func (c *Client) CreateUploadURL(ctx context.Context) (*protocol.UploadURLResponse, error) {
	var resp protocol.UploadURLResponse
	if err := c.doJSON(ctx, "POST", "/api/zips/upload-url", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadArchive PUTs raw ZIP bytes to an upload URL. The URL carries its own
// credential (presigned or capability path), so no auth header is sent.
func (c *Client) UploadArchive(ctx context.Context, uploadURL string, data []byte) error {
	return retry.Do(ctx, c.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, "PUT", uploadURL, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.ContentLength = int64(len(data))
		req.Header.Set("Content-Type", "application/zip")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.setOnline(false)
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated &&
			resp.StatusCode != http.StatusNoContent {
			if resp.StatusCode >= 500 {
				return retry.Retryable(fmt.Errorf("server error: %d", resp.StatusCode))
			}
			return fmt.Errorf("upload failed: %d", resp.StatusCode)
		}

		c.setOnline(true)
		return nil
	})
}

// RegisterArchive registers an uploaded object as a stored archive.
func (c *Client) RegisterArchive(ctx context.Context, filename, objectPath string, size int64) (*protocol.ZipRef, error) {
	var resp protocol.ZipRef
	err := c.doJSON(ctx, "POST", "/api/zips", protocol.CreateZipRequest{
		Filename:   filename,
		ObjectPath: objectPath,
		Size:       size,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListArchives returns summaries of all stored archives, newest first.
func (c *Client) ListArchives(ctx context.Context) ([]protocol.ZipSummary, error) {
	var resp protocol.ZipListResponse
	if err := c.doJSON(ctx, "GET", "/api/zips", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Zips, nil
}

// GetArchive fetches the full archive record including entries.
func (c *Client) GetArchive(ctx context.Context, id string) (*models.StoredZip, error) {
	var z models.StoredZip
	if err := c.doJSON(ctx, "GET", "/api/zips/"+id, nil, &z); err != nil {
		return nil, err
	}
	return &z, nil
}

// DeleteArchive removes a stored archive.
func (c *Client) DeleteArchive(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/api/zips/"+id, nil, nil)
}

// FetchFile returns the content of one file inside an archive.
func (c *Client) FetchFile(ctx context.Context, id, path string) (string, error) {
	return c.fetchText(ctx, "/api/zips/"+id+"/file/"+path)
}

// Modify applies deletions and renames, producing a new archive.
func (c *Client) Modify(ctx context.Context, id string, deleted []string, renames []models.RenamePair) (*protocol.ZipRef, error) {
	var resp protocol.ZipRef
	err := c.doJSON(ctx, "POST", "/api/zips/"+id+"/modify", protocol.ModifyRequest{
		DeletedPaths: deleted,
		RenamedPaths: renames,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Merge combines multiple archives into a new one. Unresolved collisions fail
// with the server's 422 detail message.
func (c *Client) Merge(ctx context.Context, ids []string, resolutions map[string]string) (*protocol.MergeResponse, error) {
	var resp protocol.MergeResponse
	err := c.doJSON(ctx, "POST", "/api/zips/merge", protocol.MergeRequest{
		ZipIDs:              ids,
		ConflictResolutions: resolutions,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// EntryPoint fetches the detected entry point. Nil means not runnable.
func (c *Client) EntryPoint(ctx context.Context, id string) (*models.EntryPoint, error) {
	var resp protocol.EntryPointResponse
	if err := c.doJSON(ctx, "GET", "/api/zips/"+id+"/entrypoint", nil, &resp); err != nil {
		return nil, err
	}
	return resp.EntryPoint, nil
}

// Issues fetches the scanner findings for an archive.
func (c *Client) Issues(ctx context.Context, id string) ([]models.CodeIssue, error) {
	var resp protocol.IssuesResponse
	if err := c.doJSON(ctx, "GET", "/api/zips/"+id+"/issues", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Issues, nil
}

// FetchBundle fetches the executable bundle. An empty string means the
// archive is not runnable.
func (c *Client) FetchBundle(ctx context.Context, id string) (string, error) {
	return c.fetchText(ctx, "/api/zips/"+id+"/bundle")
}

// Download fetches the archive re-encoded as ZIP bytes.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := retry.Do(ctx, c.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/zips/"+id+"/download", nil)
		if err != nil {
			return err
		}
		c.applyAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.setOnline(false)
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.statusError(resp)
		}

		c.setOnline(true)
		data, err = io.ReadAll(resp.Body)
		return err
	})
	return data, err
}

// ─── Internals ──────────────────────────────────────────────────────────────

// doJSON performs a JSON request with retry. Network failures and 5xx are
// retried; 4xx fails fast with the server's error message.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	return retry.Do(ctx, c.retryConfig, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept-Encoding", "gzip")
		c.applyAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.setOnline(false)
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return c.statusError(resp)
		}

		c.setOnline(true)
		if out == nil {
			return nil
		}

		var body io.Reader = resp.Body
		if resp.Header.Get("Content-Encoding") == "gzip" {
			gr, err := gzip.NewReader(resp.Body)
			if err != nil {
				return err
			}
			defer gr.Close()
			body = gr
		}
		return json.NewDecoder(body).Decode(out)
	})
}

// fetchText fetches a plain-text endpoint; 204 yields an empty string.
func (c *Client) fetchText(ctx context.Context, path string) (string, error) {
	var text string
	err := retry.Do(ctx, c.retryConfig, func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
		if err != nil {
			return err
		}
		c.applyAuth(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.setOnline(false)
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNoContent {
			c.setOnline(true)
			text = ""
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return c.statusError(resp)
		}

		c.setOnline(true)
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		text = string(data)
		return nil
	})
	return text, err
}

// statusError maps a non-success response to an error, retryable for 5xx.
func (c *Client) statusError(resp *http.Response) error {
	if resp.StatusCode >= 500 {
		c.setOnline(false)
		return retry.Retryable(fmt.Errorf("server error: %d", resp.StatusCode))
	}
	var errResp protocol.ErrorResponse
	if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
		if errResp.Details != "" {
			return fmt.Errorf("%s: %s", errResp.Error, errResp.Details)
		}
		return fmt.Errorf("%s", errResp.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
