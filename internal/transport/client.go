package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"echolearn-client/internal/credstore"
	"echolearn-client/internal/dto"
	"echolearn-client/internal/pkg/logger"
)

// APIError is a non-2xx reply from the backend. Detail carries the
// backend's {"detail": ...} message when present.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}

// Client is the single configured HTTP client core. Outgoing requests get
// the stored bearer token attached; a 401 reply triggers exactly one token
// refresh followed by exactly one resubmit of the original request.
type Client struct {
	baseURL string
	http    *http.Client
	creds   *credstore.Store
	logger  logger.ILogger

	// Invoked after a failed refresh has torn the stored credentials down,
	// so the auth service can reset state and route to the auth entry point.
	onSessionExpired func()
}

func New(baseURL string, timeout time.Duration, creds *credstore.Store, log logger.ILogger) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		creds:  creds,
		logger: log,
	}
}

func (c *Client) SetSessionExpiredHandler(fn func()) {
	c.onSessionExpired = fn
}

// requestFactory rebuilds the outgoing request from scratch so the
// post-refresh resubmit never reuses a spent body reader.
type requestFactory func() (*http.Request, error)

// DoJSON sends a JSON request (body may be nil) and decodes a JSON reply
// into out (may be nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	build := func() (*http.Request, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}

	return c.send(build, out)
}

// DoMultipart sends a multipart/form-data POST with the given form fields
// and, when fileName is non-empty, a single file part.
func (c *Client) DoMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, fileContent []byte, out interface{}) error {
	build := func() (*http.Request, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, value := range fields {
			if err := writer.WriteField(key, value); err != nil {
				return nil, fmt.Errorf("write field %q: %w", key, err)
			}
		}
		if fileName != "" {
			part, err := writer.CreateFormFile(fileField, fileName)
			if err != nil {
				return nil, fmt.Errorf("create file part: %w", err)
			}
			if _, err := part.Write(fileContent); err != nil {
				return nil, fmt.Errorf("write file part: %w", err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("close multipart writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	}

	return c.send(build, out)
}

// send runs the interceptor loop: attach bearer, execute, and on a 401 do at
// most one refresh-and-resubmit. The retried flag is threaded explicitly so
// a second 401 on the resubmitted request propagates instead of looping.
func (c *Client) send(build requestFactory, out interface{}) error {
	retried := false
	for {
		req, err := build()
		if err != nil {
			return err
		}

		// Outgoing interceptor: bearer attach. Absence never blocks the
		// request; unauthenticated calls pass through untouched.
		if token, found := c.creds.Get(credstore.KeyAccessToken); found && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
		}

		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 400 {
			if out != nil && len(bodyBytes) > 0 {
				if err := json.Unmarshal(bodyBytes, out); err != nil {
					return fmt.Errorf("unmarshal response: %w", err)
				}
			}
			return nil
		}

		apiErr := parseAPIError(resp.StatusCode, bodyBytes)

		if resp.StatusCode == http.StatusUnauthorized && !retried {
			retried = true

			refreshToken, found := c.creds.Get(credstore.KeyRefreshToken)
			if !found || refreshToken == "" {
				// Nothing to refresh with: the original rejection stands.
				return apiErr
			}

			if refreshErr := c.refresh(req.Context(), refreshToken); refreshErr != nil {
				c.logger.Warn("transport", "token refresh failed, session expired", map[string]interface{}{
					"error": refreshErr.Error(),
				})
				if err := c.creds.ClearCredentials(); err != nil {
					c.logger.Error("transport", "failed to clear credentials", map[string]interface{}{"error": err})
				}
				if c.onSessionExpired != nil {
					c.onSessionExpired()
				}
				// The refresh failure, not the original 401, is what the
				// caller sees.
				return refreshErr
			}

			c.logger.Info("transport", "access token refreshed, retrying request", map[string]interface{}{
				"path": req.URL.Path,
			})
			continue
		}

		return apiErr
	}
}

// RefreshTokens exchanges the stored refresh token for a new token pair and
// persists it. This is the same call the 401 interceptor makes.
func (c *Client) RefreshTokens(ctx context.Context) error {
	refreshToken, found := c.creds.Get(credstore.KeyRefreshToken)
	if !found || refreshToken == "" {
		return fmt.Errorf("no refresh token available")
	}
	return c.refresh(ctx, refreshToken)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	payload, err := json.Marshal(dto.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/refresh", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp.StatusCode, bodyBytes)
	}

	var tokens dto.RefreshResponse
	if err := json.Unmarshal(bodyBytes, &tokens); err != nil {
		return fmt.Errorf("unmarshal refresh response: %w", err)
	}

	// Persist before returning so no caller ever observes a refreshed
	// session without stored tokens.
	if err := c.creds.Set(credstore.KeyAccessToken, tokens.AccessToken); err != nil {
		return err
	}
	if err := c.creds.Set(credstore.KeyRefreshToken, tokens.RefreshToken); err != nil {
		return err
	}
	return nil
}

func parseAPIError(status int, body []byte) *APIError {
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err != nil || detail.Detail == "" {
		return &APIError{Status: status}
	}
	return &APIError{Status: status, Detail: detail.Detail}
}
