// Package api is a Go client for the PolicySignoff JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/netx"
)

// TokenStore keeps the access/refresh token pair between calls.
type TokenStore interface {
	Tokens(ctx context.Context) (access, refresh string, err error)
	SaveTokens(ctx context.Context, access, refresh string) error
}

// memoryTokens is used when no persistent store is supplied.
type memoryTokens struct {
	access, refresh string
}

func (m *memoryTokens) Tokens(context.Context) (string, string, error) {
	return m.access, m.refresh, nil
}

func (m *memoryTokens) SaveTokens(_ context.Context, access, refresh string) error {
	m.access, m.refresh = access, refresh
	return nil
}

// ContentTypes maps accepted document extensions to their MIME types.
var ContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// New returns a client for the API at baseURL. hc and ts may be nil.
func New(baseURL string, hc *http.Client, ts TokenStore) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	if ts == nil {
		ts = &memoryTokens{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, tokens: ts}
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any, token string) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send performs a single request and decodes a 2xx body into out.
func (c *Client) send(ctx context.Context, method, path string, in, out any, token string) error {
	req, err := c.newRequest(ctx, method, path, in, token)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// do is send with the stored access token. A 401 triggers one refresh and
// retry, mirroring what the web client does.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	access, refresh, err := c.tokens.Tokens(ctx)
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, in, out, access)
	if !errors.Is(err, common.ErrUnauthorized) || refresh == "" {
		return err
	}

	pair, rerr := c.refresh(ctx, refresh)
	if rerr != nil {
		return err
	}
	return c.send(ctx, method, path, in, out, pair.AccessToken)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refreshToken}, &pair, ""); err != nil {
		return nil, err
	}
	if err := c.tokens.SaveTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, err
	}
	return &pair, nil
}

func policyPath(id int64, suffix string) string {
	return "/policies/" + strconv.FormatInt(id, 10) + suffix
}

func (c *Client) Health(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/health", nil, nil, "")
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var u User
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/register", in, &u, ""); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and stores the returned token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair
	in := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", in, &pair, ""); err != nil {
		return nil, err
	}
	if err := c.tokens.SaveTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout revokes the stored refresh token on the server.
func (c *Client) Logout(ctx context.Context) error {
	_, refresh, err := c.tokens.Tokens(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": refresh}, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListPolicies(ctx context.Context) ([]PolicyItem, error) {
	var out []PolicyItem
	if err := c.do(ctx, http.MethodGet, "/policies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPolicy(ctx context.Context, id int64) (*PolicyDetail, error) {
	var d PolicyDetail
	if err := c.do(ctx, http.MethodGet, policyPath(id, ""), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) CreatePolicy(ctx context.Context, in CreatePolicyRequest) (*PolicyItem, error) {
	var p PolicyItem
	if err := c.do(ctx, http.MethodPost, "/policies", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SignOff records the caller's acknowledgment. A 409 means the caller had
// already signed and is reported as success with AlreadySigned set.
func (c *Client) SignOff(ctx context.Context, id int64) (*SignResult, error) {
	var res SignResult
	err := c.do(ctx, http.MethodPost, policyPath(id, "/signoff"), nil, &res)
	if errors.Is(err, common.ErrConflict) {
		var apiErr *Error
		msg := "Already signed"
		if errors.As(err, &apiErr) && apiErr.Body.Message != "" {
			msg = apiErr.Body.Message
		}
		return &SignResult{Message: msg, AlreadySigned: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RequestUploadURL(ctx context.Context, id int64, fileName, contentType string) (*UploadTarget, error) {
	var t UploadTarget
	in := map[string]string{"filename": fileName, "content_type": contentType}
	if err := c.do(ctx, http.MethodPost, policyPath(id, "/upload-url"), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CompleteUpload(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, policyPath(id, "/upload-complete"), nil, nil)
}

func (c *Client) RequestDownloadURL(ctx context.Context, id int64) (*DownloadTarget, error) {
	var t DownloadTarget
	if err := c.do(ctx, http.MethodGet, policyPath(id, "/download-url"), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ContentTypeFor returns the MIME type accepted for path, by extension.
func ContentTypeFor(path string) (string, error) {
	ct, ok := ContentTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("unsupported document type %q: use pdf, doc or docx", filepath.Ext(path))
	}
	return ct, nil
}

// Attach uploads the file at path as the document of policy id and confirms
// the upload with the server.
func (c *Client) Attach(ctx context.Context, id int64, path string) (*UploadTarget, error) {
	ct, err := ContentTypeFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	t, err := c.RequestUploadURL(ctx, id, filepath.Base(path), ct)
	if err != nil {
		return nil, err
	}

	if err := netx.UploadToPresignedURL(ctx, c.http, t.UploadURL, ct, t.Headers, f, fi.Size()); err != nil {
		return nil, err
	}

	if err := c.CompleteUpload(ctx, id); err != nil {
		return nil, fmt.Errorf("confirm upload: %w", err)
	}
	return t, nil
}

// Download streams the document of policy id into w and returns its
// original file name.
func (c *Client) Download(ctx context.Context, id int64, w io.Writer) (string, int64, error) {
	t, err := c.RequestDownloadURL(ctx, id)
	if err != nil {
		return "", 0, err
	}

	n, err := netx.DownloadFromPresignedURL(ctx, c.http, t.DownloadURL, w)
	if err != nil {
		return "", n, err
	}
	return t.FileName, n, nil
}
