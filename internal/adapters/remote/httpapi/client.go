// Package httpapi binds resource configurations to a JSON REST management API.
package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	"github.com/olusolaa/tenant-reconciler/internal/errors"
)

const ClientTypeHTTP = "http"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client struct {
	baseURL  *url.URL
	http     *http.Client
	pageSize int
	logger   ports.Logger
}

// NewClient builds a client authenticated with the configured static token
// or with the OAuth2 client-credentials grant.
func NewClient(ctx context.Context, cfg Config, logger ports.Logger) (*Client, error) {
	var httpClient *http.Client
	switch {
	case cfg.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	case cfg.ClientID != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		if cfg.Audience != "" {
			cc.EndpointParams = url.Values{"audience": {cfg.Audience}}
		}
		httpClient = cc.Client(ctx)
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "no API credentials configured",
			"Set api.token or api.client_id, api.client_secret and api.token_url.")
	}
	httpClient.Timeout = cfg.timeout()

	return NewClientWithHTTPClient(cfg.BaseURL, httpClient, cfg.pageSize(), logger)
}

// NewClientWithHTTPClient uses httpClient as is; authentication is the
// caller's concern.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client, pageSize int, logger ports.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("invalid API base url %q", baseURL), "Use an absolute URL such as https://tenant.example.com/api/v2.")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		baseURL:  u,
		http:     httpClient,
		pageSize: pageSize,
		logger:   logger.WithFields(map[string]any{"component": "api_client"}),
	}, nil
}

func (c *Client) Type() string {
	return ClientTypeHTTP
}

func (c *Client) Bind(cfg domain.ResourceConfig) ports.ResourceAPI {
	return &binding{client: c, cfg: cfg}
}

// endpoint joins the base url with an already escaped path.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	escaped := strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.TrimLeft(path, "/")
	if unescaped, err := url.PathUnescape(escaped); err == nil {
		u.Path = unescaped
		u.RawPath = escaped
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a JSON request and decodes a JSON response into out. Non-2xx
// responses become *errors.APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, fmt.Sprintf("failed to encode %s %s request body", method, path))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, fmt.Sprintf("failed to build %s %s request", method, path))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugf(ctx, "%s %s", method, req.URL.RequestURI())
	resp, err := c.http.Do(req)
	if err != nil {
		return handleTransportError(ctx, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CodePlatformAPIError, fmt.Sprintf("failed to read %s %s response", method, path))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, method, path, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, errors.CodePlatformAPIError, fmt.Sprintf("failed to decode %s %s response", method, path))
	}
	return nil
}
