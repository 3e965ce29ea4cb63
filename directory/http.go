package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	genattr "github.com/identitykit/genattr"
	"github.com/identitykit/genattr/types"
)

// defaultPageSize is the page size used for directory listings.
const defaultPageSize = 250

// HTTPOptions configures the HTTP directory client.
type HTTPOptions struct {
	// BaseURL is the directory API base URL (e.g., "https://tenant.example.com/v3").
	BaseURL string

	// ClientID and ClientSecret are OAuth2 client credentials. The token
	// endpoint is derived from the base URL unless TokenURL is set.
	ClientID     string
	ClientSecret string
	TokenURL     string

	// Timeout bounds individual requests. Default: 30s.
	Timeout time.Duration

	// PageSize overrides the listing page size.
	PageSize int

	// Logger receives request-level debug logging. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// HTTPClient implements Client against the directory's REST API with OAuth2
// client-credentials authentication and offset pagination.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	pageSize int
	logger   *slog.Logger
}

// NewHTTPClient creates an HTTP directory client.
func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = strings.TrimSuffix(opts.BaseURL, "/") + "/oauth/token"
	}

	creds := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
	}

	client := creds.Client(context.Background())
	client.Timeout = opts.Timeout

	return &HTTPClient{
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		http:     client,
		pageSize: opts.PageSize,
		logger:   opts.Logger,
	}
}

// TestConnection verifies the directory answers an authenticated request.
func (c *HTTPClient) TestConnection(ctx context.Context) error {
	var out any
	if err := c.get(ctx, "/public-identities-config", nil, &out); err != nil {
		return genattr.NewNetworkError("HTTPClient.TestConnection", err)
	}
	return nil
}

// searchRequest is the directory search payload.
type searchRequest struct {
	Indices       []Index  `json:"indices"`
	Query         query    `json:"query"`
	Sort          []string `json:"sort"`
	IncludeNested bool     `json:"includeNested"`
}

type query struct {
	Query string `json:"query"`
}

// Search pages through the search API until a short page signals the end.
func (c *HTTPClient) Search(ctx context.Context, q string, index Index, includeNested bool) ([]*types.Identity, error) {
	body := searchRequest{
		Indices:       []Index{index},
		Query:         query{Query: q},
		Sort:          []string{"id"},
		IncludeNested: includeNested,
	}

	var results []*types.Identity
	for offset := 0; ; offset += c.pageSize {
		params := url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(c.pageSize)},
		}

		var page []*types.Identity
		if err := c.post(ctx, "/search", params, body, &page); err != nil {
			return nil, genattr.NewNetworkError("HTTPClient.Search", err)
		}
		results = append(results, page...)
		if len(page) < c.pageSize {
			break
		}
	}

	c.logger.Debug("directory search complete", "query", q, "results", len(results))
	return results, nil
}

// ListAccountsBySource pages through the accounts listing filtered to one
// source.
func (c *HTTPClient) ListAccountsBySource(ctx context.Context, sourceID string) ([]Account, error) {
	filters := fmt.Sprintf("sourceId eq %q", sourceID)

	var accounts []Account
	for offset := 0; ; offset += c.pageSize {
		params := url.Values{
			"filters": {filters},
			"offset":  {strconv.Itoa(offset)},
			"limit":   {strconv.Itoa(c.pageSize)},
		}

		var page []Account
		if err := c.get(ctx, "/accounts", params, &page); err != nil {
			return nil, genattr.NewNetworkError("HTTPClient.ListAccountsBySource", err)
		}
		accounts = append(accounts, page...)
		if len(page) < c.pageSize {
			break
		}
	}

	c.logger.Debug("account listing complete", "source", sourceID, "accounts", len(accounts))
	return accounts, nil
}

// GetIdentity returns the identity with the given id.
func (c *HTTPClient) GetIdentity(ctx context.Context, id string) (*types.Identity, error) {
	return c.searchOne(ctx, fmt.Sprintf("id:%s", id))
}

// GetIdentityByName returns the identity with the given exact name.
func (c *HTTPClient) GetIdentityByName(ctx context.Context, name string) (*types.Identity, error) {
	return c.searchOne(ctx, fmt.Sprintf("name.exact:%q", name))
}

func (c *HTTPClient) searchOne(ctx context.Context, q string) (*types.Identity, error) {
	results, err := c.Search(ctx, q, IndexIdentities, true)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, genattr.NewNotFoundError("HTTPClient.searchOne", genattr.ErrIdentityNotFound).
			WithContext(map[string]any{"query": q})
	}
	return results[0], nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, params url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, params, body, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
