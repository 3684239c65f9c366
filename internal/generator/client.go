package generator

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
	"git.home.luguber.info/inful/readmegen/internal/logfields"
	"git.home.luguber.info/inful/readmegen/internal/version"
)

const (
	DefaultBaseURL = "http://localhost:8001"
	DefaultPath    = "/generate-readme"
	DefaultTimeout = 120 * time.Second

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 10 << 20
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL    string
	Path       string
	Timeout    time.Duration
	Provider   string
	HTTPClient *http.Client
	Localizer  *i18n.Localizer
	Logger     *slog.Logger
}

// Client is the HTTP implementation of Generator.
type Client struct {
	endpoint   string
	provider   string
	httpClient *http.Client
	loc        *i18n.Localizer
	logger     *slog.Logger
}

type generateRequest struct {
	GithubURL  string `json:"githubUrl"`
	AIProvider string `json:"aiProvider,omitempty"`
}

type generateResponse struct {
	Readme *json.RawMessage `json:"readme"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	p := opts.Path
	if p == "" {
		p = DefaultPath
	}

	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ferrors.ConfigError("service base URL must be an absolute http(s) URL").
			WithCause(err).
			WithContext("base_url", base).
			Build()
	}
	u.Path = path.Join("/", u.Path, p)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	loc := opts.Localizer
	if loc == nil {
		loc = i18n.New(i18n.BaseLocale)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:   u.String(),
		provider:   strings.TrimSpace(opts.Provider),
		httpClient: httpClient,
		loc:        loc,
		logger:     logger,
	}, nil
}

// Endpoint returns the full URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Generate sends repoURL to the service and waits for the document.
func (c *Client) Generate(ctx context.Context, repoURL string) Result {
	req, err := c.newRequest(ctx, repoURL)
	if err != nil {
		return c.fail(repoURL, ferrors.InternalError(c.loc.T("generate.unexpected")).WithCause(err).Build())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && stdErrors.Is(err, ctxErr) {
			return c.fail(repoURL, ferrors.WrapError(err, ferrors.CategoryRuntime, c.loc.T("generate.unexpected")).
				WithContext("canceled", true).
				Build())
		}
		return c.fail(repoURL, ferrors.WrapError(err, ferrors.CategoryNetwork, c.loc.T("generate.unexpected")).Build())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.fail(repoURL, ferrors.WrapError(err, ferrors.CategoryNetwork, c.loc.T("generate.unexpected")).
			WithContext("status", resp.StatusCode).
			Build())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(repoURL, c.serviceError(resp, body))
	}

	doc, err := c.decodeDocument(body)
	if err != nil {
		return c.fail(repoURL, err)
	}

	c.logger.Debug("README generated",
		logfields.Repository(repoURL),
		logfields.Status(resp.StatusCode),
		logfields.Bytes(len(doc)))
	return Success(doc)
}

func (c *Client) newRequest(ctx context.Context, repoURL string) (*http.Request, error) {
	payload, err := json.Marshal(generateRequest{GithubURL: repoURL, AIProvider: c.provider})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "readmegen/"+version.Version)
	return req, nil
}

// serviceError maps a non-2xx response to a failure. A usable detail field is
// shown verbatim; anything else gets the generic sentence.
func (c *Client) serviceError(resp *http.Response, body []byte) error {
	msg := c.loc.T("generate.failed")
	if detail, ok := extractDetail(body); ok {
		msg = detail
	}
	return ferrors.ServiceError(msg).
		WithCause(fmt.Errorf("service responded %s", resp.Status)).
		WithContext("status", resp.StatusCode).
		Build()
}

func (c *Client) decodeDocument(body []byte) (string, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryNetwork, c.loc.T("generate.unexpected")).
			WithContext("reason", "malformed response").
			Build()
	}
	if parsed.Readme == nil {
		return "", ferrors.ServiceError(c.loc.T("generate.empty")).
			WithContext("reason", "missing readme").
			Build()
	}
	var doc string
	if err := json.Unmarshal(*parsed.Readme, &doc); err != nil {
		return "", ferrors.ServiceError(c.loc.T("generate.empty")).
			WithCause(err).
			WithContext("reason", "readme is not a string").
			Build()
	}
	if doc == "" {
		return "", ferrors.ServiceError(c.loc.T("generate.empty")).
			WithContext("reason", "empty readme").
			Build()
	}
	return doc, nil
}

func (c *Client) fail(repoURL string, err error) Result {
	c.logger.Warn("README generation failed",
		logfields.Repository(repoURL),
		logfields.Endpoint(c.endpoint),
		slog.String("category", string(ferrors.GetCategory(err))),
		logfields.Error(err))
	return Failure(err)
}

// extractDetail reads {"detail": ...} from a failure body. Strings are
// returned as-is, objects and arrays as compact JSON.
func extractDetail(body []byte) (string, bool) {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false
	}
	raw := bytes.TrimSpace(parsed.Detail)
	if len(raw) == 0 {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	case '{', '[':
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return "", false
		}
		return compact.String(), true
	default:
		return "", false
	}
}
