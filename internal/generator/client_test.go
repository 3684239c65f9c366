package generator

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts.BaseURL = srv.URL
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestClient_Success(t *testing.T) {
	var gotBody map[string]any
	var gotMethod, gotPath, gotContentType string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"readme":"# Bar"}`)
	}, Options{})

	res := c.Generate(context.Background(), "https://github.com/foo/bar")
	require.True(t, res.OK())
	require.Equal(t, "# Bar", res.Document)
	require.Empty(t, res.Message())

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/generate-readme", gotPath)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, map[string]any{"githubUrl": "https://github.com/foo/bar"}, gotBody)
}

func TestClient_SendsProviderWhenConfigured(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{"readme":"ok"}`)
	}, Options{Provider: "openrouter"})

	res := c.Generate(context.Background(), "https://github.com/foo/bar")
	require.True(t, res.OK())
	require.Equal(t, "openrouter", gotBody["aiProvider"])
}

func TestClient_KeepsDocumentBytes(t *testing.T) {
	doc := "# Title\r\n\n  indented\t\n```go\nfmt.Println(\"é\")\n```\n"
	payload, err := json.Marshal(map[string]string{"readme": doc})
	require.NoError(t, err)

	c := newTestClient(t, respond(http.StatusOK, string(payload)), Options{})
	res := c.Generate(context.Background(), "https://github.com/foo/bar")
	require.True(t, res.OK())
	require.Equal(t, doc, res.Document)
}

func TestClient_Failures(t *testing.T) {
	en := i18n.New("en-US")

	tests := []struct {
		name     string
		status   int
		body     string
		message  string
		category ferrors.ErrorCategory
	}{
		{"string detail", 500, `{"detail":"repo not found"}`, "repo not found", ferrors.CategoryService},
		{"object detail", 422, `{"detail": {"loc": ["body", "githubUrl"], "msg": "invalid"}}`, `{"loc":["body","githubUrl"],"msg":"invalid"}`, ferrors.CategoryService},
		{"array detail", 400, `{"detail":[1, 2]}`, `[1,2]`, ferrors.CategoryService},
		{"null detail", 500, `{"detail":null}`, en.T("generate.failed"), ferrors.CategoryService},
		{"numeric detail", 500, `{"detail":42}`, en.T("generate.failed"), ferrors.CategoryService},
		{"blank detail", 500, `{"detail":"  "}`, en.T("generate.failed"), ferrors.CategoryService},
		{"no detail", 503, `{}`, en.T("generate.failed"), ferrors.CategoryService},
		{"html body", 502, `<html>bad gateway</html>`, en.T("generate.failed"), ferrors.CategoryService},
		{"non-2xx ignores readme", 500, `{"readme":"# Nope"}`, en.T("generate.failed"), ferrors.CategoryService},
		{"missing readme", 200, `{}`, en.T("generate.empty"), ferrors.CategoryService},
		{"null readme", 200, `{"readme":null}`, en.T("generate.empty"), ferrors.CategoryService},
		{"numeric readme", 200, `{"readme":7}`, en.T("generate.empty"), ferrors.CategoryService},
		{"empty readme", 200, `{"readme":""}`, en.T("generate.empty"), ferrors.CategoryService},
		{"malformed json", 200, `{"readme":`, en.T("generate.unexpected"), ferrors.CategoryNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, respond(tt.status, tt.body), Options{Localizer: en})
			res := c.Generate(context.Background(), "https://github.com/foo/bar")
			require.False(t, res.OK())
			require.Empty(t, res.Document)
			require.Equal(t, tt.message, res.Message())
			require.Equal(t, tt.category, ferrors.GetCategory(res.Err))
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(respond(http.StatusOK, `{"readme":"x"}`))
	base := srv.URL
	srv.Close()

	id := i18n.New("id-ID")
	c, err := NewClient(Options{
		BaseURL:   base,
		Localizer: id,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	res := c.Generate(context.Background(), "https://github.com/foo/bar")
	require.False(t, res.OK())
	require.Equal(t, id.T("generate.unexpected"), res.Message())
	require.Equal(t, ferrors.CategoryNetwork, ferrors.GetCategory(res.Err))

	classified, ok := ferrors.AsClassified(res.Err)
	require.True(t, ok)
	require.Error(t, classified.Cause())
}

func TestClient_CanceledContext(t *testing.T) {
	c := newTestClient(t, respond(http.StatusOK, `{"readme":"x"}`), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Generate(ctx, "https://github.com/foo/bar")
	require.False(t, res.OK())
	require.Equal(t, ferrors.CategoryRuntime, ferrors.GetCategory(res.Err))
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(Options{})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8001/generate-readme", c.Endpoint())

	c, err = NewClient(Options{BaseURL: "https://readme.example.com/api/", Path: "/v1/generate"})
	require.NoError(t, err)
	require.Equal(t, "https://readme.example.com/api/v1/generate", c.Endpoint())

	for _, bad := range []string{"localhost:8001", "ftp://example.com", "http://", "://nope"} {
		_, err := NewClient(Options{BaseURL: bad})
		require.Error(t, err, bad)
		require.Equal(t, ferrors.CategoryConfig, ferrors.GetCategory(err), bad)
	}
}

func TestFunc(t *testing.T) {
	var got string
	g := Func(func(_ context.Context, repoURL string) Result {
		got = repoURL
		return Failure(ferrors.ServiceError("bad repo").Build())
	})

	res := g.Generate(context.Background(), "https://github.com/a/b")
	require.Equal(t, "https://github.com/a/b", got)
	require.Equal(t, "bad repo", res.Message())
}
