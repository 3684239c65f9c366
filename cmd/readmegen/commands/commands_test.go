package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
)

type recordingClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *recordingClipboard) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// execute parses args like main does and runs the selected command.
func execute(t *testing.T, global *Global, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	global.Ctx = context.Background()
	global.Stdout = &stdout
	global.Stderr = &stderr

	var cli CLI
	opts := append(KongOptions(global, "test"),
		kong.Writers(&stdout, &stderr),
		kong.Exit(func(int) { t.Fatalf("unexpected exit: %s", stderr.String()) }),
	)
	parser, err := kong.New(&cli, opts...)
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = kctx.Run(&cli)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "readmegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func readmeService(t *testing.T, status int, body any, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/generate-readme", r.URL.Path)
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "https://github.com/foo/bar", req["githubUrl"])
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeneratePrintsDocumentAndExports(t *testing.T) {
	var calls atomic.Int32
	srv := readmeService(t, http.StatusOK, map[string]string{"readme": "# Bar\n\nA tool.\n"}, &calls)

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o750))
	metricsPath := filepath.Join(dir, "readmegen.prom")
	cfgPath := writeConfig(t, dir, "service:\n  base_url: "+srv.URL+"\nexport:\n  directory: "+outDir+"\nmetrics:\n  textfile: "+metricsPath+"\n")

	clip := &recordingClipboard{}
	res := execute(t, &Global{Clipboard: clip},
		"-c", cfgPath, "generate", "--export", "--html", "preview.html", "--copy", "https://github.com/foo/bar/")
	require.NoError(t, res.err)
	require.Equal(t, "# Bar\n\nA tool.\n", res.stdout)
	require.Contains(t, res.stderr, "Generating... (0s)")
	require.Contains(t, res.stderr, "README result (")
	require.Contains(t, res.stderr, "Copied!")
	require.Equal(t, int32(1), calls.Load())

	data, err := os.ReadFile(filepath.Join(outDir, "README.md"))
	require.NoError(t, err)
	require.Equal(t, "# Bar\n\nA tool.\n", string(data))

	page, err := os.ReadFile(filepath.Join(outDir, "preview.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "<title>Bar</title>")

	require.Equal(t, "# Bar\n\nA tool.\n", clip.text)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(prom), `readmegen_generation_outcomes_total{outcome="success"} 1`)
}

func TestGenerateReportsServiceDetail(t *testing.T) {
	var calls atomic.Int32
	srv := readmeService(t, http.StatusInternalServerError, map[string]string{"detail": "repo not found"}, &calls)
	cfgPath := writeConfig(t, t.TempDir(), "service:\n  base_url: "+srv.URL+"\n")

	res := execute(t, &Global{}, "-c", cfgPath, "generate", "-q", "https://github.com/foo/bar")
	require.Error(t, res.err)
	require.Empty(t, res.stdout)

	classified, ok := ferrors.AsClassified(res.err)
	require.True(t, ok)
	require.Equal(t, ferrors.CategoryService, classified.Category())
	require.Equal(t, "repo not found", classified.Message())
	require.Equal(t, 8, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(res.err))
}

func TestGenerateRejectsInvalidURLWithoutCallingService(t *testing.T) {
	var calls atomic.Int32
	srv := readmeService(t, http.StatusOK, map[string]string{"readme": "x"}, &calls)
	cfgPath := writeConfig(t, t.TempDir(), "service:\n  base_url: "+srv.URL+"\n")

	res := execute(t, &Global{}, "-c", cfgPath, "generate", "not a url")
	require.Error(t, res.err)
	require.True(t, ferrors.HasCategory(res.err, ferrors.CategoryValidation))
	require.Equal(t, int32(0), calls.Load())
}

func TestValidate(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")

	res := execute(t, &Global{}, "-c", cfgPath, "validate", "  https://www.github.com/Foo/bar.git/ ")
	require.NoError(t, res.err)
	require.Equal(t, "https://github.com/Foo/bar\n", res.stdout)

	res = execute(t, &Global{}, "-c", cfgPath, "validate", "https://gitlab.com/foo/bar")
	require.Error(t, res.err)
	require.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(res.err))
	require.Equal(t, "Please enter a valid GitHub repository URL.", ferrors.UserMessage(res.err, ""))
}

func TestValidateUsesLanguageOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")
	res := execute(t, &Global{}, "-c", cfgPath, "--lang", "id_ID", "validate", "ftp://github.com/foo/bar")
	require.Error(t, res.err)
	require.NotEqual(t, "Please enter a valid GitHub repository URL.", ferrors.UserMessage(res.err, ""))
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "readmegen.yaml")

	res := execute(t, &Global{}, "-c", cfgPath, "init")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Initialized successfully")

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# readmegen configuration."))

	res = execute(t, &Global{}, "-c", cfgPath, "init")
	require.Error(t, res.err)
	require.True(t, ferrors.HasCategory(res.err, ferrors.CategoryConfig))

	res = execute(t, &Global{}, "-c", cfgPath, "init", "--force")
	require.NoError(t, res.err)

	res = execute(t, &Global{}, "init", "-o", dir, "--force")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, filepath.Join(dir, "readmegen.yaml"))
}

func TestInvalidConfigFails(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "service:\n  timeout: -1s\n")
	res := execute(t, &Global{}, "-c", cfgPath, "validate", "https://github.com/foo/bar")
	require.Error(t, res.err)
	require.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(res.err))
}

func TestParserDefaultsToUI(t *testing.T) {
	tests := []struct {
		name string
		args []string
		url  string
	}{
		{name: "no arguments", args: nil},
		{name: "prefilled url", args: []string{"https://github.com/foo/bar"}, url: "https://github.com/foo/bar"},
		{name: "explicit command", args: []string{"ui", "https://github.com/foo/bar"}, url: "https://github.com/foo/bar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			global := NewGlobal(context.Background())
			global.Stderr = &bytes.Buffer{}

			var cli CLI
			parser, err := kong.New(&cli, KongOptions(global, "test")...)
			require.NoError(t, err)

			kctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(kctx.Command(), "ui"), "command %q", kctx.Command())
			require.Equal(t, tt.url, cli.UI.URL)
		})
	}
}

func TestParserPrintsVersion(t *testing.T) {
	var stdout bytes.Buffer
	global := NewGlobal(context.Background())
	global.Stderr = &bytes.Buffer{}

	exitCode := -1
	var cli CLI
	opts := append(KongOptions(global, "readmegen v1.2.3"),
		kong.Writers(&stdout, &bytes.Buffer{}),
		kong.Exit(func(code int) { exitCode = code }),
	)
	parser, err := kong.New(&cli, opts...)
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--version"})
	require.NoError(t, err)
	require.Equal(t, 0, exitCode)
	require.Equal(t, "readmegen v1.2.3\n", stdout.String())
}
