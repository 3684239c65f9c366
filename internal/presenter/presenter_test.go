package presenter

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/readmegen/internal/foundation/errors"
	"git.home.luguber.info/inful/readmegen/internal/i18n"
)

type fakeClipboard struct {
	mu   sync.Mutex
	text []string
	err  error
}

func (f *fakeClipboard) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.text = append(f.text, text)
	return nil
}

type fakeExporter struct {
	blobs []Blob
	err   error
}

func (f *fakeExporter) Export(blob Blob) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.blobs = append(f.blobs, blob)
	return "memory://" + blob.Name, nil
}

func newTestPresenter(t *testing.T, opts ...Option) (*Presenter, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	opts = append([]Option{
		WithClock(clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	p := New(opts...)
	t.Cleanup(p.Close)
	return p, clock
}

func requireStatusEventually(t *testing.T, p *Presenter, want CopyStatus) {
	t.Helper()
	require.Eventually(t, func() bool { return p.CopyStatus() == want }, 2*time.Second, 5*time.Millisecond)
}

func TestCopy_SuccessRevertsAfterWindow(t *testing.T) {
	cb := &fakeClipboard{}
	p, clock := newTestPresenter(t, WithClipboard(cb))

	require.Equal(t, CopyIdle, p.CopyStatus())
	require.Equal(t, CopySuccess, p.Copy("# Hello\n"))
	require.Equal(t, []string{"# Hello\n"}, cb.text)
	require.Equal(t, CopySuccess, p.CopyStatus())

	clock.Advance(DefaultCopyFeedback - time.Millisecond)
	require.Equal(t, CopySuccess, p.CopyStatus())

	clock.Advance(time.Millisecond)
	requireStatusEventually(t, p, CopyIdle)
}

func TestCopy_ErrorStatus(t *testing.T) {
	cb := &fakeClipboard{err: errors.New("xclip not found")}
	p, clock := newTestPresenter(t, WithClipboard(cb))

	require.Equal(t, CopyError, p.Copy("doc"))
	require.Equal(t, CopyError, p.CopyStatus())

	clock.Advance(DefaultCopyFeedback)
	requireStatusEventually(t, p, CopyIdle)
}

func TestCopy_AgainRestartsWindow(t *testing.T) {
	p, clock := newTestPresenter(t, WithClipboard(&fakeClipboard{}))

	p.Copy("doc")
	clock.Advance(1500 * time.Millisecond)
	p.Copy("doc")

	// The first window would have ended here.
	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, CopySuccess, p.CopyStatus())

	clock.Advance(time.Second)
	requireStatusEventually(t, p, CopyIdle)
}

func TestCopy_StaleExpiryIgnored(t *testing.T) {
	p, _ := newTestPresenter(t, WithClipboard(&fakeClipboard{}))

	p.Copy("doc")
	p.Copy("doc")
	p.expire(1)
	require.Equal(t, CopySuccess, p.CopyStatus())

	p.expire(2)
	require.Equal(t, CopyIdle, p.CopyStatus())
}

func TestCopy_CustomWindow(t *testing.T) {
	p, clock := newTestPresenter(t, WithClipboard(&fakeClipboard{}), WithCopyFeedback(500*time.Millisecond))

	p.Copy("doc")
	clock.Advance(500 * time.Millisecond)
	requireStatusEventually(t, p, CopyIdle)
}

func TestCopy_PublishesStatusChanges(t *testing.T) {
	p, clock := newTestPresenter(t, WithClipboard(&fakeClipboard{}))
	ch, unsubscribe := p.Subscribe(4)
	defer unsubscribe()

	p.Copy("doc")
	require.Equal(t, CopyStatusChanged{Status: CopySuccess}, <-ch)

	clock.Advance(DefaultCopyFeedback)
	select {
	case evt := <-ch:
		require.Equal(t, CopyIdle, evt.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for revert event")
	}
}

func TestCopyLabel(t *testing.T) {
	id := i18n.New("id-ID")
	cb := &fakeClipboard{}
	p, _ := newTestPresenter(t, WithClipboard(cb), WithLocalizer(id))

	require.Equal(t, id.T("copy.idle"), p.CopyLabel())
	p.Copy("doc")
	require.Equal(t, id.T("copy.success"), p.CopyLabel())

	cb.err = errors.New("denied")
	p.Copy("doc")
	require.Equal(t, id.T("copy.error"), p.CopyLabel())
}

func TestExport_ExactBytes(t *testing.T) {
	exp := &fakeExporter{}
	p, _ := newTestPresenter(t, WithExporter(exp))

	doc := "# Título\r\n\n\tkeep   spacing  \n```\ncode\n```"
	loc, err := p.Export(doc)
	require.NoError(t, err)
	require.Equal(t, "memory://README.md", loc)

	require.Len(t, exp.blobs, 1)
	require.Equal(t, "README.md", exp.blobs[0].Name)
	require.Equal(t, "text/markdown; charset=utf-8", exp.blobs[0].ContentType)
	require.Equal(t, []byte(doc), exp.blobs[0].Data)
}

func TestExport_FailureIsCapabilityError(t *testing.T) {
	p, _ := newTestPresenter(t, WithExporter(&fakeExporter{err: errors.New("disk full")}))

	_, err := p.Export("doc")
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryCapability))
	require.Equal(t, i18n.New("en-US").T("export.failed"), ferrors.UserMessage(err, ""))
	require.Equal(t, CopyIdle, p.CopyStatus())
}

func TestExportPage(t *testing.T) {
	exp := &fakeExporter{}
	p, _ := newTestPresenter(t, WithExporter(exp))

	_, err := p.ExportPage("# Bar\n\ntext", "preview.html")
	require.NoError(t, err)
	require.Len(t, exp.blobs, 1)
	require.Equal(t, HTMLMediaType, exp.blobs[0].ContentType)
	require.Contains(t, string(exp.blobs[0].Data), "<title>Bar</title>")
	require.Contains(t, string(exp.blobs[0].Data), `lang="en-US"`)
}

func TestRenderAndTitle(t *testing.T) {
	p, _ := newTestPresenter(t)
	out := p.Render("# Bar\n\nhello", 40)
	require.Contains(t, out, "Bar")
	require.Contains(t, out, "hello")
	require.Equal(t, "Bar", p.Title("# Bar\n\nhello"))
}

func TestFileExporter(t *testing.T) {
	dir := t.TempDir()
	doc := "# Bar\n\nnon-ascii: ü ✓\n"

	path, err := FileExporter{Dir: dir}.Export(MarkdownBlob(doc))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "README.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, doc, string(data))

	// Overwrites an existing README.md and leaves no temp files behind.
	_, err = FileExporter{Dir: dir}.Export(MarkdownBlob("second"))
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileExporter_MissingDir(t *testing.T) {
	_, err := FileExporter{Dir: filepath.Join(t.TempDir(), "missing")}.Export(MarkdownBlob("x"))
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestFileExporter_StripsDirectoriesFromName(t *testing.T) {
	dir := t.TempDir()
	path, err := FileExporter{Dir: dir}.Export(Blob{Name: "../../escape.md", Data: []byte("x")})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "escape.md"), path)
	require.False(t, strings.Contains(path, ".."))
}

func TestCopyStatus_String(t *testing.T) {
	require.Equal(t, "idle", CopyIdle.String())
	require.Equal(t, "success", CopySuccess.String())
	require.Equal(t, "error", CopyError.String())
}
