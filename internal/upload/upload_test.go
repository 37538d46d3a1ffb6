package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookkeeping/internal/log"
	"bookkeeping/internal/storage"
	"bookkeeping/internal/token"
	"bookkeeping/internal/ui/uitest"
)

// fileServer echoes the uploaded file name back as its id. Files whose
// content starts with "slow" take a little longer so replies finish out of
// order.
func fileServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != Path || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		f, hdr, err := r.FormFile(FormField)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		if strings.HasPrefix(string(content), "slow") {
			time.Sleep(50 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"code":200,"data":{"fileId":"id-%s","name":%q,"auth":%q}}`,
			hdr.Filename, hdr.Filename, r.Header.Get("Authorization"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func newUploader(t *testing.T, baseURL string, concurrency int) (*Uploader, *token.Store, *uitest.Recorder) {
	t.Helper()
	tokens := token.NewStore(storage.NewMemory(), log.Discard())
	rec := &uitest.Recorder{}
	u, err := New(Config{
		BaseURL:     baseURL,
		Tokens:      tokens,
		UI:          rec,
		Concurrency: concurrency,
		Logger:      log.Discard(),
	})
	require.NoError(t, err)
	return u, tokens, rec
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestUpload(t *testing.T) {
	srv := fileServer(t)
	u, tokens, rec := newUploader(t, srv.URL, 1)
	ctx := context.Background()
	require.NoError(t, tokens.Set(ctx, "tok"))

	p := writeFile(t, t.TempDir(), "receipt.jpg", "jpeg bytes")
	env, err := u.Upload(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 200, env.Code)

	var data map[string]string
	require.NoError(t, env.Decode(&data))
	assert.Equal(t, "id-receipt.jpg", data["fileId"])
	assert.Equal(t, "Bearer tok", data["auth"])

	assert.Equal(t, []string{"show", "hide"}, rec.Events())
}

func TestUploadMissingFile(t *testing.T) {
	srv := fileServer(t)
	u, _, rec := newUploader(t, srv.URL, 1)

	_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, ErrUpload)
	assert.Equal(t, 1, rec.Shows())
	assert.Equal(t, 1, rec.Hides())
}

func TestUploadTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	u, _, rec := newUploader(t, url, 1)

	p := writeFile(t, t.TempDir(), "a.txt", "a")
	_, err := u.Upload(context.Background(), p)
	assert.ErrorIs(t, err, ErrUpload)
	assert.Equal(t, []string{"show", "hide"}, rec.Events())
}

func TestFileIDsPreserveOrder(t *testing.T) {
	srv := fileServer(t)
	u, _, rec := newUploader(t, srv.URL, 3)
	dir := t.TempDir()

	paths := []string{
		writeFile(t, dir, "1.png", "slow one"),
		writeFile(t, dir, "2.png", "fast"),
		writeFile(t, dir, "3.png", "slow three"),
		writeFile(t, dir, "4.png", "fast"),
	}
	ids, err := u.FileIDs(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-1.png", "id-2.png", "id-3.png", "id-4.png"}, ids)
	assert.Equal(t, []string{"show", "hide"}, rec.Events())
}

func TestFiles(t *testing.T) {
	srv := fileServer(t)
	u, _, _ := newUploader(t, srv.URL, 1)
	dir := t.TempDir()

	files, err := u.Files(context.Background(), []string{writeFile(t, dir, "x.pdf", "x")})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "id-x.pdf", files[0].FileID)
	assert.Equal(t, "x.pdf", files[0].Name)
}

func TestFileIDsStopsOnFailure(t *testing.T) {
	srv := fileServer(t)
	u, _, rec := newUploader(t, srv.URL, 2)
	dir := t.TempDir()

	_, err := u.FileIDs(context.Background(), []string{
		writeFile(t, dir, "ok.png", "ok"),
		filepath.Join(dir, "missing.png"),
	})
	assert.ErrorIs(t, err, ErrUpload)
	assert.Equal(t, []string{"show", "hide"}, rec.Events())
}

func TestUploadHidesAfterCancel(t *testing.T) {
	srv := fileServer(t)
	u, _, rec := newUploader(t, srv.URL, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := u.Upload(ctx, writeFile(t, t.TempDir(), "a.png", "a"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"show", "hide"}, rec.Events())
}

func TestFileIDsMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":200,"data":{}}`)
	}))
	defer srv.Close()
	u, _, _ := newUploader(t, srv.URL, 1)

	_, err := u.FileIDs(context.Background(), []string{writeFile(t, t.TempDir(), "a.png", "a")})
	assert.ErrorIs(t, err, ErrNoFileID)
}

func TestFileIDsEmpty(t *testing.T) {
	u, _, _ := newUploader(t, "http://example.test", 1)
	ids, err := u.FileIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
