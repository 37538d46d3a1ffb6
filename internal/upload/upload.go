// Package upload sends local files to the backend's file service.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bookkeeping/internal/core"
	"bookkeeping/internal/gateway"
	"bookkeeping/internal/log"
	"bookkeeping/internal/ui"
)

const (
	Path      = "/common/file/ali-upload"
	FormField = "file"

	maxReplyBytes = 1 << 20
)

var (
	ErrUpload    = errors.New("upload failed")
	ErrNoFileID  = errors.New("upload reply has no fileId")
	ErrNoBaseURL = errors.New("upload: base URL is required")
)

// TokenReader is the part of the token store an upload needs.
type TokenReader interface {
	Get(ctx context.Context) (string, error)
}

type Config struct {
	BaseURL    string
	HTTPClient gateway.Doer
	Tokens     TokenReader
	UI         ui.Loader
	// Concurrency bounds parallel uploads in FileIDs and Files.
	Concurrency int
	Logger      *log.Logger
}

type Uploader struct {
	baseURL     string
	http        gateway.Doer
	tokens      TokenReader
	ui          ui.Loader
	concurrency int
	logger      *log.Logger
}

func New(cfg Config) (*Uploader, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	u := &Uploader{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		http:        cfg.HTTPClient,
		tokens:      cfg.Tokens,
		ui:          cfg.UI,
		concurrency: cfg.Concurrency,
		logger:      logger.WithComponent(log.ComponentUpload),
	}
	if u.http == nil {
		u.http = &http.Client{Transport: log.NewTransport(nil, logger)}
	}
	if u.ui == nil {
		u.ui = ui.Nop{}
	}
	if u.concurrency < 1 {
		u.concurrency = 1
	}
	return u, nil
}

// Upload posts one file as multipart form data and returns the decoded reply.
// The loading indicator is masked for the duration of the call.
func (u *Uploader) Upload(ctx context.Context, path string) (*core.Envelope, error) {
	defer u.masked(ctx)()
	return u.post(ctx, path)
}

// masked shows the masked loading indicator and returns the matching hide,
// which still reaches the surface after ctx is done.
func (u *Uploader) masked(ctx context.Context) func() {
	u.ui.ShowLoading(ctx, true)
	return func() { u.ui.HideLoading(context.WithoutCancel(ctx)) }
}

func (u *Uploader) post(ctx context.Context, path string) (*core.Envelope, error) {
	start := time.Now()
	body, contentType, err := formBody(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpload, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+Path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+u.token(ctx))

	resp, err := u.http.Do(req)
	if err != nil {
		u.logger.ErrorContext(ctx, "Upload failed", log.FieldFile, path, log.FieldError, err.Error())
		return nil, fmt.Errorf("%w: %s: %w", ErrUpload, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %w", ErrUpload, err)
	}
	env, err := gateway.DecodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: HTTP %d: %w", ErrUpload, resp.StatusCode, err)
	}

	u.logger.InfoContext(ctx, "File uploaded",
		log.FieldOperation, log.OpUpload,
		log.FieldFile, filepath.Base(path),
		log.FieldStatusCode, resp.StatusCode,
		log.FieldEnvelopeCode, env.Code,
		log.FieldDuration, time.Since(start).Milliseconds())
	return &env, nil
}

// FileIDs uploads every file and returns their ids in input order. The first
// failure cancels the uploads still pending.
func (u *Uploader) FileIDs(ctx context.Context, paths []string) ([]string, error) {
	files, err := u.Files(ctx, paths)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(files))
	for i, f := range files {
		if f.FileID == "" {
			return nil, fmt.Errorf("%w: %s", ErrNoFileID, paths[i])
		}
		ids[i] = f.FileID
	}
	return ids, nil
}

// Files uploads every file and returns each reply's data in input order. The
// loading indicator covers the whole batch.
func (u *Uploader) Files(ctx context.Context, paths []string) ([]core.UploadedFile, error) {
	defer u.masked(ctx)()

	out := make([]core.UploadedFile, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for i, p := range paths {
		g.Go(func() error {
			env, err := u.post(ctx, p)
			if err != nil {
				return err
			}
			if err := env.Decode(&out[i]); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrUpload, p, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Uploader) token(ctx context.Context) string {
	if u.tokens == nil {
		return ""
	}
	tok, err := u.tokens.Get(ctx)
	if err != nil {
		u.logger.WarnContext(ctx, "Token unavailable for upload", log.FieldError, err.Error())
		return ""
	}
	return tok
}

func formBody(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(FormField, filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
