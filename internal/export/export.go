// Package export runs the finish pipeline: normalize, render, encode, name and deliver.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/mrraes/bewijs/internal/model"
	"github.com/mrraes/bewijs/internal/render"
	"github.com/mrraes/bewijs/internal/summary"
)

// Result is an exported image and the name it was delivered under.
type Result struct {
	Bytes    []byte
	Filename string
	// Rows is the number of question or table rows drawn.
	Rows int
}

// TableExport is the input of a generic table export. An explicit Filename is sanitized
// but otherwise used as is.
type TableExport struct {
	Meta     summary.Raw
	Table    model.Table
	Filename string
}

// Finisher exports certificates and tables. Concurrent exports are independent.
type Finisher struct {
	Normalizer *summary.Normalizer
	Renderer   *render.Renderer
	// Downloader receives every export; nil skips delivery.
	Downloader Downloader
	// Location is used for the timestamp in file names. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
	// EncodeTimeout bounds PNG encoding; zero means no limit beyond ctx.
	EncodeTimeout time.Duration
	// MaxPixels refuses renders above this many physical pixels. Zero means
	// DefaultMaxPixels.
	MaxPixels int64

	inflight sync.WaitGroup
}

func (f *Finisher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Finisher) location() *time.Location {
	if f.Location != nil {
		return f.Location
	}
	return time.Local
}

func (f *Finisher) renderer() *render.Renderer {
	if f.Renderer != nil {
		return f.Renderer
	}
	return &render.Renderer{Now: f.Now}
}

// DefaultMaxPixels is 256 MiB of RGBA: about 1250 question rows at scale 1.
const DefaultMaxPixels = 1 << 26

// ErrTooLarge is returned when an export would exceed the pixel budget.
var ErrTooLarge = errors.New("image too large")

func (f *Finisher) checkSize(px float64) error {
	limit := f.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if px > float64(limit) {
		return fmt.Errorf("render %.0f pixels (limit %d): %w", px, limit, ErrTooLarge)
	}
	return nil
}

// Finish renders the certificate for raw and delivers it through the configured
// downloader.
func (f *Finisher) Finish(ctx context.Context, raw summary.Raw) (Result, error) {
	return f.FinishTo(ctx, raw, f.Downloader)
}

// FinishTo is Finish with an explicit downloader.
func (f *Finisher) FinishTo(ctx context.Context, raw summary.Raw, d Downloader) (Result, error) {
	s, surf, err := f.certificate(ctx, raw)
	if err != nil {
		return Result{}, err
	}
	return f.finishSurface(ctx, s, surf, d)
}

func (f *Finisher) certificate(ctx context.Context, raw summary.Raw) (model.Summary, *render.Surface, error) {
	s := f.Normalizer.Normalize(ctx, raw)
	r := f.renderer()
	if err := f.checkSize(r.CertificatePixels(len(s.Questions))); err != nil {
		return s, nil, err
	}
	return s, r.Certificate(s), nil
}

func (f *Finisher) finishSurface(ctx context.Context, s model.Summary, surf *render.Surface, d Downloader) (Result, error) {
	data, err := f.encode(ctx, surf.Image())
	if err != nil {
		return Result{}, err
	}
	name := Filename(s, f.now().In(f.location()))
	return f.deliver(ctx, d, name, data, len(s.Questions))
}

// DownloadTable renders a table export and delivers it through the configured downloader.
func (f *Finisher) DownloadTable(ctx context.Context, te TableExport) (Result, error) {
	return f.DownloadTableTo(ctx, te, f.Downloader)
}

// DownloadTableTo is DownloadTable with an explicit downloader.
func (f *Finisher) DownloadTableTo(ctx context.Context, te TableExport, d Downloader) (Result, error) {
	meta := f.Normalizer.Normalize(ctx, te.Meta)
	r := f.renderer()
	if err := f.checkSize(r.TablePixels(len(te.Table.Rows))); err != nil {
		return Result{}, err
	}
	surf := r.Table(meta, te.Table)
	data, err := f.encode(ctx, surf.Image())
	if err != nil {
		return Result{}, err
	}
	name := sanitize(te.Filename)
	if name == "" {
		name = Filename(meta, f.now().In(f.location()))
	}
	return f.deliver(ctx, d, name, data, len(te.Table.Rows))
}

// Preview renders the certificate for raw scaled down to width pixels and returns it as
// PNG. Nothing is delivered.
func (f *Finisher) Preview(ctx context.Context, raw summary.Raw, width int) ([]byte, error) {
	_, surf, err := f.certificate(ctx, raw)
	if err != nil {
		return nil, err
	}
	return f.encode(ctx, render.Thumbnail(surf.Image(), width))
}

func (f *Finisher) deliver(ctx context.Context, d Downloader, name string, data []byte, rows int) (Result, error) {
	if d != nil {
		if err := d.Download(ctx, name, data); err != nil {
			return Result{}, fmt.Errorf("download %s: %w", name, err)
		}
	}
	return Result{Bytes: data, Filename: name, Rows: rows}, nil
}

// encode writes img as PNG. It gives up when ctx ends or EncodeTimeout passes; the
// encoder itself then finishes in the background and its output is discarded.
func (f *Finisher) encode(ctx context.Context, img image.Image) ([]byte, error) {
	if f.EncodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.EncodeTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		var buf bytes.Buffer
		err := png.Encode(&buf, img)
		ch <- result{buf.Bytes(), err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("encode png: %w", r.err)
		}
		return r.data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("encode png: %w", ctx.Err())
	}
}

var errNoFinisher = errors.New("finisher not configured")

// TryFinish normalizes and renders raw, then encodes and delivers it in the background.
// It reports whether the background run was started: a missing finisher, an oversized
// render or a render panic all return false. The background run outlives ctx's
// cancellation; its failures are logged, never returned. Use Finish when the bytes or
// filename are needed.
func (f *Finisher) TryFinish(ctx context.Context, raw summary.Raw) (launched bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("start finish", "panic", r)
			launched = false
		}
	}()
	if f == nil {
		slog.Error("start finish", "error", errNoFinisher)
		return false
	}

	s, surf, err := f.certificate(ctx, raw)
	if err != nil {
		slog.Error("start finish", "error", err)
		return false
	}
	bg := context.WithoutCancel(ctx)
	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("finish session", "panic", r)
			}
		}()
		res, err := f.finishSurface(bg, s, surf, f.Downloader)
		if err != nil {
			slog.Error("finish session", "error", err)
			return
		}
		slog.Info("certificate exported", "filename", res.Filename, "bytes", len(res.Bytes))
	}()
	return true
}

// Wait blocks until every run started by TryFinish has ended.
func (f *Finisher) Wait() {
	f.inflight.Wait()
}
