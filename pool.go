package doceditor

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing.
const (
	MinPoolSize = 1

	// MaxPoolSize caps automatic sizing; each exporter owns a Chrome
	// instance of roughly 200MB.
	MaxPoolSize = 8

	// cpuDivisor leaves a core per exporter for Chrome's child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("exporter pool closed")

// ExporterPool hands out up to Size exporters, each with its own browser.
// Exporters are built on demand, so an idle server never starts Chrome.
type ExporterPool struct {
	opts  []ExportOption
	slots chan struct{}  // one token per exporter that exists
	idle  chan *Exporter // exporters waiting to be reused
	done  chan struct{}  // closed by Close

	mu     sync.Mutex
	all    []*Exporter
	closed bool
}

// NewExporterPool creates a pool of n exporters built with opts. The
// options are validated here so Acquire only fails on browser errors.
func NewExporterPool(n int, opts ...ExportOption) (*ExporterPool, error) {
	n = max(n, MinPoolSize)

	trial, err := NewExporter(append(opts[:len(opts):len(opts)], WithRasterizer(nopRasterizer{}))...)
	if err != nil {
		return nil, err
	}
	_ = trial.Close()

	return &ExporterPool{
		opts:  opts,
		slots: make(chan struct{}, n),
		idle:  make(chan *Exporter, n),
		done:  make(chan struct{}),
	}, nil
}

// Acquire returns an idle exporter, builds a new one while the pool is
// below capacity, or waits for a Release. It gives up when ctx ends.
func (p *ExporterPool) Acquire(ctx context.Context) (*Exporter, error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}

	// Prefer reuse over building another browser.
	select {
	case x := <-p.idle:
		return x, nil
	default:
	}

	select {
	case x := <-p.idle:
		return x, nil
	case p.slots <- struct{}{}:
		return p.build()
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
		return nil, ErrPoolClosed
	}
}

func (p *ExporterPool) build() (*Exporter, error) {
	x, err := NewExporter(p.opts...)
	if err != nil {
		<-p.slots
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = x.Close()
		return nil, ErrPoolClosed
	}
	p.all = append(p.all, x)
	return x, nil
}

// Release makes x available again. Releasing after Close is a no-op.
func (p *ExporterPool) Release(x *Exporter) {
	if x == nil || p.isClosed() {
		return
	}
	select {
	case p.idle <- x:
	default:
		// Only exporters from this pool are released, so idle never fills.
	}
}

// Export runs doc through a pooled exporter.
func (p *ExporterPool) Export(ctx context.Context, doc *Document) (*ExportArtifact, error) {
	x, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(x)
	return x.Export(ctx, doc)
}

// Close shuts every exporter's browser down and joins their errors.
func (p *ExporterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	all := p.all
	p.all = nil
	p.mu.Unlock()

	var errs []error
	for _, x := range all {
		if err := x.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *ExporterPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Size returns the pool capacity.
func (p *ExporterPool) Size() int {
	return cap(p.slots)
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}

// nopRasterizer stands in for the browser when options are only validated.
type nopRasterizer struct{}

func (nopRasterizer) Rasterize(context.Context, string, RasterOptions) (*Raster, error) {
	return nil, ErrRasterize
}

func (nopRasterizer) Close() error { return nil }
