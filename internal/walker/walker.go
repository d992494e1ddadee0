// Package walker visits the paths whose attributes are dumped. Directory
// trees are traversed sequentially while the visit function runs on a
// bounded number of goroutines, optionally throttled to a fixed number of
// operations per second.
package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/options"
)

// Options configures a Walker.
type Options struct {
	// Recursive descends into directories given as roots.
	Recursive bool
	// Jobs is the number of concurrent visits, at least one.
	Jobs int
	// OpsPerSecond limits how often visit is called, zero means no limit.
	OpsPerSecond float64 `option:"ops-per-second" help:"limit the number of paths processed per second (default: unlimited)"`
	// SeenCacheSize is the number of hardlinked files remembered to visit
	// each of them once. Zero disables the deduplication.
	SeenCacheSize int `option:"seen-cache-size" help:"number of hardlinked files remembered to process them only once (default: 8192)"`
}

func init() {
	options.Register("walker", Options{})
}

// NewOptions returns the default options.
func NewOptions() Options {
	return Options{
		Jobs:          4,
		SeenCacheSize: 8192,
	}
}

// Item is a path handed to the visit function.
type Item struct {
	Path string
	Dir  bool
}

// VisitFunc processes a single path. It is called concurrently from up to
// Options.Jobs goroutines. Returning an error stops the walk.
type VisitFunc func(ctx context.Context, item Item) error

// ErrorFunc is called for paths that cannot be read while walking. Returning
// nil skips the path and continues the walk.
type ErrorFunc func(path string, err error) error

// Walker traverses paths.
type Walker struct {
	opts    Options
	limiter *rate.Limiter
	seen    *lru.Cache[fileID, struct{}]

	// OnError is called for errors from the file system. If nil, the first
	// such error stops the walk.
	OnError ErrorFunc
}

// New returns a Walker for opts.
func New(opts Options) (*Walker, error) {
	if opts.Jobs < 1 {
		return nil, errors.Fatalf("number of jobs must be at least one, got %d", opts.Jobs)
	}
	if opts.OpsPerSecond < 0 {
		return nil, errors.Fatalf("operations per second must not be negative, got %v", opts.OpsPerSecond)
	}

	w := &Walker{opts: opts, limiter: rate.NewLimiter(rate.Inf, 0)}
	if opts.OpsPerSecond > 0 {
		burst := int(opts.OpsPerSecond)
		if burst < 1 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(rate.Limit(opts.OpsPerSecond), burst)
	}

	if opts.SeenCacheSize > 0 {
		seen, err := lru.New[fileID, struct{}](opts.SeenCacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "lru.New")
		}
		w.seen = seen
	}

	return w, nil
}

func (w *Walker) handleError(path string, err error) error {
	if w.OnError == nil {
		return err
	}
	return w.OnError(path, err)
}

// Walk calls visit for every root and, with Options.Recursive, for every
// entry below a root directory. Symlinks are visited but not followed.
func (w *Walker) Walk(ctx context.Context, roots []string, visit VisitFunc) error {
	wg, wctx := errgroup.WithContext(ctx)
	wg.SetLimit(w.opts.Jobs)

	schedule := func(item Item) {
		wg.Go(func() error {
			if err := w.limiter.Wait(wctx); err != nil {
				return err
			}
			return visit(wctx, item)
		})
	}

	// a failed visit cancels wctx, its error is the one to report
	fail := func(err error) error {
		if werr := wg.Wait(); werr != nil {
			return werr
		}
		return err
	}

	for _, root := range roots {
		if wctx.Err() != nil {
			break
		}

		if !w.opts.Recursive {
			fi, err := os.Lstat(root)
			if err != nil {
				if err := w.handleError(root, err); err != nil {
					return fail(err)
				}
				continue
			}
			schedule(Item{Path: root, Dir: fi.IsDir()})
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return w.handleError(path, err)
			}
			if wctx.Err() != nil {
				return wctx.Err()
			}

			if w.duplicate(path, d) {
				debug.Log("skipping %v, already visited through another hardlink", path)
				return nil
			}

			schedule(Item{Path: path, Dir: d.IsDir()})
			return nil
		})
		if err != nil {
			return fail(err)
		}
	}

	if err := wg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// duplicate reports whether path is a hardlink to a file visited before.
func (w *Walker) duplicate(path string, d fs.DirEntry) bool {
	if w.seen == nil || d.IsDir() {
		return false
	}

	fi, err := d.Info()
	if err != nil {
		debug.Log("Info(%v): %v", path, err)
		return false
	}

	id, ok := hardlinkID(fi)
	if !ok {
		return false
	}

	found, _ := w.seen.ContainsOrAdd(id, struct{}{})
	return found
}
