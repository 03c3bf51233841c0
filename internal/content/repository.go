// Package content exposes the views, docs and static trees as afero
// filesystems so the router can probe what pages exist without touching the
// real disk in tests.
package content

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"

	"github.com/spf13/afero"

	"github.com/conneroisu/demoapp/internal/logging"
	"github.com/conneroisu/demoapp/internal/pathutil"
)

// Kind selects what Is checks a path for.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Repository answers filesystem questions about a single content root.
type Repository struct {
	fs     afero.Fs
	name   string
	logger logging.Logger
}

// NewRepository wraps fsys. Paths handed to the repository are relative to
// the root of fsys.
func NewRepository(fsys afero.Fs, name string, logger logging.Logger) *Repository {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Repository{
		fs:     fsys,
		name:   name,
		logger: logger.WithComponent("content").With("root", name),
	}
}

// NewOSRepository roots a repository at dir on the local disk.
func NewOSRepository(dir string, logger logging.Logger) *Repository {
	return NewRepository(afero.NewBasePathFs(afero.NewOsFs(), dir), dir, logger)
}

// Fs returns the underlying filesystem.
func (r *Repository) Fs() afero.Fs {
	return r.fs
}

// Name returns the label the repository was created with.
func (r *Repository) Name() string {
	return r.name
}

// ListDirectory returns the sorted entry names inside dir.
func (r *Repository) ListDirectory(_ context.Context, dir string) ([]string, error) {
	names, err := afero.ReadDir(r.fs, clean(dir))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(names))
	for _, fi := range names {
		out = append(out, fi.Name())
	}
	sort.Strings(out)

	return out, nil
}

// FileExists reports whether p exists and is a regular file.
func (r *Repository) FileExists(_ context.Context, p string) bool {
	fi, err := r.fs.Stat(clean(p))
	return err == nil && fi.Mode().IsRegular()
}

// IsDirectory reports whether p exists and is a directory.
func (r *Repository) IsDirectory(_ context.Context, p string) bool {
	ok, err := afero.IsDir(r.fs, clean(p))
	return err == nil && ok
}

// ReadFile returns the contents of p.
func (r *Repository) ReadFile(_ context.Context, p string) ([]byte, error) {
	return afero.ReadFile(r.fs, clean(p))
}

// Is checks p for the given kind. An empty kind falls back to a file check.
// Unknown kinds and missing entries report false and are logged, never
// returned as errors.
func (r *Repository) Is(ctx context.Context, kind Kind, p string) bool {
	if kind == "" {
		r.logger.Warn(ctx, nil, "no kind given, using the default", "default", KindFile)
		kind = KindFile
	}

	if kind != KindFile && kind != KindDirectory {
		r.logger.Error(ctx, nil, "kind is not one of the valid kinds", "kind", kind)
		return false
	}

	target := pathutil.EnsureLeadingSlash(p)

	fi, err := r.fs.Stat(clean(target))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Info(ctx, "path is not a "+string(kind), "path", target)
		} else {
			r.logger.Warn(ctx, err, "stat failed", "path", target)
		}
		return false
	}

	if kind == KindDirectory {
		return fi.IsDir()
	}
	return fi.Mode().IsRegular()
}

// clean roots p at "/" and resolves any dot segments, so a BasePathFs never
// sees a path outside its root.
func clean(p string) string {
	return path.Clean("/" + p)
}
