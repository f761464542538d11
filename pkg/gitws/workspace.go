package gitws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/ganymede/pkg/config"
)

// opTimeout bounds the clone and the fetch. The hard reset that follows
// a fetch runs without a time bound.
const opTimeout = 30 * time.Second

// Workspace presents one environment's Git repository as a read-only
// snapshot keyed by ref names. Refresh holds the write lock for the
// duration of fetch + reset; Resolve holds the read lock only while
// turning a ref name into a commit hash. Blob and tree reads take a
// commit hash and run lock-free.
type Workspace struct {
	env    string
	cfg    *config.GitConfig
	repo   *gogit.Repository
	mu     sync.RWMutex
	logger *slog.Logger

	lastRefresh time.Time
	lastError   string
	head        string
}

// RefreshStatus is a point-in-time snapshot of a workspace's refresh
// state, used by the health endpoints and the UI.
type RefreshStatus struct {
	Env         string    `json:"env"`
	Head        string    `json:"head"`
	LastRefresh time.Time `json:"last_refresh"`
	LastError   string    `json:"last_error,omitempty"`
}

// NewWorkspace creates a workspace for one environment. Init must be
// called before any read operation.
func NewWorkspace(env string, cfg *config.GitConfig) *Workspace {
	return &Workspace{
		env:    env,
		cfg:    cfg,
		logger: slog.Default().With("component", "gitws", "env", env),
	}
}

// Env returns the environment name this workspace serves.
func (w *Workspace) Env() string { return w.env }

// Config returns the Git configuration backing this workspace.
func (w *Workspace) Config() *config.GitConfig { return w.cfg }

// Init clones the repository into the workdir, or opens it if a
// repository is already present, and then runs an initial refresh so the
// working tree matches origin. A failed Init aborts server startup.
func (w *Workspace) Init(ctx context.Context) error {
	w.mu.Lock()

	gitDir := filepath.Join(w.cfg.Workdir, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		repo, err := gogit.PlainOpen(w.cfg.Workdir)
		if err != nil {
			w.mu.Unlock()
			return fmt.Errorf("failed to open existing repo in %s: %w", w.cfg.Workdir, err)
		}
		w.repo = repo
		w.mu.Unlock()
		return w.Refresh(ctx)
	}

	if err := os.MkdirAll(w.cfg.Workdir, 0o755); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create workdir: %w", err)
	}

	w.logger.Info("cloning repository",
		"url", w.cfg.RepoURL,
		"branch", w.cfg.Branch,
		"workdir", w.cfg.Workdir,
	)

	cloneCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, w.cfg.Workdir, false, &gogit.CloneOptions{
		URL:           w.cfg.RepoURL,
		ReferenceName: plumbing.NewBranchReferenceName(w.cfg.Branch),
	})
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to clone %s: %w", w.cfg.RepoURL, wrapTimeout(err))
	}
	w.repo = repo
	w.mu.Unlock()
	return w.Refresh(ctx)
}

// Refresh fetches from origin and hard-resets the working tree to
// origin/<branch>. It takes the workspace write lock for the duration;
// in-flight reads pinned to a commit hash are unaffected.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.refreshLocked(ctx)
	w.lastRefresh = time.Now()
	if err != nil {
		w.lastError = err.Error()
		return err
	}
	w.lastError = ""
	return nil
}

func (w *Workspace) refreshLocked(ctx context.Context) error {
	if w.repo == nil {
		return fmt.Errorf("workspace not initialized")
	}

	fetchCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := w.repo.FetchContext(fetchCtx, &gogit.FetchOptions{
		RemoteName: "origin",
		Force:      true,
		Prune:      true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch origin: %w", wrapTimeout(err))
	}

	ref, err := w.repo.Reference(plumbing.NewRemoteReferenceName("origin", w.cfg.Branch), true)
	if err != nil {
		return fmt.Errorf("origin/%s not found after fetch: %w", w.cfg.Branch, err)
	}

	worktree, err := w.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := worktree.Reset(&gogit.ResetOptions{
		Mode:   gogit.HardReset,
		Commit: ref.Hash(),
	}); err != nil {
		return fmt.Errorf("failed to reset to origin/%s: %w", w.cfg.Branch, err)
	}

	w.head = ref.Hash().String()
	return nil
}

// Status returns a snapshot of the workspace's refresh state.
func (w *Workspace) Status() RefreshStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return RefreshStatus{
		Env:         w.env,
		Head:        w.head,
		LastRefresh: w.lastRefresh,
		LastError:   w.lastError,
	}
}

// Resolve turns an optional label into a full commit hash. An empty
// label resolves the default branch. Resolution first tries the name as
// given, then origin/<name>. When a branch whitelist is configured, a
// label outside it fails without attempting resolution. The read lock is
// held so resolution never observes a partially applied reset.
func (w *Workspace) Resolve(label string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.repo == nil {
		return "", fmt.Errorf("workspace not initialized")
	}

	rev := w.cfg.Branch
	missing := ErrRefMissing
	if label != "" {
		if len(w.cfg.Branches) > 0 && !slices.Contains(w.cfg.Branches, label) {
			return "", fmt.Errorf("label %q not in allowed branches: %w", label, ErrLabelNotFound)
		}
		rev = label
		missing = ErrLabelNotFound
	}

	if hash, err := w.repo.ResolveRevision(plumbing.Revision(rev)); err == nil {
		return hash.String(), nil
	}
	if hash, err := w.repo.ResolveRevision(plumbing.Revision("origin/" + rev)); err == nil {
		return hash.String(), nil
	}
	return "", fmt.Errorf("cannot resolve %q: %w", rev, missing)
}

// ReadBlob returns the contents of <subpath>/<path> at the given commit.
// Reads are by commit hash against the immutable object store, so no
// lock is taken.
func (w *Workspace) ReadBlob(commit, path string) ([]byte, error) {
	tree, err := w.treeAt(commit)
	if err != nil {
		return nil, err
	}

	file, err := tree.File(w.joinSubpath(path))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%s at %s: %w", path, shortHash(commit), ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, shortHash(commit), err)
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", path, err)
	}
	return data, nil
}

// ListTree lists every blob path under the configured subpath at the
// given commit, relative to the subpath.
func (w *Workspace) ListTree(commit string) ([]string, error) {
	tree, err := w.treeAt(commit)
	if err != nil {
		return nil, err
	}

	prefix := ""
	if w.cfg.Subpath != "" {
		prefix = strings.TrimSuffix(w.cfg.Subpath, "/") + "/"
	}

	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		if prefix == "" {
			files = append(files, f.Name)
			return nil
		}
		if rel, ok := strings.CutPrefix(f.Name, prefix); ok {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tree at %s: %w", shortHash(commit), err)
	}
	return files, nil
}

// CommitDate returns the committer timestamp of the given commit.
func (w *Workspace) CommitDate(commit string) (time.Time, error) {
	c, err := w.repo.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load commit %s: %w", shortHash(commit), err)
	}
	return c.Committer.When, nil
}

func (w *Workspace) treeAt(commit string) (*object.Tree, error) {
	c, err := w.repo.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", shortHash(commit), err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree of %s: %w", shortHash(commit), err)
	}
	return tree, nil
}

// joinSubpath joins the configured subpath with a repo-relative path
// using exactly one separator.
func (w *Workspace) joinSubpath(path string) string {
	if w.cfg.Subpath == "" {
		return path
	}
	return strings.TrimSuffix(w.cfg.Subpath, "/") + "/" + strings.TrimPrefix(path, "/")
}

// wrapTimeout converts a context deadline error into ErrTimeout so the
// HTTP layer can map it to 502.
func wrapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
