// Package resolve is the core: the central recursion (§4.5) that walks an
// expression tree, resolves each import leaf against the in-process memo,
// enforces cycle and referential-opacity rules, type-checks and normalizes
// resolved sub-expressions, and implements the `?` alternative operator.
package resolve

import (
	"strings"

	"github.com/viant/afs"
	_ "github.com/viant/afs/http"

	"dhall/internal/ast"
	"dhall/internal/cache"
	"dhall/internal/dconfig"
	"dhall/internal/dlog"
	"dhall/internal/fetch"
	"dhall/internal/typecheck"
)

// Status is the mutable session state threaded through one resolution
// (§3 "Status (session state)").
type Status struct {
	// stack is non-empty once resolution begins; tip (index len-1) is the
	// innermost import being resolved.
	stack []ast.Import
	// memo maps a canonical here-import to its fully resolved, type-checked,
	// normalized expression.
	memo map[string]ast.Expr

	manager  afs.Service
	cache    *cache.Cache
	fetcher  fetch.Fetcher
	logger   dlog.Logger
	options  dconfig.Options

	startingContext *typecheck.Context
}

// EmptyStatus builds a fresh Status rooted at startingDir, per §6
// `emptyStatus(dir)`.
func EmptyStatus(startingDir string) *Status {
	return NewStatus(dconfig.Default(startingDir))
}

// NewStatus builds a Status from explicit Options, allowing callers (tests,
// embedders) to override the cache root, protocol, or HTTP policy.
func NewStatus(options dconfig.Options) *Status {
	fs := afs.New()
	cacheRoot, err := dconfig.ResolveCacheRoot(options)
	if err != nil {
		cacheRoot = ""
	}
	st := &Status{
		stack:           []ast.Import{rootImport(options.StartingDir)},
		memo:            map[string]ast.Expr{},
		manager:         fs,
		logger:          dlog.Default(),
		options:         options,
		startingContext: typecheck.Empty,
	}
	if cacheRoot != "" {
		st.cache = cache.New(fs, "file://"+cacheRoot)
	}
	st.fetcher = fetch.New(fs, options.DisableHTTP, st.resolveHeaders)
	return st
}

// WithLogger overrides the session's logger (default: dlog.Default()).
func (st *Status) WithLogger(l dlog.Logger) *Status {
	st.logger = l
	return st
}

// WithFetcher overrides the session's fetcher, used by tests to install a
// double without touching the filesystem or network.
func (st *Status) WithFetcher(f fetch.Fetcher) *Status {
	st.fetcher = f
	return st
}

// WithCache overrides the session's integrity cache, e.g. with a mem://-backed
// instance in tests.
func (st *Status) WithCache(c *cache.Cache) *Status {
	st.cache = c
	return st
}

// rootImport is the synthetic local import rooted at the starting directory
// (§3 "the parent of the outermost resolution is a synthetic local import
// rooted at the starting directory").
func rootImport(startingDir string) ast.Import {
	var dir []string
	for _, c := range strings.Split(startingDir, "/") {
		if c != "" && c != "." {
			dir = append(dir, c)
		}
	}
	return ast.Import{Locator: ast.Local{Prefix: ast.Here, Dir: dir, File: "."}}
}
