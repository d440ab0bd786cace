// Package dconfig composes the small options struct that governs a
// resolution session, mirroring the way the teacher's cmd/options package
// composes a config struct from flags and environment before constructing
// services — scoped down to what this core actually needs.
package dconfig

import (
	"os"

	"dhall/internal/binary"
)

// Options controls a resolution session.
type Options struct {
	// StartingDir anchors the synthetic root import; defaults to "." when empty.
	StartingDir string
	// CacheRoot overrides the integrity-cache root directory; when empty the
	// default is os.UserCacheDir() + "/dhall".
	CacheRoot string
	// Protocol selects the binary wire-format revision.
	Protocol binary.Protocol
	// DisableHTTP forces every Remote import to fail with CannotImportHTTPURL.
	DisableHTTP bool
}

const (
	envCacheDir    = "DHALL_CACHE_DIR"
	envDisableHTTP = "DHALL_DISABLE_HTTP"
)

// Default returns the Options a new session starts from: protocol v1, HTTP
// enabled, and a cache root resolved from DHALL_CACHE_DIR or the platform
// user-cache directory.
func Default(startingDir string) Options {
	o := Options{
		StartingDir: startingDir,
		Protocol:    binary.ProtocolV1,
	}
	if v := os.Getenv(envCacheDir); v != "" {
		o.CacheRoot = v
	}
	if v := os.Getenv(envDisableHTTP); v != "" && v != "0" && v != "false" {
		o.DisableHTTP = true
	}
	return o
}

// ResolveCacheRoot returns o.CacheRoot if set, else os.UserCacheDir()+"/dhall".
func ResolveCacheRoot(o Options) (string, error) {
	if o.CacheRoot != "" {
		return o.CacheRoot, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return base + "/dhall", nil
}
