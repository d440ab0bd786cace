// Package cache implements §4.4's content-addressed integrity cache: an
// afs.Service-backed store under <cache-root>/<hex-digest>, grounded on the
// teacher's cache/storage/service.go (Put/Get/Delete over afs.Service with
// url.Join keys) but reshaped for content addressing rather than a TTL
// envelope — there is nothing to expire here, only to verify.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"dhall/internal/ast"
	"dhall/internal/binary"
	"dhall/internal/dherr"
)

// ownerOnlyDirMode is the permission bits §4.4 requires for every directory
// the cache creates: owner read+write+search, nothing for group or other.
const ownerOnlyDirMode = os.FileMode(0700)

// Cache is the on-disk integrity cache for one session.
type Cache struct {
	fs      afs.Service
	baseURL string
}

// New constructs a Cache rooted at baseURL (e.g. "file:///home/u/.cache/dhall"
// in production, "mem://localhost/dhall" in tests), backed by fs.
func New(fs afs.Service, baseURL string) *Cache {
	return &Cache{fs: fs, baseURL: baseURL}
}

func (c *Cache) keyURL(hexDigest string) string {
	return url.Join(c.baseURL, hexDigest)
}

// ensureDir creates baseURL with owner-only permissions if it does not
// already exist. Per §4.4, the cache never creates a directory it cannot
// make private; any error here means the caller falls through to uncached
// resolution rather than failing the whole load.
func (c *Cache) ensureDir(ctx context.Context) error {
	return c.fs.Create(ctx, c.baseURL, ownerOnlyDirMode, true)
}

// Read implements the "Read hit" branch of §4.4: if present, the file's raw
// bytes must hash to expectedHex or the lookup fails with HashMismatch.
// ok=false with a nil error means absent (fall through to Write mode).
func (c *Cache) Read(ctx context.Context, expectedHex string) (e ast.Expr, ok bool, err error) {
	keyURL := c.keyURL(expectedHex)
	exists, err := c.fs.Exists(ctx, keyURL, option.NewObjectKind(true))
	if err != nil || !exists {
		return nil, false, nil
	}
	reader, err := c.fs.OpenURL(ctx, keyURL)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to open cache entry %v", keyURL)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to read cache entry %v", keyURL)
	}
	sum := sha256.Sum256(data)
	actual := hex.EncodeToString(sum[:])
	if actual != expectedHex {
		return nil, false, &dherr.HashMismatch{Expected: expectedHex, Actual: actual}
	}
	_, decoded, err := binary.Decode(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to decode cache entry %v", keyURL)
	}
	return decoded, true, nil
}

// Write implements the "Write miss" branch of §4.4: encode e under protocol,
// verify its hash equals expectedHex, then write atomically via a uuid-named
// temp object followed by Move, matching the teacher's
// template/expand/sql.go marker-then-move discipline.
func (c *Cache) Write(ctx context.Context, protocol binary.Protocol, expectedHex string, e ast.Expr) error {
	encoded, err := binary.Encode(protocol, e)
	if err != nil {
		return errors.Wrapf(err, "failed to encode cache entry for %v", expectedHex)
	}
	sum := sha256.Sum256(encoded)
	actual := hex.EncodeToString(sum[:])
	if actual != expectedHex {
		return &dherr.HashMismatch{Expected: expectedHex, Actual: actual}
	}
	if err := c.ensureDir(ctx); err != nil {
		// cache directory unavailable: treat as cache-unavailable, not a
		// load failure.
		return nil
	}
	tmpURL := c.keyURL(expectedHex + "." + uuid.New().String() + ".tmp")
	if err := c.fs.Upload(ctx, tmpURL, file.DefaultFileOsMode, bytes.NewReader(encoded)); err != nil {
		return errors.Wrapf(err, "failed to stage cache entry for %v", expectedHex)
	}
	if err := c.fs.Move(ctx, tmpURL, c.keyURL(expectedHex)); err != nil {
		_ = c.fs.Delete(ctx, tmpURL, option.NewObjectKind(true))
		return errors.Wrapf(err, "failed to commit cache entry for %v", expectedHex)
	}
	return nil
}
