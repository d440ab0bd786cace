// Package hashkit implements §4.6: hashExpression = SHA256(encode(e)) and
// hashExpressionToCode = "sha256:" + hex(hashExpression(e)). crypto/sha256
// is the ecosystem-standard way to compute a SHA-256 digest in Go; nothing
// in the retrieved pack wraps it with anything this module would need
// beyond what the standard library already provides (see DESIGN.md).
package hashkit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"dhall/internal/ast"
	"dhall/internal/binary"
)

// HashExpression returns SHA256(encode(protocol, e)). e must be fully
// resolved (no import leaves) — callers are expected to have already
// normalized it; this function does not normalize on the caller's behalf
// because callers disagree on whether α-normalization should happen first
// (§3 invariant 6 calls for α-normalized β-normal form).
func HashExpression(protocol binary.Protocol, e ast.Expr) ([32]byte, error) {
	if ast.HasImports(e) {
		return [32]byte{}, fmt.Errorf("hashkit: expression still contains import leaves")
	}
	encoded, err := binary.Encode(protocol, e)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(encoded), nil
}

// HashExpressionToCode returns "sha256:<hex>" for HashExpression(protocol,
// e).
func HashExpressionToCode(protocol binary.Protocol, e ast.Expr) (string, error) {
	sum, err := HashExpression(protocol, e)
	if err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
