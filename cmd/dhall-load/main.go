// Command dhall-load is a thin demo binary exercising resolve.Load end to
// end. The core itself has no CLI (§1 lists CLI as an external
// collaborator); this binary exists so github.com/jessevdk/go-flags, a real
// teacher dependency, has a home instead of being dropped outright — see
// DESIGN.md.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"dhall/internal/syntax"
	"dhall/internal/typecheck"
	"dhall/resolve"
)

// Options are the flags this demo understands, in the teacher's
// cmd/options struct-tag style.
type Options struct {
	Expr string `short:"e" long:"expr" description:"expression text to resolve" required:"true"`
	Dir  string `short:"d" long:"dir" description:"starting directory" default:"."`
}

func main() {
	var opts Options
	if _, err := flags.ParseArgs(&opts, os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	parsed, err := syntax.Parse(opts.Expr)
	if err != nil {
		return err
	}
	resolved, err := resolve.Load(context.Background(), parsed, opts.Dir)
	if err != nil {
		return err
	}
	typ, err := typecheck.TypeOf(typecheck.Empty, resolved)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n: %s\n", typecheck.Render(resolved), typecheck.Render(typ))
	return nil
}
