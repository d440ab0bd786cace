package dlog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stringerStub string

func (s stringerStub) String() string { return string(s) }

func TestDefaultAndNopSatisfyLogger(t *testing.T) {
	var loggers = []Logger{Default(), Nop()}
	for _, l := range loggers {
		assert.NotPanics(t, func() {
			l.Resolving(stringerStub("./x"))
			l.CacheHit("k")
			l.CacheMiss("k")
			l.Log("count=%d", 3)
		})
	}
}

func TestStringerStubSatisfiesFmtStringer(t *testing.T) {
	var s fmt.Stringer = stringerStub("./y")
	assert.Equal(t, "./y", s.String())
}
