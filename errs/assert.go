package errs

import (
	"fmt"

	"github.com/jsphweid/engraver/debug"
)

// Assert checks a programmer invariant. Debug builds (-tags debug)
// panic; release builds log and continue.
func Assert(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if fatalAsserts {
		panic(Precondition("assertion failed: %s", msg))
	}
	debug.Log("assert", "%s", msg)
}
