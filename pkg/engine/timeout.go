package engine

import (
	"time"

	"github.com/chazu/ifcgeom/pkg/errors"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	match  bool
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds EvalTimeout. On timeout the evaluating
// goroutine keeps running; its result lands in the buffered channel and
// is dropped.
func waitWithTimeout(ch <-chan evalResult) (bool, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.match, res.errors, res.err
	case <-timer.C:
		return false, nil, errors.Newf("evaluation timed out after %s", EvalTimeout)
	}
}
