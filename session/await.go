package session

// Await reports completion of an asynchronous operation. Completion is
// signalled exactly once by the producer; the consumer polls Done from the
// game tick. The optional onSettled hook runs on the polling side the first
// time Done observes completion, so scene activation and similar mutations
// stay on the single logical game thread.
type Await struct {
	ch        chan error
	err       error
	settled   bool
	onSettled func(error)
}

// NewAwait creates an Await and its completer. Calling the completer more
// than once panics; producers must report completion exactly once.
func NewAwait(onSettled func(error)) (*Await, func(error)) {
	a := &Await{ch: make(chan error, 1), onSettled: onSettled}
	return a, func(err error) {
		a.ch <- err
		close(a.ch)
	}
}

// Completed returns an Await that is already settled with err.
func Completed(err error) *Await {
	return &Await{settled: true, err: err}
}

// Done polls for completion without blocking.
func (a *Await) Done() bool {
	if a == nil {
		return true
	}
	if a.settled {
		return true
	}
	select {
	case err := <-a.ch:
		a.err = err
		a.settled = true
		if a.onSettled != nil {
			a.onSettled(err)
		}
		return true
	default:
		return false
	}
}

// Err returns the settled error. Only meaningful after Done reports true.
func (a *Await) Err() error {
	if a == nil {
		return nil
	}
	return a.err
}
