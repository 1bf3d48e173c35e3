package reveal

// Completion resolves once the controller has revealed its whole target.
//
// Completion is not safe for concurrent use except for Done, whose channel
// may be waited on from any goroutine.
type Completion struct {
	done      chan struct{}
	resolved  bool
	callbacks []func()
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Then registers fn to run when the completion resolves. Callbacks run
// synchronously, in registration order, on the tick that resolves it. If the
// completion has already resolved, fn runs immediately.
func (c *Completion) Then(fn func()) *Completion {
	if c.resolved {
		fn()
		return c
	}
	c.callbacks = append(c.callbacks, fn)
	return c
}

// Done returns a channel that is closed when the completion resolves.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Resolved reports whether the completion has resolved.
func (c *Completion) Resolved() bool {
	return c.resolved
}

func (c *Completion) resolve() {
	if c.resolved {
		return
	}
	c.resolved = true
	close(c.done)

	callbacks := c.callbacks
	c.callbacks = nil
	for _, fn := range callbacks {
		fn()
	}
}
