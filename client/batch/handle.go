package batch

// Handle tracks one function started on a Queue.
type Handle struct {
	done chan struct{}
	err  error
}

// Err blocks until the function completes and returns its error.
func (h *Handle) Err() error {
	<-h.done
	return h.err
}
