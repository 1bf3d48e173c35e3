package pipeline

// StreamError is the failure of a generation attempt as reported by the
// stream source. Message is surfaced unchanged.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}
