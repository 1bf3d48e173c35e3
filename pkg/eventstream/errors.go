package eventstream

import "errors"

// ErrNilPaperEvent indicates a nil paper event payload was provided to a publisher.
var ErrNilPaperEvent = errors.New("nil paper event")
