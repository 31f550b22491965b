package crawler

import (
	"context"

	"locimages/pkg/loc"
)

// Stream is the lazy sequence of deduplicated image URLs produced by a
// crawl. The consumer drains Images incrementally; production stays one
// request at a time, so a slow consumer simply delays the next page fetch.
//
// A crawl that dies on a later page closes the stream early; whatever was
// already produced remains valid and Err reports why the rest is missing.
type Stream struct {
	ch  chan loc.Image
	err error
}

func newStream() *Stream {
	return &Stream{ch: make(chan loc.Image)}
}

// Images returns the channel of discovered images, closed when the crawl
// finishes or fails
func (s *Stream) Images() <-chan loc.Image {
	return s.ch
}

// Err reports why the stream ended early, nil on a complete crawl.
// Only valid after Images has been closed.
func (s *Stream) Err() error {
	return s.err
}

// send delivers one image to the consumer, giving up if the context ends
// first. Returning false means the consumer is gone and production stops.
func (s *Stream) send(ctx context.Context, img loc.Image) bool {
	select {
	case s.ch <- img:
		return true
	case <-ctx.Done():
		return false
	}
}

// fail records the terminal error. Called only by the producer, before close.
func (s *Stream) fail(err error) {
	s.err = err
}

// close ends the stream. Called only by the producer.
func (s *Stream) close() {
	close(s.ch)
}
