package app

import (
	"sync"

	"quiz-platform/internal/domain"
)

const feedBuffer = 8

// ResultFeed fans recorded results out to live subscribers (the admin dashboard).
type ResultFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.SubmissionResult]struct{}
}

func NewResultFeed() *ResultFeed {
	return &ResultFeed{subscribers: make(map[chan domain.SubmissionResult]struct{})}
}

// Subscribe returns a channel of new results.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ResultFeed) Subscribe() (<-chan domain.SubmissionResult, func()) {
	ch := make(chan domain.SubmissionResult, feedBuffer)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish never blocks: a full subscriber loses its oldest buffered result.
func (f *ResultFeed) Publish(result domain.SubmissionResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- result:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}

// Subscribers reports how many listeners are attached.
func (f *ResultFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
