// Package input delivers out-of-band requests, such as exit, to a session.
package input

import (
	"context"
	"sync"
)

type Kind string

const RequestExit Kind = "request_exit"

type Event struct {
	Kind   Kind   `json:"kind"`
	Origin string `json:"origin,omitempty"`
}

// Source emits events until ctx is done, then closes the channel.
type Source interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// ChanSource is fed in-process, e.g. by the HTTP exit endpoint.
type ChanSource struct {
	mu   sync.Mutex
	subs []chan Event
}

func NewChanSource() *ChanSource {
	return &ChanSource{}
}

func (s *ChanSource) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub == ch {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// Send delivers ev to every subscriber without blocking. It reports whether
// anyone was listening.
func (s *ChanSource) Send(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- ev:
		default:
		}
	}
	return len(s.subs) > 0
}

// Merge subscribes to every source and fans their events into one channel,
// closed once ctx is done and every source has closed.
func Merge(ctx context.Context, sources ...Source) (<-chan Event, error) {
	chans := make([]<-chan Event, 0, len(sources))
	for _, src := range sources {
		ch, err := src.Subscribe(ctx)
		if err != nil {
			return nil, err
		}
		chans = append(chans, ch)
	}

	out := make(chan Event)
	var wg sync.WaitGroup
	for _, ch := range chans {
		wg.Add(1)
		go func(ch <-chan Event) {
			defer wg.Done()
			for ev := range ch {
				select {
				case out <- ev:
				case <-ctx.Done():
				}
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}
