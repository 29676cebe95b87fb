package input

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
)

const DefaultExitSubject = "netmaster.input"

// NATSSource listens on a subject; an empty body or "exit" requests exit.
// Conn is used when set, otherwise URL is dialled and closed on shutdown.
type NATSSource struct {
	URL     string
	Subject string
	Conn    *nats.Conn
}

func (s NATSSource) Subscribe(ctx context.Context) (<-chan Event, error) {
	nc := s.Conn
	owned := false
	if nc == nil {
		var err error
		nc, err = nats.Connect(s.URL, nats.Name("netmaster-input"))
		if err != nil {
			return nil, fmt.Errorf("nats connect %s: %w", s.URL, err)
		}
		owned = true
	}

	subject := s.Subject
	if subject == "" {
		subject = DefaultExitSubject
	}

	out := make(chan Event, 1)
	var mu sync.Mutex
	closed := false

	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		if !isExit(m.Data) {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- Event{Kind: RequestExit, Origin: "nats:" + m.Subject}:
		default:
		}
	})
	if err != nil {
		if owned {
			nc.Close()
		}
		return nil, fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
		if owned {
			nc.Close()
		}
		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()
	return out, nil
}

func isExit(body []byte) bool {
	s := strings.ToLower(strings.TrimSpace(string(body)))
	return s == "" || s == "exit"
}
