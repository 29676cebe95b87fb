package input

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalSource turns process signals into exit requests.
type SignalSource struct {
	Signals []os.Signal
}

func (s SignalSource) Subscribe(ctx context.Context) (<-chan Event, error) {
	sigs := s.Signals
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	raw := make(chan os.Signal, 1)
	signal.Notify(raw, sigs...)

	out := make(chan Event, 1)
	go func() {
		defer close(out)
		defer signal.Stop(raw)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-raw:
				select {
				case out <- Event{Kind: RequestExit, Origin: "signal:" + sig.String()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
