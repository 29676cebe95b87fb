package game

import (
	"context"

	"github.com/JoaoRebolo/NetMaster-sub000/internal/input"

	"go.uber.org/zap"
)

// Run blocks until a source requests exit or ctx is cancelled, then ends
// the session.
func (s *Session) Run(ctx context.Context, sources ...input.Source) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := input.Merge(ctx, sources...)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			s.End("context cancelled")
			return nil
		case <-s.done:
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Kind != input.RequestExit {
				s.log.Debug("input ignored", zap.String("kind", string(ev.Kind)))
				continue
			}
			s.log.Info("exit requested", zap.String("origin", ev.Origin))
			s.End("exit requested")
			return nil
		}
	}
}
