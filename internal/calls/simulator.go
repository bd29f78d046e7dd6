package calls

import (
	"context"
	"fmt"
	"time"

	"voicedesk/pkg/logger"

	"github.com/google/uuid"
)

const simulatedTranscript = "AI: Hello! This is a simulated call from the demo environment.\n" +
	"Customer: Oh, hi. So no real phone rang anywhere?\n" +
	"AI: Correct, no credentials are configured. Have a great day!"

// Simulator is the offline Dialer: it synthesizes an external call id and
// replays the asynchronous webhook flow locally with two timer-scheduled
// events (ringing, then completed with a canned transcript). Timers are
// fire-and-forget; simulated calls always run to completion, so there is no
// cancellation path.
type Simulator struct {
	// Sink receives synthesized events, normally Service.ApplyEvent.
	// Set after constructing the Service that uses this Simulator as Dialer.
	Sink func(ctx context.Context, event map[string]any) error

	RingAfter     time.Duration
	CompleteAfter time.Duration
}

func NewSimulator() *Simulator {
	return &Simulator{
		RingAfter:     2 * time.Second,
		CompleteAfter: 8 * time.Second,
	}
}

func (s *Simulator) Name() string { return "simulator" }

func (s *Simulator) CreateCall(ctx context.Context, name, phoneNumber string, overrides map[string]any) (map[string]any, string, error) {
	if s.Sink == nil {
		return nil, "", fmt.Errorf("simulator: event sink not set")
	}

	id := "sim-" + uuid.NewString()
	s.schedule(id)

	resp := map[string]any{
		"id":        id,
		"simulated": true,
		"customer": map[string]any{
			"number": phoneNumber,
			"name":   name,
		},
	}
	return resp, id, nil
}

// schedule queues the two lifecycle transitions. Events go through the same
// normalization path as real webhook traffic; the detached context outlives
// the originating request on purpose.
func (s *Simulator) schedule(externalCallID string) {
	time.AfterFunc(s.RingAfter, func() {
		s.deliver(map[string]any{
			"type":   "status-update",
			"status": "ringing",
			"call":   map[string]any{"id": externalCallID},
		})
	})
	time.AfterFunc(s.CompleteAfter, func() {
		s.deliver(map[string]any{
			"type":       "transcript",
			"transcript": simulatedTranscript,
			"call":       map[string]any{"id": externalCallID},
		})
		s.deliver(map[string]any{
			"type": "call.ended",
			"call": map[string]any{"id": externalCallID},
		})
	})
}

func (s *Simulator) deliver(event map[string]any) {
	ctx := context.Background()
	if err := s.Sink(ctx, event); err != nil {
		logger.From(ctx).Warn("simulated event not applied", "err", err)
	}
}
