package usecase

import (
	"fmt"

	"handsfree/internal/domain"
	"handsfree/internal/ports"
)

// Mode selects the STT configuration for the next listening pass. A fresh
// descriptor is built on every call; callers treat it as a value.
//
// Listening uses a long streaming pass with the configured language and
// temperature. Paused uses a short burst with aggressive endpointing and
// fully deterministic decoding, which is what makes command listening cheap.
func (s *Session) Mode() (ports.ListenMode, error) {
	switch s.state {
	case domain.SessionStateListening:
		return ports.ListenMode{
			MaxDuration: s.opts.ListenTimeout,
			Sensitivity: ports.VADNormal,
			Streaming:   true,
			Language:    s.opts.Language,
			Temperature: s.opts.Temperature,
		}, nil
	case domain.SessionStatePaused:
		return ports.ListenMode{
			MaxDuration: s.opts.CommandTimeout,
			Sensitivity: ports.VADAggressive,
			Streaming:   false,
			Language:    s.opts.Language,
			Temperature: 0,
		}, nil
	default:
		return ports.ListenMode{}, fmt.Errorf("%w: no mode after stop", domain.ErrSessionStopped)
	}
}
