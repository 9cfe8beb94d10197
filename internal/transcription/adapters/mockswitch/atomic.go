package mockswitch

import (
	"sync/atomic"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

// Switch is a process-wide mock configuration cell. Every Set swaps in a new
// immutable value, so readers never observe a half-written configuration.
type Switch struct {
	current atomic.Pointer[core.MockConfiguration]
}

// NewSwitch creates a switch with the mock disabled
func NewSwitch() *Switch {
	s := &Switch{}
	s.current.Store(&core.MockConfiguration{})
	return s
}

// Get returns a copy of the current configuration
func (s *Switch) Get() core.MockConfiguration {
	if cfg := s.current.Load(); cfg != nil {
		return *cfg
	}
	return core.MockConfiguration{}
}

// Set replaces the current configuration, last write wins
func (s *Switch) Set(cfg core.MockConfiguration) {
	s.current.Store(&cfg)
}
