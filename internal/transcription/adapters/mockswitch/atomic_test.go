package mockswitch_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terryyin/meeting-plunger/internal/transcription/adapters/mockswitch"
	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

func TestSwitch_StartsDisabled(t *testing.T) {
	s := mockswitch.NewSwitch()

	assert.Equal(t, core.MockConfiguration{}, s.Get())
}

func TestSwitch_ZeroValueIsDisabled(t *testing.T) {
	var s mockswitch.Switch

	assert.False(t, s.Get().Enabled)
}

func TestSwitch_SetReplacesWholesale(t *testing.T) {
	s := mockswitch.NewSwitch()

	s.Set(core.MockConfiguration{Enabled: true, Transcript: "first"})
	assert.Equal(t, core.MockConfiguration{Enabled: true, Transcript: "first"}, s.Get())

	s.Set(core.MockConfiguration{Enabled: false})
	assert.Equal(t, core.MockConfiguration{}, s.Get())
}

func TestSwitch_GetReturnsCopy(t *testing.T) {
	s := mockswitch.NewSwitch()
	s.Set(core.MockConfiguration{Enabled: true, Transcript: "X"})

	cfg := s.Get()
	cfg.Transcript = "changed"

	assert.Equal(t, "X", s.Get().Transcript)
}

func TestSwitch_ConcurrentAccess(t *testing.T) {
	s := mockswitch.NewSwitch()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func(i int) {
			defer wg.Done()
			s.Set(core.MockConfiguration{Enabled: true, Transcript: fmt.Sprintf("transcript-%d", i)})
		}(i)

		go func() {
			defer wg.Done()
			cfg := s.Get()
			// Readers see either the initial value or one complete write
			if cfg.Enabled {
				assert.Contains(t, cfg.Transcript, "transcript-")
			} else {
				assert.Empty(t, cfg.Transcript)
			}
		}()
	}
	wg.Wait()

	assert.True(t, s.Get().Enabled)
}
