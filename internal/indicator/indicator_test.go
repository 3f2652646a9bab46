package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/flight_recorder/internal/config"
)

func TestMockRecordsTransitions(t *testing.T) {
	m := &Mock{}

	_, ok := m.Last()
	assert.False(t, ok)

	m.Set(false)
	m.Set(true)
	m.Set(true)
	m.Set(false)

	assert.Equal(t, []bool{false, true, true, false}, m.States())

	last, ok := m.Last()
	require.True(t, ok)
	assert.False(t, last)
}

func TestNewOff(t *testing.T) {
	cfg := config.IndicatorConfig{Driver: "off"}
	ind, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, Off{}, ind)

	// Off swallows everything.
	ind.Set(true)
	ind.Set(false)
	assert.NoError(t, ind.Close())
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(config.IndicatorConfig{Driver: "beeper"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beeper")
}
