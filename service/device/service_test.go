package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTimer struct{}

func (f *fakeTimer) Name() string { return "timer0" }
func (f *fakeTimer) Kind() Kind   { return KindTimer }

func TestService_RegisterLookup(t *testing.T) {
	s := New()

	console := NewConsole()
	device, err := s.Register(console)
	assert.NoError(t, err)
	assert.Equal(t, uint32(1), device.ID)
	assert.Equal(t, "console0", device.Name)
	assert.Equal(t, KindConsole, device.Kind)
	assert.True(t, device.Active)

	// Duplicate registration is rejected.
	_, err = s.Register(NewConsole())
	assert.ErrorIs(t, err, ErrDeviceExists)

	driver, err := s.Lookup("console0")
	assert.NoError(t, err)
	assert.Same(t, console, driver)

	_, err = s.Lookup("disk0")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestService_DevicesOrdered(t *testing.T) {
	s := New()
	_, err := s.Register(NewConsole())
	assert.NoError(t, err)
	_, err = s.Register(&fakeTimer{})
	assert.NoError(t, err)

	devices := s.Devices()
	assert.Len(t, devices, 2)
	assert.Equal(t, "console0", devices[0].Name)
	assert.Equal(t, "timer0", devices[1].Name)
	assert.Equal(t, 2, s.Count())
}

func TestService_UnregisterAndActive(t *testing.T) {
	s := New()
	_, err := s.Register(&fakeTimer{})
	assert.NoError(t, err)

	assert.NoError(t, s.SetActive("timer0", false))
	device, err := s.Device("timer0")
	assert.NoError(t, err)
	assert.False(t, device.Active)

	assert.NoError(t, s.Unregister("timer0"))
	assert.ErrorIs(t, s.Unregister("timer0"), ErrDeviceNotFound)
	assert.Equal(t, 0, s.Count())
}

func TestConsole_Transcript(t *testing.T) {
	console := NewConsole()
	_, err := console.Write([]byte("boot "))
	assert.NoError(t, err)
	_, err = console.Write([]byte("ok"))
	assert.NoError(t, err)
	assert.Equal(t, "boot ok", console.Transcript())
}
