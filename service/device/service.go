package device

import (
	"reflect"
	"sort"
	"sync"

	"github.com/viant/x"
)

// Service is the device registry.
type Service struct {
	types   *x.Registry
	drivers map[string]Driver
	devices map[string]*Device
	nextID  uint32
	mux     sync.RWMutex
}

// New creates a device registry, optionally pre-registering driver types.
func New(goTypes ...*x.Type) *Service {
	ret := &Service{
		types:   x.NewRegistry(),
		drivers: make(map[string]Driver),
		devices: make(map[string]*Device),
		nextID:  1,
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}

// Register adds a driver under its name and returns the assigned descriptor.
func (s *Service) Register(driver Driver) (*Device, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	name := driver.Name()
	if _, ok := s.drivers[name]; ok {
		return nil, ErrDeviceExists
	}
	rType := reflect.TypeOf(driver)
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	s.types.Register(x.NewType(rType))

	device := newDevice(s.nextID, driver, rType.String())
	s.nextID++
	s.drivers[name] = driver
	s.devices[name] = device
	return device, nil
}

// Unregister removes the named driver.
func (s *Service) Unregister(name string) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.drivers[name]; !ok {
		return ErrDeviceNotFound
	}
	delete(s.drivers, name)
	delete(s.devices, name)
	return nil
}

// Lookup returns the driver registered under the name.
func (s *Service) Lookup(name string) (Driver, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	driver, ok := s.drivers[name]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return driver, nil
}

// Device returns the descriptor for the named driver.
func (s *Service) Device(name string) (*Device, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	device, ok := s.devices[name]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return device, nil
}

// SetActive toggles the descriptor's active flag.
func (s *Service) SetActive(name string, active bool) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	device, ok := s.devices[name]
	if !ok {
		return ErrDeviceNotFound
	}
	device.Active = active
	return nil
}

// Devices returns all descriptors ordered by registration id.
func (s *Service) Devices() []*Device {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]*Device, 0, len(s.devices))
	for _, device := range s.devices {
		ret = append(ret, device)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

// Count returns the number of registered devices.
func (s *Service) Count() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.devices)
}
