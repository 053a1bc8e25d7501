package mock

import (
	"fmt"
	"sort"

	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

// ServiceStatus is the runtime state of a simulated service.
type ServiceStatus string

const (
	StatusStopped ServiceStatus = "Stopped"
	StatusRunning ServiceStatus = "Running"
	StatusPaused  ServiceStatus = "Paused"
)

// StartType is the configured startup mode of a service.
type StartType string

const (
	StartAutomatic StartType = "Automatic"
	StartManual    StartType = "Manual"
	StartDisabled  StartType = "Disabled"
)

// Service mirrors the real service control manager's view of one service.
type Service struct {
	Name        string
	DisplayName string
	Status      ServiceStatus
	StartType   StartType
	CanStop     bool
}

// ServiceSpec describes a service to create. Zero values default to
// Stopped/Manual/stoppable.
type ServiceSpec struct {
	Name         string
	DisplayName  string
	Status       ServiceStatus
	StartType    StartType
	NotStoppable bool
}

// ServiceStore simulates the service control manager.
type ServiceStore struct {
	services map[string]*Service
}

// NewServiceStore creates an empty service store.
func NewServiceStore() *ServiceStore {
	return &ServiceStore{services: map[string]*Service{}}
}

// Reset removes every service.
func (s *ServiceStore) Reset() {
	s.services = map[string]*Service{}
}

// Create registers a new service. Duplicate names are an error; the real
// control manager refuses them too.
func (s *ServiceStore) Create(spec ServiceSpec) (*Service, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("service name must not be empty")
	}
	if _, exists := s.services[spec.Name]; exists {
		return nil, sgerrors.NewMockIntegrityError("service", spec.Name, "service already exists")
	}

	svc := &Service{
		Name:        spec.Name,
		DisplayName: spec.DisplayName,
		Status:      spec.Status,
		StartType:   spec.StartType,
		CanStop:     !spec.NotStoppable,
	}
	if svc.DisplayName == "" {
		svc.DisplayName = spec.Name
	}
	if svc.Status == "" {
		svc.Status = StatusStopped
	}
	if svc.StartType == "" {
		svc.StartType = StartManual
	}

	s.services[spec.Name] = svc
	return svc, nil
}

// Get returns the named service or a domain error naming it.
func (s *ServiceStore) Get(name string) (*Service, error) {
	svc, ok := s.services[name]
	if !ok {
		return nil, sgerrors.NewMockIntegrityError("service", name, "no such service")
	}
	return svc, nil
}

// List returns all services sorted by name.
func (s *ServiceStore) List() []*Service {
	out := make([]*Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Start transitions Stopped→Running. Starting an already-running service is
// a no-op with a warning, matching the real backend.
func (s *ServiceStore) Start(name string) (warning string, err error) {
	svc, err := s.Get(name)
	if err != nil {
		return "", err
	}
	switch svc.Status {
	case StatusRunning:
		return fmt.Sprintf("service %q is already running", name), nil
	case StatusPaused:
		svc.Status = StatusRunning
		return "", nil
	default:
		if svc.StartType == StartDisabled {
			return "", sgerrors.NewMockIntegrityError("service", name, "cannot start a disabled service")
		}
		svc.Status = StatusRunning
		return "", nil
	}
}

// Stop transitions Running/Paused→Stopped. Stopping an already-stopped
// service warns instead of failing; a non-stoppable service refuses unless
// force is set.
func (s *ServiceStore) Stop(name string, force bool) (warning string, err error) {
	svc, err := s.Get(name)
	if err != nil {
		return "", err
	}
	if svc.Status == StatusStopped {
		return fmt.Sprintf("service %q is already stopped", name), nil
	}
	if !svc.CanStop && !force {
		return "", sgerrors.NewMockIntegrityError("service", name, "service does not accept stop requests")
	}
	svc.Status = StatusStopped
	return "", nil
}

// Pause transitions Running→Paused.
func (s *ServiceStore) Pause(name string) error {
	svc, err := s.Get(name)
	if err != nil {
		return err
	}
	if svc.Status != StatusRunning {
		return sgerrors.NewMockIntegrityError("service", name,
			fmt.Sprintf("cannot pause a service in state %s", svc.Status))
	}
	svc.Status = StatusPaused
	return nil
}

// SetStartupType changes the configured start type only; the runtime status
// is untouched.
func (s *ServiceStore) SetStartupType(name string, startType StartType) error {
	svc, err := s.Get(name)
	if err != nil {
		return err
	}
	switch startType {
	case StartAutomatic, StartManual, StartDisabled:
		svc.StartType = startType
		return nil
	default:
		return fmt.Errorf("unknown startup type %q", startType)
	}
}

// Remove deletes the named service.
func (s *ServiceStore) Remove(name string) error {
	if _, ok := s.services[name]; !ok {
		return sgerrors.NewMockIntegrityError("service", name, "no such service")
	}
	delete(s.services, name)
	return nil
}
