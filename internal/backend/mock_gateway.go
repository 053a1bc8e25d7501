package backend

import "github.com/scriptguard/scriptguard/internal/mock"

// MockGateway binds the Gateway interface to an in-memory mock store. Each
// gateway owns exactly one store, so independent instances can run in
// parallel test workers.
type MockGateway struct {
	store *mock.Store
}

// NewMockGateway creates a gateway over the given store.
func NewMockGateway(store *mock.Store) *MockGateway {
	return &MockGateway{store: store}
}

// Store exposes the underlying store for orchestrator resets.
func (g *MockGateway) Store() *mock.Store {
	return g.store
}

func (g *MockGateway) CreateService(spec mock.ServiceSpec) (*mock.Service, error) {
	return g.store.Services.Create(spec)
}

func (g *MockGateway) GetService(name string) (*mock.Service, error) {
	return g.store.Services.Get(name)
}

func (g *MockGateway) StartService(name string) (string, error) {
	return g.store.Services.Start(name)
}

func (g *MockGateway) StopService(name string, force bool) (string, error) {
	return g.store.Services.Stop(name, force)
}

func (g *MockGateway) PauseService(name string) error {
	return g.store.Services.Pause(name)
}

func (g *MockGateway) SetServiceStartupType(name string, startType mock.StartType) error {
	return g.store.Services.SetStartupType(name, startType)
}

func (g *MockGateway) RemoveService(name string) error {
	return g.store.Services.Remove(name)
}

func (g *MockGateway) CreateTemplate(t mock.Template) (*mock.Template, error) {
	return g.store.Certificates.CreateTemplate(t)
}

func (g *MockGateway) GetTemplate(server, name string) (*mock.Template, error) {
	return g.store.Certificates.GetTemplate(server, name)
}

func (g *MockGateway) InstallAuthorizationCertificate(c mock.AuthorizationCertificate) (*mock.AuthorizationCertificate, string, error) {
	return g.store.Certificates.InstallAuthorizationCertificate(c)
}

func (g *MockGateway) GetAuthorizationCertificate(server string) (*mock.AuthorizationCertificate, error) {
	return g.store.Certificates.GetAuthorizationCertificate(server)
}

func (g *MockGateway) CreateCertificateDefinition(d mock.CertificateDefinition) (*mock.CertificateDefinition, error) {
	return g.store.Certificates.CreateCertificateDefinition(d)
}

func (g *MockGateway) GetCertificateDefinition(name string) (*mock.CertificateDefinition, error) {
	return g.store.Certificates.GetCertificateDefinition(name)
}

func (g *MockGateway) CreateIssuanceRule(r mock.IssuanceRule) (*mock.IssuanceRule, error) {
	return g.store.Certificates.CreateIssuanceRule(r)
}

func (g *MockGateway) AddDirectoryObject(dn string, properties map[string]string) (*mock.DirectoryObject, error) {
	return g.store.Directory.Add(dn, properties)
}

func (g *MockGateway) GetDirectoryObject(dn string) (*mock.DirectoryObject, error) {
	return g.store.Directory.Get(dn)
}

func (g *MockGateway) SearchDirectory(base, filter string) ([]*mock.DirectoryObject, error) {
	return g.store.Directory.Search(base, filter)
}

func (g *MockGateway) WriteEvent(logName, level, message string) mock.EventLogEntry {
	return g.store.Directory.AppendEvent(logName, level, message)
}

func (g *MockGateway) ReadEvents(logName string, max int) []mock.EventLogEntry {
	return g.store.Directory.Events(logName, max)
}
