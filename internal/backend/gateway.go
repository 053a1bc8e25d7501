// Package backend defines the boundary between automation flows and the
// identity infrastructure they drive. Production code binds Gateway to the
// real backend clients; tests bind it to the in-memory mock store. There is
// no global command table to patch; dispatch is an explicit interface.
package backend

import "github.com/scriptguard/scriptguard/internal/mock"

// Gateway exposes one method per backend operation, preserving the real
// systems' call signatures and error contracts.
type Gateway interface {
	// Service control manager.
	CreateService(spec mock.ServiceSpec) (*mock.Service, error)
	GetService(name string) (*mock.Service, error)
	StartService(name string) (warning string, err error)
	StopService(name string, force bool) (warning string, err error)
	PauseService(name string) error
	SetServiceStartupType(name string, startType mock.StartType) error
	RemoveService(name string) error

	// Certificate authority.
	CreateTemplate(t mock.Template) (*mock.Template, error)
	GetTemplate(server, name string) (*mock.Template, error)
	InstallAuthorizationCertificate(c mock.AuthorizationCertificate) (*mock.AuthorizationCertificate, string, error)
	GetAuthorizationCertificate(server string) (*mock.AuthorizationCertificate, error)
	CreateCertificateDefinition(d mock.CertificateDefinition) (*mock.CertificateDefinition, error)
	GetCertificateDefinition(name string) (*mock.CertificateDefinition, error)
	CreateIssuanceRule(r mock.IssuanceRule) (*mock.IssuanceRule, error)

	// Directory service and event log.
	AddDirectoryObject(dn string, properties map[string]string) (*mock.DirectoryObject, error)
	GetDirectoryObject(dn string) (*mock.DirectoryObject, error)
	SearchDirectory(base, filter string) ([]*mock.DirectoryObject, error)
	WriteEvent(logName, level, message string) mock.EventLogEntry
	ReadEvents(logName string, max int) []mock.EventLogEntry
}
