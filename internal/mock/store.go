// Package mock provides an in-memory simulation of the backend systems the
// deployment scripts drive: a service control manager, a certificate
// authority with templates and issuance rules, and a directory service with
// an event log.
//
// A Store is not safe for concurrent use. Tests run one case at a time
// against a store, or give each worker its own instance; the orchestrator
// resets the store between cases. No I/O happens inside the store; every
// operation is synchronous and immediate.
package mock

// Store aggregates the three simulated subsystems.
type Store struct {
	Services     *ServiceStore
	Certificates *CertificateStore
	Directory    *DirectoryStore
}

// NewStore creates an empty store with all three subsystems.
func NewStore() *Store {
	return &Store{
		Services:     NewServiceStore(),
		Certificates: NewCertificateStore(),
		Directory:    NewDirectoryStore(),
	}
}

// Reset empties every subsystem. The test orchestrator calls this before
// each case so no state leaks between tests.
func (s *Store) Reset() {
	s.Services.Reset()
	s.Certificates.Reset()
	s.Directory.Reset()
}
