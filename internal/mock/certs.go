package mock

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

// Template is a certificate template owned by one server.
type Template struct {
	Name                string
	OwningServerAddress string
	SchemaVersion       int
	HashAlgorithm       string
	KeySize             int
}

// AuthorizationCertificate authorizes one server to issue certificates. At
// most one live certificate exists per server address.
type AuthorizationCertificate struct {
	ID            string
	ServerAddress string
	Subject       string
	Issuer        string
	Thumbprint    string
	NotBefore     time.Time
	NotAfter      time.Time
}

// CertificateDefinition binds a template to a certificate authority on one
// server. It cannot exist before the server holds an authorization
// certificate.
type CertificateDefinition struct {
	Name                       string
	ServerAddress              string
	TemplateName               string
	CertificateAuthority       string
	AuthorizationCertificateID string
}

// IssuanceRule gates which certificate definitions a caller may request.
// Every referenced definition must exist; access-control strings follow
// <Action>:<PrincipalKind>=<value>.
type IssuanceRule struct {
	Name                       string
	ServerAddress              string
	CertificateDefinitionNames []string
	IssuancePolicy             string
	EnrollmentPolicy           string
	RenewalPolicy              string
}

var accessControlPattern = regexp.MustCompile(`^(Allow|Deny):(User|Group|Sid)=[^=\s]+$`)

// CertificateStore simulates the certificate authority's template and
// issuance state with full referential integrity.
type CertificateStore struct {
	templates   map[string]*Template // key: server + "/" + name
	authCerts   map[string]*AuthorizationCertificate
	definitions map[string]*CertificateDefinition
	rules       map[string]*IssuanceRule
}

// NewCertificateStore creates an empty certificate store.
func NewCertificateStore() *CertificateStore {
	s := &CertificateStore{}
	s.Reset()
	return s
}

// Reset removes all templates, certificates, definitions, and rules.
func (s *CertificateStore) Reset() {
	s.templates = map[string]*Template{}
	s.authCerts = map[string]*AuthorizationCertificate{}
	s.definitions = map[string]*CertificateDefinition{}
	s.rules = map[string]*IssuanceRule{}
}

func templateKey(server, name string) string {
	return server + "/" + name
}

// CreateTemplate registers a template. Templates are unique per
// (server, name); duplicates are an error.
func (s *CertificateStore) CreateTemplate(t Template) (*Template, error) {
	if t.Name == "" || t.OwningServerAddress == "" {
		return nil, fmt.Errorf("template name and owning server are required")
	}
	key := templateKey(t.OwningServerAddress, t.Name)
	if _, exists := s.templates[key]; exists {
		return nil, sgerrors.NewMockIntegrityError("certificate", key,
			"template already exists on this server")
	}
	tpl := t
	s.templates[key] = &tpl
	return &tpl, nil
}

// GetTemplate returns the template or a domain error naming it.
func (s *CertificateStore) GetTemplate(server, name string) (*Template, error) {
	tpl, ok := s.templates[templateKey(server, name)]
	if !ok {
		return nil, sgerrors.NewMockIntegrityError("certificate", templateKey(server, name), "no such template")
	}
	return tpl, nil
}

// InstallAuthorizationCertificate installs the server's authorization
// certificate. A second install for the same server overwrites the first and
// returns a warning rather than failing; the real backend behaves the same.
func (s *CertificateStore) InstallAuthorizationCertificate(c AuthorizationCertificate) (*AuthorizationCertificate, string, error) {
	if c.ServerAddress == "" {
		return nil, "", fmt.Errorf("server address is required")
	}
	var warning string
	if _, exists := s.authCerts[c.ServerAddress]; exists {
		warning = fmt.Sprintf("replacing existing authorization certificate for %q", c.ServerAddress)
	}
	cert := c
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	s.authCerts[c.ServerAddress] = &cert

	// Existing definitions on this server are now backed by the new
	// certificate.
	for _, def := range s.definitions {
		if def.ServerAddress == c.ServerAddress {
			def.AuthorizationCertificateID = cert.ID
		}
	}
	return &cert, warning, nil
}

// GetAuthorizationCertificate returns the live certificate for the server.
func (s *CertificateStore) GetAuthorizationCertificate(server string) (*AuthorizationCertificate, error) {
	cert, ok := s.authCerts[server]
	if !ok {
		return nil, sgerrors.NewMockIntegrityError("certificate", server,
			"no authorization certificate installed for server")
	}
	return cert, nil
}

// RemoveAuthorizationCertificate removes the server's certificate. It
// refuses while certificate definitions on the server exist: every definition
// requires a live authorization certificate, whichever install produced it.
func (s *CertificateStore) RemoveAuthorizationCertificate(server string) error {
	if _, ok := s.authCerts[server]; !ok {
		return sgerrors.NewMockIntegrityError("certificate", server,
			"no authorization certificate installed for server")
	}
	for _, def := range s.definitions {
		if def.ServerAddress == server {
			return sgerrors.NewMockIntegrityError("certificate", server,
				fmt.Sprintf("certificate definition %q still depends on this certificate", def.Name))
		}
	}
	delete(s.authCerts, server)
	return nil
}

// CreateCertificateDefinition registers a definition. The server must
// already hold an authorization certificate; this is the store's key
// invariant.
func (s *CertificateStore) CreateCertificateDefinition(d CertificateDefinition) (*CertificateDefinition, error) {
	if d.Name == "" || d.ServerAddress == "" {
		return nil, fmt.Errorf("definition name and server address are required")
	}
	if _, exists := s.definitions[d.Name]; exists {
		return nil, sgerrors.NewMockIntegrityError("certificate", d.Name,
			"certificate definition already exists")
	}
	cert, err := s.GetAuthorizationCertificate(d.ServerAddress)
	if err != nil {
		return nil, sgerrors.NewMockIntegrityError("certificate", d.Name,
			fmt.Sprintf("no authorization certificate exists for server %q", d.ServerAddress))
	}
	def := d
	def.AuthorizationCertificateID = cert.ID
	s.definitions[d.Name] = &def
	return &def, nil
}

// GetCertificateDefinition returns the named definition.
func (s *CertificateStore) GetCertificateDefinition(name string) (*CertificateDefinition, error) {
	def, ok := s.definitions[name]
	if !ok {
		return nil, sgerrors.NewMockIntegrityError("certificate", name, "no such certificate definition")
	}
	return def, nil
}

// RemoveCertificateDefinition removes the named definition. It refuses
// while issuance rules still reference it.
func (s *CertificateStore) RemoveCertificateDefinition(name string) error {
	if _, ok := s.definitions[name]; !ok {
		return sgerrors.NewMockIntegrityError("certificate", name, "no such certificate definition")
	}
	for _, rule := range s.rules {
		for _, ref := range rule.CertificateDefinitionNames {
			if ref == name {
				return sgerrors.NewMockIntegrityError("certificate", name,
					fmt.Sprintf("issuance rule %q still references this definition", rule.Name))
			}
		}
	}
	delete(s.definitions, name)
	return nil
}

// CreateIssuanceRule registers a rule. All referenced certificate
// definitions must exist and every access-control string must parse.
func (s *CertificateStore) CreateIssuanceRule(r IssuanceRule) (*IssuanceRule, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("issuance rule name is required")
	}
	if _, exists := s.rules[r.Name]; exists {
		return nil, sgerrors.NewMockIntegrityError("certificate", r.Name, "issuance rule already exists")
	}
	if len(r.CertificateDefinitionNames) == 0 {
		return nil, sgerrors.NewMockIntegrityError("certificate", r.Name,
			"issuance rule must reference at least one certificate definition")
	}
	for _, ref := range r.CertificateDefinitionNames {
		if _, ok := s.definitions[ref]; !ok {
			return nil, sgerrors.NewMockIntegrityError("certificate", r.Name,
				fmt.Sprintf("referenced certificate definition %q does not exist", ref))
		}
	}
	for _, ac := range []string{r.IssuancePolicy, r.EnrollmentPolicy, r.RenewalPolicy} {
		if !accessControlPattern.MatchString(ac) {
			return nil, sgerrors.NewMockIntegrityError("certificate", r.Name,
				fmt.Sprintf("access-control string %q does not match <Action>:<PrincipalKind>=<value>", ac))
		}
	}
	rule := r
	s.rules[r.Name] = &rule
	return &rule, nil
}

// GetIssuanceRule returns the named rule.
func (s *CertificateStore) GetIssuanceRule(name string) (*IssuanceRule, error) {
	rule, ok := s.rules[name]
	if !ok {
		return nil, sgerrors.NewMockIntegrityError("certificate", name, "no such issuance rule")
	}
	return rule, nil
}

// ListTemplates returns all templates sorted by server then name.
func (s *CertificateStore) ListTemplates() []*Template {
	out := make([]*Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OwningServerAddress != out[j].OwningServerAddress {
			return out[i].OwningServerAddress < out[j].OwningServerAddress
		}
		return out[i].Name < out[j].Name
	})
	return out
}
