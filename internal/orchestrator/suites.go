package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scriptguard/scriptguard/internal/ast"
	"github.com/scriptguard/scriptguard/internal/mock"
	"github.com/scriptguard/scriptguard/internal/rules"
)

// ScriptsDirEnv points the syntax suite at the automation scripts under
// test.
const ScriptsDirEnv = "SCRIPTGUARD_SCRIPTS_DIR"

func registerBuiltinSuites(r *Runner) {
	r.Register(syntaxSuite())
	r.Register(ruleUnitSuite())
	r.Register(serviceLifecycleSuite())
	r.Register(certificateIssuanceSuite())
	r.Register(directorySuite())
}

// syntaxSuite parses every script under the configured directory and fails
// on any syntax diagnostic.
func syntaxSuite() Suite {
	dir := os.Getenv(ScriptsDirEnv)
	c := Case{Name: "scripts parse cleanly"}
	if dir == "" {
		c.Skip = ScriptsDirEnv + " not set"
	} else {
		c.Run = func(env *Env) error {
			matches, err := filepath.Glob(filepath.Join(dir, "*.ps1"))
			if err != nil {
				return err
			}
			for _, path := range matches {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				_, parseErrs := ast.Parse(path, string(data))
				if len(parseErrs) > 0 {
					return fmt.Errorf("%d syntax error(s), first: %v", len(parseErrs), parseErrs[0])
				}
			}
			return nil
		}
	}
	return Suite{Name: "script-syntax", Category: CategorySyntax, Cases: []Case{c}}
}

// ruleUnitSuite checks the baseline rules against known-good and known-bad
// fragments.
func ruleUnitSuite() Suite {
	check := func(source string, ruleID string, wantFindings int) error {
		unit, _ := ast.Parse("inline.ps1", source)
		for _, rule := range rules.Defaults(nil).Rules() {
			if rule.ID() != ruleID {
				continue
			}
			got := rule.Check(unit)
			if len(got) != wantFindings {
				return fmt.Errorf("rule %s: want %d finding(s), got %d", ruleID, wantFindings, len(got))
			}
			return nil
		}
		return fmt.Errorf("rule %s not registered", ruleID)
	}

	return Suite{
		Name:     "rule-behavior",
		Category: CategoryUnit,
		Cases: []Case{
			{
				Name: "password literal is flagged",
				Run: func(*Env) error {
					return check(`$password = "Secret1!"`, "SG001", 1)
				},
			},
			{
				Name: "security identifier is whitelisted",
				Run: func(*Env) error {
					return check(`$sid = "S-1-5-21-111-222-333-1001"`, "SG001", 0)
				},
			},
			{
				Name: "expression evaluation is flagged",
				Run: func(*Env) error {
					return check(`Invoke-Expression $cmd`, "SG003", 1)
				},
			},
			{
				Name: "plain-text credential parameter is flagged",
				Run: func(*Env) error {
					return check("param([string]$AdminPassword)", "SG002", 1)
				},
			},
		},
	}
}

// serviceLifecycleSuite drives the service state machine through the
// gateway.
func serviceLifecycleSuite() Suite {
	return Suite{
		Name:     "service-lifecycle",
		Category: CategoryIntegration,
		Cases: []Case{
			{
				Name: "start stop cycle",
				Run: func(env *Env) error {
					if _, err := env.Gateway.CreateService(mock.ServiceSpec{Name: "adfssrv"}); err != nil {
						return err
					}
					if warn, err := env.Gateway.StartService("adfssrv"); err != nil || warn != "" {
						return fmt.Errorf("first start: warn=%q err=%v", warn, err)
					}
					if warn, _ := env.Gateway.StartService("adfssrv"); warn == "" {
						return fmt.Errorf("second start should warn")
					}
					if _, err := env.Gateway.StopService("adfssrv", false); err != nil {
						return err
					}
					svc, err := env.Gateway.GetService("adfssrv")
					if err != nil {
						return err
					}
					if svc.Status != mock.StatusStopped {
						return fmt.Errorf("status = %s, want Stopped", svc.Status)
					}
					return nil
				},
			},
			{
				Name: "state does not leak between cases",
				Run: func(env *Env) error {
					if _, err := env.Gateway.GetService("adfssrv"); err == nil {
						return fmt.Errorf("service from previous case survived reset")
					}
					return nil
				},
			},
		},
	}
}

// certificateIssuanceSuite exercises the issuance chain and its referential
// integrity.
func certificateIssuanceSuite() Suite {
	const server = "sts.contoso.com"
	return Suite{
		Name:     "certificate-issuance",
		Category: CategoryIntegration,
		Cases: []Case{
			{
				Name: "definition requires authorization certificate",
				Run: func(env *Env) error {
					_, err := env.Gateway.CreateCertificateDefinition(mock.CertificateDefinition{
						Name:          "WebTLS",
						ServerAddress: server,
						TemplateName:  "WebServer",
					})
					if err == nil {
						return fmt.Errorf("definition created without authorization certificate")
					}
					return nil
				},
			},
			{
				Name: "full issuance chain",
				Run: func(env *Env) error {
					if _, _, err := env.Gateway.InstallAuthorizationCertificate(mock.AuthorizationCertificate{
						ServerAddress: server,
						Subject:       "CN=" + server,
						NotBefore:     time.Now(),
						NotAfter:      time.Now().Add(24 * time.Hour),
					}); err != nil {
						return err
					}
					if _, err := env.Gateway.CreateTemplate(mock.Template{
						Name:                "WebServer",
						OwningServerAddress: server,
						SchemaVersion:       2,
						HashAlgorithm:       "SHA256",
						KeySize:             2048,
					}); err != nil {
						return err
					}
					if _, err := env.Gateway.CreateCertificateDefinition(mock.CertificateDefinition{
						Name:          "WebTLS",
						ServerAddress: server,
						TemplateName:  "WebServer",
					}); err != nil {
						return err
					}
					_, err := env.Gateway.CreateIssuanceRule(mock.IssuanceRule{
						Name:                       "web-tls-rule",
						ServerAddress:              server,
						CertificateDefinitionNames: []string{"WebTLS"},
						IssuancePolicy:             "Allow:Group=CertAdmins",
						EnrollmentPolicy:           "Allow:User=svc-enroll",
						RenewalPolicy:              "Deny:Sid=S-1-5-21-1-2-3-500",
					})
					return err
				},
			},
		},
	}
}

// directorySuite exercises search and the event-log ring buffer.
func directorySuite() Suite {
	return Suite{
		Name:     "directory-lookup",
		Category: CategoryIntegration,
		Cases: []Case{
			{
				Name: "hierarchical search",
				Run: func(env *Env) error {
					base := "DC=contoso,DC=com"
					if _, err := env.Gateway.AddDirectoryObject(base, map[string]string{"objectClass": "domain"}); err != nil {
						return err
					}
					if _, err := env.Gateway.AddDirectoryObject("CN=svc-adfs,"+base, map[string]string{
						"objectClass": "user", "cn": "svc-adfs",
					}); err != nil {
						return err
					}
					hits, err := env.Gateway.SearchDirectory(base, "(&(objectClass=user)(cn=svc-*))")
					if err != nil {
						return err
					}
					if len(hits) != 1 {
						return fmt.Errorf("search hits = %d, want 1", len(hits))
					}
					return nil
				},
			},
			{
				Name: "event log respects max count",
				Run: func(env *Env) error {
					for i := 0; i < 5; i++ {
						env.Gateway.WriteEvent("Application", "Information", fmt.Sprintf("event %d", i))
					}
					events := env.Gateway.ReadEvents("Application", 3)
					if len(events) != 3 {
						return fmt.Errorf("events = %d, want 3", len(events))
					}
					if events[0].ID <= events[1].ID {
						return fmt.Errorf("events should be newest first")
					}
					return nil
				},
			},
		},
	}
}
