package rules

import (
	"regexp"
	"strings"
)

// Identity-shaped values are legitimate domain data in deployment scripts and
// must never be reported as secrets, however entropic they look.

var sidPattern = regexp.MustCompile(`^S-\d+-\d+(-\d+)+$`)

var dnPattern = regexp.MustCompile(`(?i)^(CN|OU|DC|O|L|C|ST)=[^,=]+(,\s*(CN|OU|DC|O|L|C|ST)=[^,=]+)+$`)

// wellKnownTemplates are certificate template names shipped with enterprise
// certificate authorities.
var wellKnownTemplates = map[string]bool{
	"Machine":                   true,
	"User":                      true,
	"WebServer":                 true,
	"DomainController":          true,
	"DomainControllerAuthentication": true,
	"KerberosAuthentication":    true,
	"SmartcardLogon":            true,
	"SmartcardUser":             true,
	"DirectoryEmailReplication": true,
	"SubCA":                     true,
	"CAExchange":                true,
	"EFS":                       true,
	"CodeSigning":               true,
	"IPSECIntermediateOffline":  true,
	"WorkstationAuthentication": true,
}

// IsSecurityIdentifier reports whether s is a well-formed hierarchical
// security identifier.
func IsSecurityIdentifier(s string) bool {
	return sidPattern.MatchString(s)
}

// IsDistinguishedName reports whether s looks like a directory distinguished
// name (at least two RDN components).
func IsDistinguishedName(s string) bool {
	return dnPattern.MatchString(s)
}

// IsKnownTemplateName reports whether s names a well-known certificate
// template.
func IsKnownTemplateName(s string) bool {
	return wellKnownTemplates[s]
}

// IsIdentityReference reports whether s matches any identity-reference shape
// that credential rules must not flag.
func IsIdentityReference(s string) bool {
	s = strings.TrimSpace(s)
	return IsSecurityIdentifier(s) || IsDistinguishedName(s) || IsKnownTemplateName(s)
}
