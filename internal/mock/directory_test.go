package mock

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDirectory(t *testing.T) *DirectoryStore {
	t.Helper()
	s := NewDirectoryStore()
	entries := []struct {
		dn    string
		props map[string]string
	}{
		{"DC=contoso,DC=com", map[string]string{"objectClass": "domain"}},
		{"OU=Service Accounts,DC=contoso,DC=com", map[string]string{"objectClass": "organizationalUnit"}},
		{"CN=svc-adfs,OU=Service Accounts,DC=contoso,DC=com", map[string]string{"objectClass": "user", "cn": "svc-adfs"}},
		{"CN=svc-drs,OU=Service Accounts,DC=contoso,DC=com", map[string]string{"objectClass": "user", "cn": "svc-drs"}},
		{"CN=jdoe,DC=contoso,DC=com", map[string]string{"objectClass": "user", "cn": "jdoe"}},
	}
	for _, e := range entries {
		_, err := s.Add(e.dn, e.props)
		require.NoError(t, err)
	}
	return s
}

func TestDirectoryAddGetRemove(t *testing.T) {
	s := NewDirectoryStore()

	obj, err := s.Add("CN=a, DC=contoso, DC=com", map[string]string{"ObjectClass": "user"})
	require.NoError(t, err)
	assert.Equal(t, "CN=a,DC=contoso,DC=com", obj.DN)
	// Property keys are normalized to lower case.
	assert.Equal(t, "user", obj.Properties["objectclass"])

	_, err = s.Add("CN=a,DC=contoso,DC=com", nil)
	assert.Error(t, err)
	_, err = s.Add("", nil)
	assert.Error(t, err)

	got, err := s.Get("cn=a,dc=contoso,dc=com")
	assert.Error(t, err) // DN comparison is case-sensitive
	got, err = s.Get("CN=a, DC=contoso, DC=com")
	require.NoError(t, err)
	assert.Equal(t, obj, got)

	require.NoError(t, s.Remove("CN=a,DC=contoso,DC=com"))
	assert.Error(t, s.Remove("CN=a,DC=contoso,DC=com"))
}

func TestDirectoryRemoveRefusesWithChildren(t *testing.T) {
	s := seedDirectory(t)

	err := s.Remove("OU=Service Accounts,DC=contoso,DC=com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "children")

	require.NoError(t, s.Remove("CN=svc-adfs,OU=Service Accounts,DC=contoso,DC=com"))
	require.NoError(t, s.Remove("CN=svc-drs,OU=Service Accounts,DC=contoso,DC=com"))
	require.NoError(t, s.Remove("OU=Service Accounts,DC=contoso,DC=com"))
}

func TestDirectorySearchFilters(t *testing.T) {
	s := seedDirectory(t)

	tests := []struct {
		name   string
		base   string
		filter string
		want   int
	}{
		{"all users", "", "(objectClass=user)", 3},
		{"scoped to OU", "OU=Service Accounts,DC=contoso,DC=com", "(objectClass=user)", 2},
		{"and with wildcard", "", "(&(objectClass=user)(cn=svc-*))", 2},
		{"or", "", "(|(cn=jdoe)(cn=svc-adfs))", 2},
		{"negation", "", "(&(objectClass=user)(!(cn=svc-*)))", 1},
		{"missing attribute", "", "(mail=*)", 0},
		{"no match", "", "(cn=nobody)", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(tt.base, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestDirectorySearchResultsSortedByDN(t *testing.T) {
	s := seedDirectory(t)
	got, err := s.Search("", "(objectClass=user)")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].DN, got[i].DN)
	}
}

func TestDirectorySearchRejectsMalformedFilters(t *testing.T) {
	s := seedDirectory(t)
	for _, bad := range []string{
		"",
		"objectClass=user",
		"(objectClass=user",
		"(&)",
		"(=value)",
		"(objectClass=user)(cn=jdoe)",
	} {
		_, err := s.Search("", bad)
		assert.Error(t, err, "filter %q", bad)
	}
}

func TestEventLogNewestFirstAndCapped(t *testing.T) {
	s := NewDirectoryStore()
	for i := 1; i <= eventLogCapacity+10; i++ {
		s.AppendEvent("Security", "Information", fmt.Sprintf("event %d", i))
	}
	s.AppendEvent("Application", "Error", "unrelated log")

	// The Application entry evicted one more Security entry from the ring.
	all := s.Events("Security", 0)
	require.Len(t, all, eventLogCapacity-1)
	// Newest first, monotonic IDs.
	assert.Equal(t, eventLogCapacity+10, all[0].ID)
	assert.Greater(t, all[0].ID, all[1].ID)

	top := s.Events("Security", 3)
	require.Len(t, top, 3)
	assert.Equal(t, fmt.Sprintf("event %d", eventLogCapacity+10), top[0].Message)

	assert.Len(t, s.Events("Application", 0), 1)
	assert.Empty(t, s.Events("System", 0))
}

func TestStoreResetClearsEverything(t *testing.T) {
	store := NewStore()
	_, err := store.Services.Create(ServiceSpec{Name: "adfssrv"})
	require.NoError(t, err)
	_, _, err = store.Certificates.InstallAuthorizationCertificate(AuthorizationCertificate{ServerAddress: stsServer})
	require.NoError(t, err)
	_, err = store.Directory.Add("DC=contoso,DC=com", nil)
	require.NoError(t, err)
	store.Directory.AppendEvent("Security", "Information", "before reset")

	store.Reset()

	assert.Empty(t, store.Services.List())
	_, err = store.Certificates.GetAuthorizationCertificate(stsServer)
	assert.Error(t, err)
	_, err = store.Directory.Get("DC=contoso,DC=com")
	assert.Error(t, err)
	assert.Empty(t, store.Directory.Events("Security", 0))

	// IDs restart after a reset.
	entry := store.Directory.AppendEvent("Security", "Information", "after reset")
	assert.Equal(t, 1, entry.ID)
}
