package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptguard/scriptguard/internal/mock"
)

func TestMockGatewayImplementsGateway(t *testing.T) {
	var _ Gateway = NewMockGateway(mock.NewStore())
}

func TestMockGatewayDelegatesToStore(t *testing.T) {
	store := mock.NewStore()
	gw := NewMockGateway(store)
	assert.Same(t, store, gw.Store())

	_, err := gw.CreateService(mock.ServiceSpec{Name: "adfssrv"})
	require.NoError(t, err)
	warning, err := gw.StartService("adfssrv")
	require.NoError(t, err)
	assert.Empty(t, warning)

	// Changes made through the gateway are visible on the raw store.
	svc, err := store.Services.Get("adfssrv")
	require.NoError(t, err)
	assert.Equal(t, mock.StatusRunning, svc.Status)

	_, _, err = gw.InstallAuthorizationCertificate(mock.AuthorizationCertificate{ServerAddress: "sts.contoso.com"})
	require.NoError(t, err)
	def, err := gw.CreateCertificateDefinition(mock.CertificateDefinition{
		Name:          "web-tls",
		ServerAddress: "sts.contoso.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, def.AuthorizationCertificateID)

	_, err = gw.AddDirectoryObject("DC=contoso,DC=com", map[string]string{"objectClass": "domain"})
	require.NoError(t, err)
	found, err := gw.SearchDirectory("", "(objectClass=domain)")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	entry := gw.WriteEvent("Security", "Information", "gateway write")
	events := gw.ReadEvents("Security", 0)
	require.Len(t, events, 1)
	assert.Equal(t, entry.ID, events[0].ID)
}

func TestIndependentGatewaysDoNotShareState(t *testing.T) {
	a := NewMockGateway(mock.NewStore())
	b := NewMockGateway(mock.NewStore())

	_, err := a.CreateService(mock.ServiceSpec{Name: "adfssrv"})
	require.NoError(t, err)

	_, err = b.GetService("adfssrv")
	assert.Error(t, err)
}
