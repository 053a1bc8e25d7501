package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgerrors "github.com/scriptguard/scriptguard/pkg/shared/errors"
)

func TestServiceCreateDefaults(t *testing.T) {
	s := NewServiceStore()

	svc, err := s.Create(ServiceSpec{Name: "adfssrv"})
	require.NoError(t, err)
	assert.Equal(t, "adfssrv", svc.DisplayName)
	assert.Equal(t, StatusStopped, svc.Status)
	assert.Equal(t, StartManual, svc.StartType)
	assert.True(t, svc.CanStop)

	_, err = s.Create(ServiceSpec{Name: "adfssrv"})
	var integrity *sgerrors.MockIntegrityError
	require.ErrorAs(t, err, &integrity)

	_, err = s.Create(ServiceSpec{})
	assert.Error(t, err)
}

func TestServiceStartStopCycle(t *testing.T) {
	s := NewServiceStore()
	_, err := s.Create(ServiceSpec{Name: "adfssrv"})
	require.NoError(t, err)

	warning, err := s.Start("adfssrv")
	require.NoError(t, err)
	assert.Empty(t, warning)

	svc, err := s.Get("adfssrv")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, svc.Status)

	// Second start is a warning, not an error.
	warning, err = s.Start("adfssrv")
	require.NoError(t, err)
	assert.Contains(t, warning, "already running")

	warning, err = s.Stop("adfssrv", false)
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, StatusStopped, svc.Status)

	warning, err = s.Stop("adfssrv", false)
	require.NoError(t, err)
	assert.Contains(t, warning, "already stopped")
}

func TestServicePauseResume(t *testing.T) {
	s := NewServiceStore()
	_, err := s.Create(ServiceSpec{Name: "drs", Status: StatusRunning})
	require.NoError(t, err)

	require.NoError(t, s.Pause("drs"))
	svc, _ := s.Get("drs")
	assert.Equal(t, StatusPaused, svc.Status)

	// Paused services cannot be paused again.
	assert.Error(t, s.Pause("drs"))

	warning, err := s.Start("drs")
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, StatusRunning, svc.Status)

	// Stopped services cannot be paused.
	_, err = s.Create(ServiceSpec{Name: "idle"})
	require.NoError(t, err)
	assert.Error(t, s.Pause("idle"))
}

func TestServiceDisabledCannotStart(t *testing.T) {
	s := NewServiceStore()
	_, err := s.Create(ServiceSpec{Name: "legacy", StartType: StartDisabled})
	require.NoError(t, err)

	_, err = s.Start("legacy")
	var integrity *sgerrors.MockIntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "legacy", integrity.EntityID)
}

func TestServiceStopNeedsForceWhenNotStoppable(t *testing.T) {
	s := NewServiceStore()
	_, err := s.Create(ServiceSpec{Name: "protected", Status: StatusRunning, NotStoppable: true})
	require.NoError(t, err)

	_, err = s.Stop("protected", false)
	assert.Error(t, err)

	_, err = s.Stop("protected", true)
	require.NoError(t, err)
	svc, _ := s.Get("protected")
	assert.Equal(t, StatusStopped, svc.Status)
}

func TestServiceSetStartupType(t *testing.T) {
	s := NewServiceStore()
	_, err := s.Create(ServiceSpec{Name: "adfssrv", Status: StatusRunning})
	require.NoError(t, err)

	require.NoError(t, s.SetStartupType("adfssrv", StartAutomatic))
	svc, _ := s.Get("adfssrv")
	assert.Equal(t, StartAutomatic, svc.StartType)
	// Runtime status is untouched.
	assert.Equal(t, StatusRunning, svc.Status)

	assert.Error(t, s.SetStartupType("adfssrv", StartType("Sometimes")))
	assert.Error(t, s.SetStartupType("missing", StartManual))
}

func TestServiceListSortedAndRemove(t *testing.T) {
	s := NewServiceStore()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Create(ServiceSpec{Name: name})
		require.NoError(t, err)
	}

	var names []string
	for _, svc := range s.List() {
		names = append(names, svc.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	require.NoError(t, s.Remove("mid"))
	assert.Len(t, s.List(), 2)
	assert.Error(t, s.Remove("mid"))
}
