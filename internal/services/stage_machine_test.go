package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casasmart/internal/models"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newProject(stage models.Stage) *models.Project {
	return &models.Project{Stage: stage, CustomerName: "Ahmed", CustomerPhone: "0598904919"}
}

func strPtr(s string) *string { return &s }

func TestAdvance_WalksThePipeline(t *testing.T) {
	p := newProject(models.StagePreparation)
	p.TechnicianName = strPtr("Khalid")

	want := []models.Stage{models.StageInstallation, models.StageProgramming, models.StageQC, models.StageHandover}
	for i, stage := range want {
		require.NoError(t, Advance(p, t0.Add(time.Duration(i)*time.Hour), false))
		assert.Equal(t, stage, p.Stage)
	}

	require.NotNil(t, p.DateInstallation)
	assert.Equal(t, t0, *p.DateInstallation)
	require.NotNil(t, p.DateHandover)
	assert.Equal(t, t0.Add(3*time.Hour), *p.DateHandover)

	// техник записан на стадию, которую покинули
	require.NotNil(t, p.TechPreparation)
	assert.Equal(t, "Khalid", *p.TechPreparation)
	require.NotNil(t, p.TechQC)
	assert.Nil(t, p.TechHandover)
}

func TestAdvance_UnassignedTechnician(t *testing.T) {
	p := newProject(models.StageInstallation)
	p.TechnicianName = strPtr("  ")

	require.NoError(t, Advance(p, t0, false))
	require.NotNil(t, p.TechInstallation)
	assert.Equal(t, "Unassigned", *p.TechInstallation)
}

func TestAdvance_FromHandoverNeedsConfirmation(t *testing.T) {
	p := newProject(models.StageHandover)
	p.TechnicianName = strPtr("Omar")

	err := Advance(p, t0, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, models.StageHandover, p.Stage)
	assert.Nil(t, p.DateCompleted)

	require.NoError(t, Advance(p, t0, true))
	assert.Equal(t, models.StageCompleted, p.Stage)
	require.NotNil(t, p.DateCompleted)
	assert.Equal(t, t0, *p.DateCompleted)
	require.NotNil(t, p.TechHandover)
	assert.Equal(t, "Omar", *p.TechHandover)
}

func TestFinalStagesRejectEveryTransition(t *testing.T) {
	for _, stage := range []models.Stage{models.StageCompleted, models.StageTerminated} {
		t.Run(string(stage), func(t *testing.T) {
			p := newProject(stage)
			assert.ErrorIs(t, Advance(p, t0, true), ErrStageFinal)
			assert.ErrorIs(t, Retreat(p), ErrStageFinal)
			assert.ErrorIs(t, Terminate(p, "late", t0), ErrStageFinal)
			assert.ErrorIs(t, ReassignTechnician(p, "Omar"), ErrStageFinal)
			assert.Equal(t, stage, p.Stage)
		})
	}
}

func TestRetreat_IsInverseOfAdvance(t *testing.T) {
	for _, stage := range models.Pipeline[:len(models.Pipeline)-1] {
		t.Run(string(stage), func(t *testing.T) {
			p := newProject(stage)
			p.TechnicianName = strPtr("Khalid")
			before := *p

			require.NoError(t, Advance(p, t0, false))
			require.NoError(t, Retreat(p))
			assert.Equal(t, before, *p)
		})
	}
}

func TestRetreat_FromPreparationIsRejected(t *testing.T) {
	p := newProject(models.StagePreparation)
	assert.ErrorIs(t, Retreat(p), ErrInvalidTransition)
	assert.Equal(t, models.StagePreparation, p.Stage)
}

func TestTerminate_FromEveryWorkingStage(t *testing.T) {
	for _, stage := range models.Pipeline {
		t.Run(string(stage), func(t *testing.T) {
			p := newProject(stage)

			err := Terminate(p, "   ", t0)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, stage, p.Stage)

			require.NoError(t, Terminate(p, "client cancelled", t0))
			assert.Equal(t, models.StageTerminated, p.Stage)
			require.NotNil(t, p.DateTerminated)
			require.NotNil(t, p.TerminationReason)
			assert.Equal(t, "client cancelled", *p.TerminationReason)
		})
	}
}

// qc: пустая причина отклоняется, непустая завершает проект
func TestTerminate_ScenarioFromQC(t *testing.T) {
	p := newProject(models.StageQC)

	assert.ErrorIs(t, Terminate(p, "", t0), ErrReasonRequired)
	assert.Nil(t, p.DateTerminated)

	require.NoError(t, Terminate(p, "client cancelled", t0))
	assert.Equal(t, models.StageTerminated, p.Stage)
	assert.Equal(t, t0, *p.DateTerminated)
}

func TestReassignTechnician(t *testing.T) {
	p := newProject(models.StageProgramming)

	require.NoError(t, ReassignTechnician(p, " Fahad "))
	require.NotNil(t, p.TechnicianName)
	assert.Equal(t, "Fahad", *p.TechnicianName)
	assert.Equal(t, models.StageProgramming, p.Stage)

	require.NoError(t, ReassignTechnician(p, ""))
	assert.Nil(t, p.TechnicianName)
}

func TestSetCredentials(t *testing.T) {
	p := newProject(models.StageHandover)
	require.NoError(t, SetCredentials(p, models.Credentials{HAURL: "http://ha.local", Password: "x"}))
	require.NotNil(t, p.Credentials)
	assert.Equal(t, "admin", p.Credentials.Username)

	// перезапись целиком
	require.NoError(t, SetCredentials(p, models.Credentials{Username: "owner", WifiSSID: "Villa"}))
	assert.Equal(t, models.Credentials{Username: "owner", WifiSSID: "Villa"}, *p.Credentials)

	done := newProject(models.StageCompleted)
	assert.NoError(t, SetCredentials(done, models.Credentials{Username: "owner"}))

	dead := newProject(models.StageTerminated)
	assert.ErrorIs(t, SetCredentials(dead, models.Credentials{}), ErrStageFinal)
}
