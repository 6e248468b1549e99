package services

import (
	"strings"
	"time"

	"casasmart/internal/models"
)

const unassignedTechnician = "Unassigned"

// Stage machine for installation projects:
// preparation -> installation -> programming -> qc -> handover -> completed,
// with an escape to terminated from any working stage.
// The functions only mutate the passed project; persistence is the caller's job.

func nextStage(s models.Stage) (models.Stage, bool) {
	for i, st := range models.Pipeline {
		if st == s && i+1 < len(models.Pipeline) {
			return models.Pipeline[i+1], true
		}
	}
	return "", false
}

func prevStage(s models.Stage) (models.Stage, bool) {
	for i, st := range models.Pipeline {
		if st == s && i > 0 {
			return models.Pipeline[i-1], true
		}
	}
	return "", false
}

// stageDate returns the timestamp field stamped when a project enters stage s.
func stageDate(p *models.Project, s models.Stage) **time.Time {
	switch s {
	case models.StageInstallation:
		return &p.DateInstallation
	case models.StageProgramming:
		return &p.DateProgramming
	case models.StageQC:
		return &p.DateQC
	case models.StageHandover:
		return &p.DateHandover
	case models.StageCompleted:
		return &p.DateCompleted
	case models.StageTerminated:
		return &p.DateTerminated
	}
	return nil
}

// stageTech returns the technician-of-record field for stage s.
func stageTech(p *models.Project, s models.Stage) **string {
	switch s {
	case models.StagePreparation:
		return &p.TechPreparation
	case models.StageInstallation:
		return &p.TechInstallation
	case models.StageProgramming:
		return &p.TechProgramming
	case models.StageQC:
		return &p.TechQC
	case models.StageHandover:
		return &p.TechHandover
	}
	return nil
}

func currentTechnician(p *models.Project) string {
	if p.TechnicianName == nil || strings.TrimSpace(*p.TechnicianName) == "" {
		return unassignedTechnician
	}
	return *p.TechnicianName
}

// Advance moves the project one stage forward. Leaving handover completes the
// project and needs confirmed == true.
func Advance(p *models.Project, now time.Time, confirmed bool) error {
	if p.Stage.IsFinal() {
		return ErrStageFinal
	}
	var to models.Stage
	if p.Stage == models.StageHandover {
		if !confirmed {
			return ErrConfirmationRequired
		}
		to = models.StageCompleted
	} else {
		next, ok := nextStage(p.Stage)
		if !ok {
			return ErrInvalidTransition
		}
		to = next
	}

	tech := currentTechnician(p)
	ts := now
	*stageDate(p, to) = &ts
	*stageTech(p, p.Stage) = &tech
	p.Stage = to
	return nil
}

// Retreat undoes the last Advance: it clears the date of the stage being left
// and the technician record that advance wrote.
func Retreat(p *models.Project) error {
	if p.Stage.IsFinal() {
		return ErrStageFinal
	}
	prev, ok := prevStage(p.Stage)
	if !ok {
		return ErrInvalidTransition
	}
	*stageDate(p, p.Stage) = nil
	*stageTech(p, prev) = nil
	p.Stage = prev
	return nil
}

func Terminate(p *models.Project, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if p.Stage.IsFinal() {
		return ErrStageFinal
	}
	ts := now
	p.Stage = models.StageTerminated
	p.DateTerminated = &ts
	p.TerminationReason = &reason
	return nil
}

// ReassignTechnician changes who is on the project; an empty name clears it.
func ReassignTechnician(p *models.Project, name string) error {
	if p.Stage.IsFinal() {
		return ErrStageFinal
	}
	name = strings.TrimSpace(name)
	if name == "" {
		p.TechnicianName = nil
		return nil
	}
	p.TechnicianName = &name
	return nil
}

// SetCredentials overwrites the vault bundle; no history is kept.
func SetCredentials(p *models.Project, creds models.Credentials) error {
	if p.Stage == models.StageTerminated {
		return ErrStageFinal
	}
	if strings.TrimSpace(creds.Username) == "" {
		creds.Username = "admin"
	}
	c := creds
	p.Credentials = &c
	return nil
}
