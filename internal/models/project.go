package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StagePreparation  Stage = "preparation"
	StageInstallation Stage = "installation"
	StageProgramming  Stage = "programming"
	StageQC           Stage = "qc"
	StageHandover     Stage = "handover"
	StageCompleted    Stage = "completed"
	StageTerminated   Stage = "terminated"
)

// Pipeline is the fixed order of the working stages.
var Pipeline = []Stage{StagePreparation, StageInstallation, StageProgramming, StageQC, StageHandover}

func (s Stage) IsFinal() bool {
	return s == StageCompleted || s == StageTerminated
}

func (s Stage) Valid() bool {
	switch s {
	case StagePreparation, StageInstallation, StageProgramming, StageQC, StageHandover,
		StageCompleted, StageTerminated:
		return true
	}
	return false
}

// Credentials is the vault bundle handed to the customer after handover.
type Credentials struct {
	HAURL    string `json:"ha_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	WifiSSID string `json:"wifi_ssid"`
	WifiPass string `json:"wifi_pass"`
}

func (c Credentials) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Credentials) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return errors.New("credentials: unsupported column type")
	}
}

type Project struct {
	ID             uuid.UUID `json:"id"`
	QuoteID        uuid.UUID `json:"quote_id"`
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone"`
	ProjectType    string    `json:"project_type"`
	TechnicianName *string   `json:"technician_name,omitempty"`
	Stage          Stage     `json:"status"`

	DateInstallation *time.Time `json:"date_installation,omitempty"`
	DateProgramming  *time.Time `json:"date_programming,omitempty"`
	DateQC           *time.Time `json:"date_qc,omitempty"`
	DateHandover     *time.Time `json:"date_handover,omitempty"`
	DateCompleted    *time.Time `json:"date_completed,omitempty"`
	DateTerminated   *time.Time `json:"date_terminated,omitempty"`

	TechPreparation  *string `json:"tech_preparation,omitempty"`
	TechInstallation *string `json:"tech_installation,omitempty"`
	TechProgramming  *string `json:"tech_programming,omitempty"`
	TechQC           *string `json:"tech_qc,omitempty"`
	TechHandover     *string `json:"tech_handover,omitempty"`

	TerminationReason *string      `json:"termination_reason,omitempty"`
	Credentials       *Credentials `json:"credentials,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
}

type ProjectFilter struct {
	Stages []Stage
	Phones []string
	Limit  int
	Offset int
}
