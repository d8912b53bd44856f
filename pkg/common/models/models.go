package models

import (
	"time"
)

// PatientInput is one submission of the diagnostic form. JSON names follow
// the dataset column names.
type PatientInput struct {
	Gender        string  `json:"Gender"`
	Age           int     `json:"Age"`
	Height        float64 `json:"Height"` // meters
	Weight        float64 `json:"Weight"` // kilograms
	FamilyHistory string  `json:"family_history"`
	FAVC          string  `json:"FAVC"`
	FCVC          int     `json:"FCVC"`
	NCP           int     `json:"NCP"`
	CAEC          string  `json:"CAEC"`
	SMOKE         string  `json:"SMOKE"`
	CH2O          int     `json:"CH2O"`
	SCC           string  `json:"SCC"`
	FAF           int     `json:"FAF"`
	TUE           int     `json:"TUE"`
	CALC          string  `json:"CALC"`
	MTRANS        string  `json:"MTRANS"`
}

// DiagnosisResult is the decoded output of one pipeline invocation.
type DiagnosisResult struct {
	ID            string             `json:"id"`
	Label         string             `json:"label"`
	Code          int                `json:"code"`
	IMC           float64            `json:"imc"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
	Latency       time.Duration      `json:"-"`
	LatencyMs     float64            `json:"latency_ms"`
	CreatedAt     time.Time          `json:"created_at"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventDiagnosisCompleted = "diagnosis.completed"
	EventDiagnosisFailed    = "diagnosis.failed"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind"`
	Fields map[string]string `json:"fields,omitempty"`
}
