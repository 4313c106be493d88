package entities

// RiskLevel grades how much an instruction can change on the target site
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// AuditFinding flags one instruction of a job before it is run
type AuditFinding struct {
	Job      string    `json:"job" yaml:"job"`
	Index    int       `json:"index" yaml:"index"`
	Line     string    `json:"line" yaml:"line"`
	Selector string    `json:"selector,omitempty" yaml:"selector,omitempty"`
	Risk     RiskLevel `json:"risk" yaml:"risk"`
	Reason   string    `json:"reason" yaml:"reason"`
}
