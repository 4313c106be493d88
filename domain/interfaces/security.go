package interfaces

import "workflow_automation/domain/entities"

// InstructionAuditor grades workflow instructions before they reach a browser
type InstructionAuditor interface {
	// AuditJob returns findings for instructions above low risk
	AuditJob(job *entities.Job) []entities.AuditFinding

	// RiskLevel grades a single instruction given the selector it acts on
	RiskLevel(inst entities.Instruction, selector string) entities.RiskLevel
}
