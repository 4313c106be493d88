package security

import (
	"fmt"
	"strings"

	"workflow_automation/domain/entities"
	"workflow_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	destructiveKeywords = []string{
		"delete", "remove", "удалить", "удаление", "删除",
		"cancel", "отменить", "отмена", "取消",
		"clear", "очистить",
		"reset", "сброс", "重置",
		"trash", "корзина",
	}

	paymentKeywords = []string{
		"payment", "checkout", "оплата", "платеж", "支付",
		"order", "заказ", "purchase", "покупка", "buy", "купить", "购买",
	}

	sensitiveKeywords = []string{
		"password", "passwd", "pwd", "пароль", "密码", "token", "secret", "card", "cvv",
	}
)

type SecurityLayer struct {
	logger *logrus.Logger
}

func NewSecurityLayer(logger *logrus.Logger) *SecurityLayer {
	return &SecurityLayer{
		logger: logger,
	}
}

// AuditJob walks a job the way the engine would, tracking the last located
// selector, and reports every instruction above low risk
func (s *SecurityLayer) AuditJob(job *entities.Job) []entities.AuditFinding {
	var findings []entities.AuditFinding
	var selector string

	for i, inst := range job.Instructions() {
		if inst.Kind() == entities.InstructionLocate {
			selector = inst.Argument()
			continue
		}

		risk := s.RiskLevel(inst, selector)
		if risk == entities.RiskLow {
			continue
		}
		findings = append(findings, entities.AuditFinding{
			Job:      job.Name(),
			Index:    i,
			Line:     strings.TrimSpace(inst.RawText()),
			Selector: selector,
			Risk:     risk,
			Reason:   s.reason(inst, selector, risk),
		})
	}

	if len(findings) > 0 {
		s.logger.Debugf("Audit of job %q: %d findings", job.Name(), len(findings))
	}
	return findings
}

func (s *SecurityLayer) RiskLevel(inst entities.Instruction, selector string) entities.RiskLevel {
	switch inst.Kind() {
	case entities.InstructionClick:
		if s.isDestructive(selector) || s.isPayment(selector) {
			return entities.RiskHigh
		}
		return entities.RiskMedium

	case entities.InstructionSendText:
		if containsAny(selector, sensitiveKeywords) {
			return entities.RiskMedium
		}
		return entities.RiskLow
	}

	return entities.RiskLow
}

func (s *SecurityLayer) reason(inst entities.Instruction, selector string, risk entities.RiskLevel) string {
	switch {
	case inst.Kind() == entities.InstructionClick && s.isDestructive(selector):
		return fmt.Sprintf("click on %q looks destructive", selector)
	case inst.Kind() == entities.InstructionClick && s.isPayment(selector):
		return fmt.Sprintf("click on %q looks like a payment or order", selector)
	case inst.Kind() == entities.InstructionClick && selector == "":
		return "click before any element is located"
	case inst.Kind() == entities.InstructionClick:
		return fmt.Sprintf("click on %q", selector)
	case inst.Kind() == entities.InstructionSendText:
		return fmt.Sprintf("text sent to sensitive field %q", selector)
	}
	return string(risk)
}

func (s *SecurityLayer) isDestructive(selector string) bool {
	return containsAny(selector, destructiveKeywords)
}

func (s *SecurityLayer) isPayment(selector string) bool {
	return containsAny(selector, paymentKeywords)
}

func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Ensure SecurityLayer implements InstructionAuditor interface
var _ interfaces.InstructionAuditor = (*SecurityLayer)(nil)
