package entities

import "strings"

// InstructionKind represents the type of directive a workflow line carries
type InstructionKind int

const (
	InstructionLocate InstructionKind = iota
	InstructionSendText
	InstructionClick
	InstructionLoopStart
	InstructionLoopEnd
)

// grammar lists the recognized prefixes in matching priority order
var grammar = []struct {
	kind   InstructionKind
	prefix string
}{
	{InstructionLocate, "@loc"},
	{InstructionSendText, "@send"},
	{InstructionClick, "@click"},
	{InstructionLoopStart, "@loop"},
	{InstructionLoopEnd, "@end"},
}

// String returns the source prefix of the kind
func (k InstructionKind) String() string {
	for _, g := range grammar {
		if g.kind == k {
			return g.prefix
		}
	}
	return "@unknown"
}

// TakesArgument reports whether the kind carries a payload
func (k InstructionKind) TakesArgument() bool {
	return k == InstructionLocate || k == InstructionSendText
}

// Instruction represents one parsed directive of a job
type Instruction struct {
	kind     InstructionKind
	argument string
	rawText  string
}

// NewInstruction builds an instruction from its parts. Argument is dropped
// for kinds that take none.
func NewInstruction(kind InstructionKind, argument, rawText string) Instruction {
	if !kind.TakesArgument() {
		argument = ""
	}
	return Instruction{kind: kind, argument: argument, rawText: rawText}
}

func (i Instruction) Kind() InstructionKind { return i.kind }

// Argument is the selector for @loc and the text for @send
func (i Instruction) Argument() string { return i.argument }

// RawText is the source line as it appeared in the workflow
func (i Instruction) RawText() string { return i.rawText }

// String renders the canonical source form
func (i Instruction) String() string {
	if i.kind.TakesArgument() {
		return i.kind.String() + " " + i.argument
	}
	return i.kind.String()
}

// ParseInstruction converts one workflow line into an Instruction.
//
// The line is trimmed, then matched against the prefixes in priority order.
// Exactly one "<prefix> " is stripped from the front to form the argument, so
// extra spaces after the prefix stay part of it.
func ParseInstruction(line string) (Instruction, error) {
	text := strings.TrimSpace(line)

	for _, g := range grammar {
		if !strings.HasPrefix(text, g.prefix) {
			continue
		}
		argument := strings.TrimPrefix(text, g.prefix+" ")
		if text == g.prefix {
			argument = ""
		}
		return NewInstruction(g.kind, argument, line), nil
	}

	return Instruction{}, &ParseError{Line: line}
}
