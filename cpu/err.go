package cpu

import (
	"errors"

	"github.com/ezrec/cpuedu/translate"
)

var f = translate.From

var (
	// Image errors
	ErrProgramTooLarge = errors.New(f("program exceeds instruction memory"))

	// Assembler errors
	ErrSeparatorMissing  = errors.New(f("missing ',' between operands"))
	ErrOperandMissing    = errors.New(f("operand missing"))
	ErrEquateSyntax      = errors.New(f(".equ syntax"))
	ErrEquateDuplicate   = errors.New(f(".equ duplicated"))
	ErrLabelEmpty        = errors.New(f("label name empty"))
	ErrExpressionInvalid = errors.New(f("expression invalid"))
)

// ErrUnknownMnemonic is a token in instruction position that is not a mnemonic.
type ErrUnknownMnemonic string

func (err ErrUnknownMnemonic) Error() string {
	return f("unknown instruction '%v'", string(err))
}

// ErrInvalidRegister is a token that is not a register R0..R15.
type ErrInvalidRegister string

func (err ErrInvalidRegister) Error() string {
	return f("invalid register '%v'", string(err))
}

// ErrInvalidImmediate is a token that is not an immediate $0..$255.
type ErrInvalidImmediate string

func (err ErrInvalidImmediate) Error() string {
	return f("invalid immediate '%v'", string(err))
}

// ErrDuplicateLabel is a label declared more than once.
type ErrDuplicateLabel string

func (err ErrDuplicateLabel) Error() string {
	return f("label %v duplicated", string(err))
}

// ErrUndefinedLabel is a branch target that is never declared.
type ErrUndefinedLabel string

func (err ErrUndefinedLabel) Error() string {
	return f("label %v undefined", string(err))
}

// ErrDisplacement is a branch whose target is out of reach of a
// signed 8-bit displacement.
type ErrDisplacement struct {
	Label        string
	Displacement int
}

func (err ErrDisplacement) Error() string {
	return f("label %v displacement %d out of range [-128,127]", err.Label, err.Displacement)
}

// ErrSyntax locates an assembler error in the source text.
type ErrSyntax struct {
	LineNo int    // Source line, from 1.
	Token  int    // Token position in the source, from 1.
	Word   string // Offending token, if any.
	Err    error
}

func (err ErrSyntax) Error() string {
	if len(err.Word) == 0 {
		return f("line %d token %d: %v", err.LineNo, err.Token, err.Err)
	}
	return f("line %d token %d '%v': %v", err.LineNo, err.Token, err.Word, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrExpression is a $(...) expression that could not be evaluated.
type ErrExpression struct {
	Expr string
	Err  error
}

func (err ErrExpression) Error() string {
	return f("$(%v) is not a valid expression: %v", err.Expr, err.Err)
}

func (err ErrExpression) Unwrap() error {
	return err.Err
}
