// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Label is a named instruction memory address.
type Label struct {
	Name string
	Addr uint16
}

// Symbol is a branch operand waiting for its label to be resolved.
type Symbol struct {
	Name   string
	Addr   uint16 // Address of the displacement byte.
	Opcode int    // Index of the branch in the opcode list.
}

// Assembler is a two pass assembler for the instruction set.
//
// The first pass tokenizes the source, encodes every instruction and
// records labels and branch symbols. The second pass patches each branch
// displacement from the label table.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.
	Label   []Label  // Labels, in order of declaration.
	Symbol  []Symbol // Pending branch symbols.

	Equate map[string]string // Map of equates.

	predefine  map[string]string // Predefines
	labelIndex map[string]int    // Label name to index in Label.
}

// Predefine defines a new equate or redefines an existing equate,
// applied at the start of every Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// token is a single word of source text.
type token struct {
	Word   string
	LineNo int
	Index  int
}

// tokenizer splits source text into tokens, one line at a time, so that
// equates declared on earlier lines apply to expressions on later lines.
type tokenizer struct {
	asm     *Assembler
	scanner *bufio.Scanner
	lineno  int
	count   int
	words   []token
	last    token
}

var reExpression = regexp.MustCompile(`\$\([^\$]*\)`)

// stripComment drops the first word starting or ending in ';', and
// the rest of the line after it.
func stripComment(line string) string {
	start := -1
	for n := 0; n <= len(line); n++ {
		space := n == len(line) || line[n] == ' ' || line[n] == '\t' || line[n] == '\r'
		switch {
		case !space && start < 0:
			start = n
		case space && start >= 0:
			if line[start] == ';' || line[n-1] == ';' {
				return line[:start]
			}
			start = -1
		}
	}

	return line
}

// split breaks a line into words. Commas are words of their own.
func split(line string) (words []string) {
	for _, field := range strings.Fields(line) {
		for len(field) > 0 {
			comma := strings.IndexByte(field, ',')
			if comma < 0 {
				words = append(words, field)
				break
			}
			if comma > 0 {
				words = append(words, field[:comma])
			}
			words = append(words, ",")
			field = field[comma+1:]
		}
	}

	return
}

func (tk *tokenizer) fill() (err error) {
	for len(tk.words) == 0 && tk.scanner.Scan() {
		text := tk.scanner.Text()
		tk.lineno++

		if tk.asm.Verbose {
			log.Printf("asm: %v: %v", tk.lineno, text)
		}

		text = stripComment(text)

		// Do $() evaluations
		text = reExpression.ReplaceAllStringFunc(text, func(str string) string {
			value, _err := tk.asm.parenEval(str[2 : len(str)-1])
			if _err != nil && err == nil {
				err = _err
			}
			return fmt.Sprintf("$%d", value)
		})
		if err != nil {
			tk.last = token{LineNo: tk.lineno, Index: tk.count + 1}
			return
		}

		for _, word := range split(text) {
			tk.count++
			tk.words = append(tk.words, token{Word: word, LineNo: tk.lineno, Index: tk.count})
		}
	}

	return tk.scanner.Err()
}

// next returns the next token, or ok == false at the end of input.
func (tk *tokenizer) next() (tok token, ok bool, err error) {
	err = tk.fill()
	if err != nil {
		return
	}

	if len(tk.words) == 0 {
		return
	}

	tok = tk.words[0]
	tk.words = tk.words[1:]
	tk.last = tok
	ok = true
	return
}

// require returns the next token, failing if the input has ended.
func (tk *tokenizer) require() (tok token, err error) {
	tok, ok, err := tk.next()
	if err != nil {
		return
	}
	if !ok {
		err = ErrSyntax{LineNo: tk.last.LineNo, Token: tk.last.Index, Word: tk.last.Word, Err: ErrOperandMissing}
	}
	return
}

// substitute replaces an equate name by its value.
func (asm *Assembler) substitute(word string) string {
	value, ok := asm.Equate[word]
	if ok {
		return value
	}
	return word
}

// parseNumber parses a decimal, or a 0x, 0b or 0o prefixed number.
func parseNumber(text string, bits int) (value uint64, err error) {
	base := 10
	if len(text) > 2 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X', 'b', 'B', 'o', 'O':
			base = 0
		}
	}

	return strconv.ParseUint(text, base, bits)
}

// parseRegister parses R0..R15.
func parseRegister(word string) (reg uint8, err error) {
	if len(word) < 2 || word[0] != 'R' {
		err = ErrInvalidRegister(word)
		return
	}

	for _, c := range word[1:] {
		if c < '0' || c > '9' {
			err = ErrInvalidRegister(word)
			return
		}
	}

	value, err := strconv.ParseUint(word[1:], 10, 8)
	if err != nil || value > 15 {
		err = ErrInvalidRegister(word)
		return
	}

	reg = uint8(value)
	return
}

// parseImmediate parses $0..$255.
func parseImmediate(word string) (imm uint8, err error) {
	if len(word) < 2 || word[0] != '$' {
		err = ErrInvalidImmediate(word)
		return
	}

	value, err := parseNumber(word[1:], 8)
	if err != nil {
		err = ErrInvalidImmediate(word)
		return
	}

	imm = uint8(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	defer func() {
		if err != nil {
			err = ErrExpression{Expr: expr, Err: err}
		}
	}()

	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, _err := parseNumber(strings.TrimPrefix(str, "$"), 64)
		if _err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeUint64(v64)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrExpressionInvalid
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrExpressionInvalid
		return
	}

	return
}

// currentIp gets the current emission offset.
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + last.Code.Width()
}

// reset clears the tables of a previous run.
func (asm *Assembler) reset() {
	asm.Opcode = asm.Opcode[:0]
	asm.Label = asm.Label[:0]
	asm.Symbol = asm.Symbol[:0]
	asm.labelIndex = make(map[string]int)
	asm.Equate = maps.Clone(asm.predefine)
	if asm.Equate == nil {
		asm.Equate = make(map[string]string)
	}
}

// Parse assembles an input stream into a Program.
// Any error means no program was produced.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	asm.reset()

	tk := &tokenizer{
		asm:     asm,
		scanner: bufio.NewScanner(input),
	}

	// Pass 1
	for {
		var tok token
		var ok bool
		tok, ok, err = tk.next()
		if err != nil {
			err = asm.locate(tk.last, err)
			return
		}
		if !ok {
			break
		}

		err = asm.parseToken(tk, tok)
		if err != nil {
			err = asm.locate(tok, err)
			return
		}
	}

	// Pass 2
	err = asm.link()
	if err != nil {
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Labels:  slices.Clone(asm.Label),
	}

	return
}

// locate wraps an error with its source position, unless it already has one.
func (asm *Assembler) locate(tok token, err error) error {
	var located ErrSyntax
	if errors.As(err, &located) {
		return err
	}
	return ErrSyntax{LineNo: tok.LineNo, Token: tok.Index, Word: tok.Word, Err: err}
}

// parseToken handles one token in instruction position, consuming
// the operands that follow it.
func (asm *Assembler) parseToken(tk *tokenizer, tok token) (err error) {
	word := tok.Word

	// .equ NAME VALUE
	if word == ".equ" {
		var name, value token
		name, err = tk.require()
		if err != nil {
			return
		}
		value, err = tk.require()
		if err != nil {
			return
		}
		if name.Word == "," || value.Word == "," {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[name.Word]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[name.Word] = asm.substitute(value.Word)
		return
	}

	// label:
	if strings.HasSuffix(word, ":") {
		name := strings.TrimSuffix(word, ":")
		if len(name) == 0 {
			err = ErrLabelEmpty
			return
		}
		_, ok := asm.labelIndex[name]
		if ok {
			err = ErrDuplicateLabel(name)
			return
		}
		asm.labelIndex[name] = len(asm.Label)
		asm.Label = append(asm.Label, Label{Name: name, Addr: uint16(asm.currentIp())})
		if asm.Verbose {
			log.Printf("asm: label %v = 0x%04x", name, asm.currentIp())
		}
		return
	}

	mnemonic := asm.substitute(word)
	enc, ok := LookupMnemonic(mnemonic)
	if !ok {
		err = ErrUnknownMnemonic(word)
		return
	}

	ip := asm.currentIp()
	if ip+enc.Width > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	opcode := Opcode{LineNo: tok.LineNo, Ip: ip, Words: []string{mnemonic}}
	code := Code{Op: enc.Op}

	var operand token
	if enc.Dest {
		operand, err = tk.require()
		if err != nil {
			return
		}
		word := asm.substitute(operand.Word)
		code.Dest, err = parseRegister(word)
		if err != nil {
			return asm.locate(operand, err)
		}
		opcode.Words = append(opcode.Words, word)
	}

	switch enc.Operand {
	case OPERAND_REGISTER, OPERAND_IMMEDIATE:
		operand, err = tk.require()
		if err != nil {
			return
		}
		if operand.Word != "," {
			return asm.locate(operand, ErrSeparatorMissing)
		}
		operand, err = tk.require()
		if err != nil {
			return
		}
		word := asm.substitute(operand.Word)
		if enc.Operand == OPERAND_REGISTER {
			code.Operand, err = parseRegister(word)
		} else {
			code.Operand, err = parseImmediate(word)
		}
		if err != nil {
			return asm.locate(operand, err)
		}
		opcode.Words[len(opcode.Words)-1] += ","
		opcode.Words = append(opcode.Words, word)
	case OPERAND_LABEL:
		operand, err = tk.require()
		if err != nil {
			return
		}
		if operand.Word == "," {
			return asm.locate(operand, ErrOperandMissing)
		}
		opcode.LinkLabel = operand.Word
		opcode.Words = append(opcode.Words, operand.Word)
		asm.Symbol = append(asm.Symbol, Symbol{
			Name:   operand.Word,
			Addr:   uint16(ip + 1),
			Opcode: len(asm.Opcode),
		})
	}

	opcode.Code = code
	asm.Opcode = append(asm.Opcode, opcode)

	return
}

// link resolves every pending symbol against the label table.
func (asm *Assembler) link() (err error) {
	for _, sym := range asm.Symbol {
		op := &asm.Opcode[sym.Opcode]

		index, ok := asm.labelIndex[sym.Name]
		if !ok {
			err = ErrSyntax{LineNo: op.LineNo, Word: sym.Name, Err: ErrUndefinedLabel(sym.Name)}
			return
		}

		// Relative to the IP after the branch has been fetched.
		target := asm.Label[index].Addr
		displacement := int(int16(target - sym.Addr - 1))
		if displacement < -128 || displacement > 127 {
			err = ErrSyntax{LineNo: op.LineNo, Word: sym.Name, Err: ErrDisplacement{Label: sym.Name, Displacement: displacement}}
			return
		}

		op.Code.Operand = uint8(int8(displacement))

		if asm.Verbose {
			log.Printf("asm: link %v at 0x%04x: %+d", sym.Name, sym.Addr, displacement)
		}
	}

	return
}
