// Package prettyprinter renders parsed BIRL commands back to canonical
// source, indented by block depth.
package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/birl-lang/birl/internal/ast"
	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/lexer"
	"github.com/birl-lang/birl/internal/parser"
)

// Canonical keyword phrase of every command
var phrases = map[ast.CommandKind]string{
	ast.CmdPrint:                   "CE QUER VER ISSO",
	ast.CmdPrintLine:               "CE QUER VER ESSA PORRA",
	ast.CmdPrintDebug:              "CE QUER VER ISSO DIREITO",
	ast.CmdDeclare:                 "VEM",
	ast.CmdSet:                     "BORA",
	ast.CmdReturn:                  "BIRL",
	ast.CmdCompare:                 "É ELE QUE A GENTE QUER",
	ast.CmdExecuteIfEqual:          "É ELE MEMO",
	ast.CmdExecuteIfNotEqual:       "NUM É ELE",
	ast.CmdExecuteIfLess:           "É MENOR",
	ast.CmdExecuteIfLessOrEqual:    "MENOR OU É MEMO",
	ast.CmdExecuteIfGreater:        "É MAIOR",
	ast.CmdExecuteIfGreaterOrEqual: "MAIOR OU É MEMO",
	ast.CmdEndSubScope:             "FIM",
	ast.CmdCall:                    "É HORA DO",
	ast.CmdFunctionStart:           "JAULA",
	ast.CmdFunctionEnd:             "SAINDO DA JAULA",
	ast.CmdQuit:                    "NUM VAI DÁ NÃO",
	ast.CmdGetTextInput:            "QUE QUE CE QUER",
	ast.CmdGetIntegerInput:         "QUE QUE CE QUER MONSTRÃO",
	ast.CmdGetNumberInput:          "QUE QUE CE QUER MONSTRINHO",
	ast.CmdConvertToInteger:        "MUDA PRA MONSTRO",
	ast.CmdConvertToNumber:         "MUDA PRA TRAPÉZIO",
	ast.CmdConvertToText:           "MUDA PRA FRANGO",
}

var parameterKinds = map[string]string{
	config.IntegerKindName: "MONSTRO",
	config.NumberKindName:  "TRAPÉZIO DESCENDENTE",
	config.TextKindName:    "FRANGO",
}

type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	indentStr string
	blank     bool // last line written was blank
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{indentStr: "    ", blank: true}
}

func (p *CodePrinter) String() string {
	return strings.TrimRight(p.buf.String(), "\n") + "\n"
}

func (p *CodePrinter) writeLine(s string) {
	p.buf.WriteString(strings.Repeat(p.indentStr, p.indent))
	p.buf.WriteString(s)
	p.buf.WriteByte('\n')
	p.blank = false
}

// BlankLine writes an empty line. Runs of blank lines collapse to one.
func (p *CodePrinter) BlankLine() {
	if p.blank {
		return
	}
	p.buf.WriteByte('\n')
	p.blank = true
}

// PrintComment writes a comment line at the current depth.
func (p *CodePrinter) PrintComment(text string) {
	p.writeLine(text)
}

// PrintCommand writes cmd, followed by comment when it is not empty.
func (p *CodePrinter) PrintCommand(cmd *ast.Command, comment string) {
	if cmd.Kind == ast.CmdEndSubScope || cmd.Kind == ast.CmdFunctionEnd {
		if p.indent > 0 {
			p.indent--
		}
	}
	line := RenderCommand(cmd)
	if comment != "" {
		line += " " + comment
	}
	p.writeLine(line)
	if cmd.Kind == ast.CmdFunctionStart || cmd.Kind.IsExecuteIf() {
		p.indent++
	}
}

// RenderCommand returns the canonical source of one command.
func RenderCommand(cmd *ast.Command) string {
	var sb strings.Builder
	sb.WriteString(phrases[cmd.Kind])

	switch cmd.Kind {
	case ast.CmdFunctionStart:
		sb.WriteString(" " + cmd.Name)
		if len(cmd.Params) > 0 {
			parts := make([]string, len(cmd.Params))
			for i, param := range cmd.Params {
				parts[i] = parameterKinds[param.Kind] + " " + param.Name
			}
			sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
		}
		return sb.String()

	case ast.CmdDeclare, ast.CmdSet, ast.CmdCall,
		ast.CmdGetTextInput, ast.CmdGetIntegerInput, ast.CmdGetNumberInput,
		ast.CmdConvertToInteger, ast.CmdConvertToNumber, ast.CmdConvertToText:
		sb.WriteString(": " + cmd.Name)
		for _, arg := range cmd.Args {
			sb.WriteString(", " + RenderExpression(arg))
		}
		return sb.String()
	}

	for i, arg := range cmd.Args {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(RenderExpression(arg))
	}
	return sb.String()
}

// RenderExpression prints operators with surrounding spaces and
// parentheses tight around their contents.
func RenderExpression(expr *ast.Expression) string {
	var sb strings.Builder
	for i, n := range expr.Nodes {
		if i > 0 && !(n.Kind == ast.NodeOperator && n.Op == ast.OpRParen) {
			prev := expr.Nodes[i-1]
			if !(prev.Kind == ast.NodeOperator && prev.Op == ast.OpLParen) {
				sb.WriteByte(' ')
			}
		}
		if n.Kind == ast.NodeValue {
			sb.WriteString(renderLiteral(n.Value))
		} else {
			sb.WriteString(n.String())
		}
	}
	return sb.String()
}

func renderLiteral(lit ast.Literal) string {
	switch lit.Kind {
	case ast.LitNumber:
		s := strconv.FormatFloat(lit.Num, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case ast.LitText:
		return quote(lit.Str)
	}
	return lit.String()
}

// quote writes s as a string literal using only the escapes the lexer reads.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// splitComment separates a trailing # comment from the code of a line.
func splitComment(line string) (code, comment string) {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return line[:i], strings.TrimSpace(line[i:])
			}
		}
	}
	return line, ""
}

// Format parses src and prints it back in canonical form. Comments are
// kept; blank lines collapse to one. The first malformed line is returned
// as an error.
func Format(src string) (string, error) {
	p := NewCodePrinter()
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		code, comment := splitComment(raw)
		if strings.TrimSpace(code) == "" {
			if comment != "" {
				p.PrintComment(comment)
			} else {
				p.BlankLine()
			}
			continue
		}
		tokens, err := lexer.Tokenize(code, i+1)
		if err != nil {
			return "", err
		}
		cmd, err := parser.ParseLine(tokens, i+1)
		if err != nil {
			return "", err
		}
		if cmd == nil {
			continue
		}
		p.PrintCommand(cmd, comment)
	}
	return p.String(), nil
}
