package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/birl-lang/birl/internal/token"
)

// CommandKind identifies which surface statement a line holds.
type CommandKind int

const (
	CmdPrint CommandKind = iota
	CmdPrintLine
	CmdPrintDebug
	CmdDeclare
	CmdSet
	CmdReturn
	CmdCompare
	CmdExecuteIfEqual
	CmdExecuteIfNotEqual
	CmdExecuteIfLess
	CmdExecuteIfLessOrEqual
	CmdExecuteIfGreater
	CmdExecuteIfGreaterOrEqual
	CmdEndSubScope
	CmdCall
	CmdFunctionStart
	CmdFunctionEnd
	CmdQuit
	CmdGetTextInput
	CmdGetIntegerInput
	CmdGetNumberInput
	CmdConvertToInteger
	CmdConvertToNumber
	CmdConvertToText
)

var commandNames = map[CommandKind]string{
	CmdPrint:                   "Print",
	CmdPrintLine:               "PrintLine",
	CmdPrintDebug:              "PrintDebug",
	CmdDeclare:                 "Declare",
	CmdSet:                     "Set",
	CmdReturn:                  "Return",
	CmdCompare:                 "Compare",
	CmdExecuteIfEqual:          "ExecuteIfEqual",
	CmdExecuteIfNotEqual:       "ExecuteIfNotEqual",
	CmdExecuteIfLess:           "ExecuteIfLess",
	CmdExecuteIfLessOrEqual:    "ExecuteIfLessOrEqual",
	CmdExecuteIfGreater:        "ExecuteIfGreater",
	CmdExecuteIfGreaterOrEqual: "ExecuteIfGreaterOrEqual",
	CmdEndSubScope:             "EndSubScope",
	CmdCall:                    "Call",
	CmdFunctionStart:           "FunctionStart",
	CmdFunctionEnd:             "FunctionEnd",
	CmdQuit:                    "Quit",
	CmdGetTextInput:            "GetTextInput",
	CmdGetIntegerInput:         "GetIntegerInput",
	CmdGetNumberInput:          "GetNumberInput",
	CmdConvertToInteger:        "ConvertToInteger",
	CmdConvertToNumber:         "ConvertToNumber",
	CmdConvertToText:           "ConvertToText",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// IsExecuteIf reports whether the command opens a conditional block.
func (k CommandKind) IsExecuteIf() bool {
	return k >= CmdExecuteIfEqual && k <= CmdExecuteIfGreaterOrEqual
}

// Command is one parsed source line.
type Command struct {
	Token token.Token // first token of the line
	Kind  CommandKind

	// Name is the target variable (Declare, Set, input, conversions) or the
	// function name (Call, FunctionStart).
	Name string

	// Args are the value expressions, in source order.
	Args []*Expression

	// Params are the declared parameters of a FunctionStart.
	Params []Parameter
}

func (c *Command) Line() int { return c.Token.Line }

func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Kind.String())
	if c.Name != "" {
		sb.WriteString(" " + c.Name)
	}
	if len(c.Params) > 0 {
		parts := make([]string, len(c.Params))
		for i, p := range c.Params {
			parts[i] = p.Kind + " " + p.Name
		}
		sb.WriteString("(" + strings.Join(parts, ", ") + ")")
	}
	for _, a := range c.Args {
		sb.WriteString(" [" + a.String() + "]")
	}
	return sb.String()
}

// Parameter is a typed function parameter. Kind holds the canonical type
// keyword (MONSTRO, TRAPEZIO or FRANGO).
type Parameter struct {
	Name string
	Kind string
}

// LiteralKind is the type of a literal value in source.
type LiteralKind int

const (
	LitInteger LiteralKind = iota
	LitNumber
	LitText
	LitNull
)

// Literal is a constant value written in source.
type Literal struct {
	Kind LiteralKind
	Int  int64
	Num  float64
	Str  string
}

func (l Literal) String() string {
	switch l.Kind {
	case LitInteger:
		return strconv.FormatInt(l.Int, 10)
	case LitNumber:
		return strconv.FormatFloat(l.Num, 'f', -1, 64)
	case LitText:
		return strconv.Quote(l.Str)
	default:
		return "<Null>"
	}
}

// Operator is an arithmetic operator or a parenthesis.
type Operator int

const (
	OpPlus Operator = iota
	OpMinus
	OpMul
	OpDiv
	OpLParen
	OpRParen
)

func (o Operator) String() string {
	switch o {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpLParen:
		return "("
	case OpRParen:
		return ")"
	}
	return "?"
}

// IsHighPriority reports whether the operator binds tighter than + and -.
func (o Operator) IsHighPriority() bool { return o == OpMul || o == OpDiv }

// IsLowPriority reports whether the operator is + or -.
func (o Operator) IsLowPriority() bool { return o == OpPlus || o == OpMinus }

// NodeKind distinguishes expression nodes.
type NodeKind int

const (
	NodeValue NodeKind = iota
	NodeSymbol
	NodeOperator
)

// ExprNode is a single element of an expression in source order.
type ExprNode struct {
	Kind  NodeKind
	Value Literal
	Name  string
	Op    Operator
	Token token.Token
}

func (n ExprNode) String() string {
	switch n.Kind {
	case NodeValue:
		return n.Value.String()
	case NodeSymbol:
		return n.Name
	default:
		return n.Op.String()
	}
}

// Expression is a flat list of nodes, parentheses included. Precedence is
// resolved by the compiler, not by the parser.
type Expression struct {
	Nodes []ExprNode
}

func (e *Expression) String() string {
	parts := make([]string, len(e.Nodes))
	for i, n := range e.Nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

// IsSingleOperand reports whether the expression is one value or symbol.
func (e *Expression) IsSingleOperand() bool {
	return len(e.Nodes) == 1 && e.Nodes[0].Kind != NodeOperator
}
