// Package parser turns the tokens of one source line into an ast.Command.
//
// Keywords are multi-word phrases. The parser folds the leading words of the
// line and picks the longest phrase that matches; whatever follows is the
// argument list of that command.
package parser

import (
	"strings"

	"github.com/birl-lang/birl/internal/ast"
	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/lexer"
	"github.com/birl-lang/birl/internal/token"
)

type phrase struct {
	words []string
	kind  ast.CommandKind
}

// phrases holds the folded keyword phrases. Order does not matter: matching
// always prefers the longest phrase.
var phrases = []phrase{
	{strings.Fields("CE QUER VER ISSO"), ast.CmdPrint},
	{strings.Fields("CE QUER VER ESSA PORRA"), ast.CmdPrintLine},
	{strings.Fields("CE QUER VER ISSO DIREITO"), ast.CmdPrintDebug},
	{strings.Fields("VEM"), ast.CmdDeclare},
	{strings.Fields("BORA"), ast.CmdSet},
	{strings.Fields("E ELE QUE A GENTE QUER"), ast.CmdCompare},
	{strings.Fields("E ELE MEMO"), ast.CmdExecuteIfEqual},
	{strings.Fields("NUM E ELE"), ast.CmdExecuteIfNotEqual},
	{strings.Fields("E MENOR"), ast.CmdExecuteIfLess},
	{strings.Fields("MENOR OU E MEMO"), ast.CmdExecuteIfLessOrEqual},
	{strings.Fields("E MAIOR"), ast.CmdExecuteIfGreater},
	{strings.Fields("MAIOR OU E MEMO"), ast.CmdExecuteIfGreaterOrEqual},
	{strings.Fields("FIM"), ast.CmdEndSubScope},
	{strings.Fields("E HORA DO"), ast.CmdCall},
	{strings.Fields("JAULA"), ast.CmdFunctionStart},
	{strings.Fields("SAINDO DA JAULA"), ast.CmdFunctionEnd},
	{strings.Fields("BIRL"), ast.CmdReturn},
	{strings.Fields("NUM VAI DA NAO"), ast.CmdQuit},
	{strings.Fields("QUE QUE CE QUER"), ast.CmdGetTextInput},
	{strings.Fields("QUE QUE CE QUER MONSTRAO"), ast.CmdGetIntegerInput},
	{strings.Fields("QUE QUE CE QUER MONSTRINHO"), ast.CmdGetNumberInput},
	{strings.Fields("MUDA PRA MONSTRO"), ast.CmdConvertToInteger},
	{strings.Fields("MUDA PRA TRAPEZIO"), ast.CmdConvertToNumber},
	{strings.Fields("MUDA PRA FRANGO"), ast.CmdConvertToText},
}

// Parser holds the tokens of a single line.
type Parser struct {
	tokens []token.Token
	pos    int
	line   int
}

func New(tokens []token.Token, line int) *Parser {
	return &Parser{tokens: tokens, line: line}
}

// ParseLine parses tokens into a command. A line without tokens (blank or
// comment only) yields a nil command and no error.
func ParseLine(tokens []token.Token, line int) (*ast.Command, error) {
	return New(tokens, line).ParseCommand()
}

func (p *Parser) ParseCommand() (*ast.Command, error) {
	if len(p.tokens) == 0 {
		return nil, nil
	}
	first := p.tokens[0]
	kind, n, ok := p.matchPhrase()
	if !ok {
		return nil, p.errorAt(first, "unknown command %q", first.Lexeme)
	}
	p.pos = n
	cmd := &ast.Command{Token: first, Kind: kind}

	var err error
	switch {
	case kind.IsExecuteIf(), kind == ast.CmdEndSubScope, kind == ast.CmdFunctionEnd, kind == ast.CmdQuit:
		err = p.expectEnd()
	case kind == ast.CmdPrint, kind == ast.CmdPrintLine, kind == ast.CmdPrintDebug,
		kind == ast.CmdReturn, kind == ast.CmdCompare:
		err = p.parseArgs(cmd)
	case kind == ast.CmdDeclare, kind == ast.CmdSet:
		err = p.parseAssignment(cmd)
	case kind == ast.CmdCall:
		err = p.parseCall(cmd)
	case kind == ast.CmdFunctionStart:
		err = p.parseFunctionHeader(cmd)
	default:
		err = p.parseTarget(cmd)
	}
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// matchPhrase returns the command of the longest phrase formed by the
// leading words of the line, and the number of tokens it spans.
func (p *Parser) matchPhrase() (ast.CommandKind, int, bool) {
	var words []string
	for _, tok := range p.tokens {
		if tok.Type != token.WORD {
			break
		}
		words = append(words, lexer.FoldKeyword(tok.Lexeme))
	}

	best, bestLen := ast.CommandKind(0), 0
	for _, ph := range phrases {
		if len(ph.words) <= bestLen || len(ph.words) > len(words) {
			continue
		}
		match := true
		for i, w := range ph.words {
			if words[i] != w {
				match = false
				break
			}
		}
		if match {
			best, bestLen = ph.kind, len(ph.words)
		}
	}
	return best, bestLen, bestLen > 0
}

func (p *Parser) peek() (token.Token, bool) {
	if p.pos >= len(p.tokens) {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) peekIs(t token.TokenType) bool {
	tok, ok := p.peek()
	return ok && tok.Type == t
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *Parser) expectEnd() error {
	if tok, ok := p.peek(); ok {
		return p.errorAt(tok, "unexpected %q after command", tok.Lexeme)
	}
	return nil
}

func (p *Parser) expect(t token.TokenType, what string) (token.Token, error) {
	tok, ok := p.peek()
	if !ok {
		return token.Token{}, p.errorEOL("expected %s", what)
	}
	if tok.Type != t {
		return token.Token{}, p.errorAt(tok, "expected %s, got %q", what, tok.Lexeme)
	}
	p.pos++
	return tok, nil
}

func (p *Parser) expectName() (string, error) {
	tok, err := p.expect(token.WORD, "a name")
	if err != nil {
		return "", err
	}
	return tok.Lexeme, nil
}

// parseArgs parses an optional ": expr, expr..." tail.
func (p *Parser) parseArgs(cmd *ast.Command) error {
	if p.atEnd() {
		return nil
	}
	if _, err := p.expect(token.COLON, "':'"); err != nil {
		return err
	}
	args, err := p.parseExpressionList()
	if err != nil {
		return err
	}
	cmd.Args = args
	return nil
}

// parseAssignment handles "VEM: name[, expr]", "VEM name = expr" and the
// same two forms of BORA.
func (p *Parser) parseAssignment(cmd *ast.Command) error {
	if p.peekIs(token.WORD) {
		name, _ := p.expectName()
		cmd.Name = name
		if p.atEnd() {
			return nil
		}
		if _, err := p.expect(token.ASSIGN, "'='"); err != nil {
			return err
		}
		expr, err := p.parseSingleExpression()
		if err != nil {
			return err
		}
		cmd.Args = []*ast.Expression{expr}
		return nil
	}
	if _, err := p.expect(token.COLON, "':' or a name"); err != nil {
		return err
	}
	name, err := p.expectName()
	if err != nil {
		return err
	}
	cmd.Name = name
	if p.atEnd() {
		return nil
	}
	if _, err := p.expect(token.COMMA, "','"); err != nil {
		return err
	}
	args, err := p.parseExpressionList()
	if err != nil {
		return err
	}
	cmd.Args = args
	return nil
}

// parseCall handles "E HORA DO: NAME[, expr...]".
func (p *Parser) parseCall(cmd *ast.Command) error {
	if _, err := p.expect(token.COLON, "':'"); err != nil {
		return err
	}
	name, err := p.expectName()
	if err != nil {
		return err
	}
	cmd.Name = name
	if p.atEnd() {
		return nil
	}
	if _, err := p.expect(token.COMMA, "','"); err != nil {
		return err
	}
	args, err := p.parseExpressionList()
	if err != nil {
		return err
	}
	cmd.Args = args
	return nil
}

// parseTarget handles the input and conversion commands: ": name".
func (p *Parser) parseTarget(cmd *ast.Command) error {
	if _, err := p.expect(token.COLON, "':'"); err != nil {
		return err
	}
	name, err := p.expectName()
	if err != nil {
		return err
	}
	cmd.Name = name
	return p.expectEnd()
}

// parseFunctionHeader handles "JAULA NAME" and "JAULA NAME (KIND p, ...)".
func (p *Parser) parseFunctionHeader(cmd *ast.Command) error {
	p.skipColon()
	name, err := p.expectName()
	if err != nil {
		return err
	}
	cmd.Name = name
	if p.atEnd() {
		return nil
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return err
	}
	if p.peekIs(token.RPAREN) {
		p.pos++
		return p.expectEnd()
	}
	for {
		param, err := p.parseParameter()
		if err != nil {
			return err
		}
		cmd.Params = append(cmd.Params, param)
		tok, ok := p.peek()
		if !ok {
			return p.errorEOL("expected ',' or ')' in parameter list")
		}
		p.pos++
		if tok.Type == token.RPAREN {
			break
		}
		if tok.Type != token.COMMA {
			return p.errorAt(tok, "expected ',' or ')' in parameter list, got %q", tok.Lexeme)
		}
	}
	return p.expectEnd()
}

func (p *Parser) skipColon() {
	if p.peekIs(token.COLON) {
		p.pos++
	}
}

func (p *Parser) parseParameter() (ast.Parameter, error) {
	tok, err := p.expect(token.WORD, "a parameter type")
	if err != nil {
		return ast.Parameter{}, err
	}
	var kind string
	switch lexer.FoldKeyword(tok.Lexeme) {
	case config.IntegerKindName:
		kind = config.IntegerKindName
	case config.NumberKindName:
		kind = config.NumberKindName
		// "TRAPEZIO DESCENDENTE" is the long spelling.
		if next, ok := p.peek(); ok && next.Type == token.WORD && lexer.FoldKeyword(next.Lexeme) == "DESCENDENTE" {
			if after := p.pos + 1; after < len(p.tokens) && p.tokens[after].Type == token.WORD {
				p.pos++
			}
		}
	case config.TextKindName:
		kind = config.TextKindName
	default:
		return ast.Parameter{}, p.errorAt(tok, "unknown parameter type %q", tok.Lexeme)
	}
	name, err := p.expectName()
	if err != nil {
		return ast.Parameter{}, err
	}
	return ast.Parameter{Name: name, Kind: kind}, nil
}

// parseSingleExpression parses the rest of the line as exactly one expression.
func (p *Parser) parseSingleExpression() (*ast.Expression, error) {
	args, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	if len(args) != 1 {
		return nil, p.errorAt(p.tokens[0], "expected a single expression")
	}
	return args[0], nil
}

// parseExpressionList splits the remaining tokens on top-level commas.
func (p *Parser) parseExpressionList() ([]*ast.Expression, error) {
	var args []*ast.Expression
	for {
		start := p.pos
		depth := 0
		for p.pos < len(p.tokens) {
			tok := p.tokens[p.pos]
			if tok.Type == token.LPAREN {
				depth++
			} else if tok.Type == token.RPAREN {
				depth--
			} else if tok.Type == token.COMMA && depth == 0 {
				break
			}
			p.pos++
		}
		expr, err := p.parseExpression(p.tokens[start:p.pos])
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		if p.atEnd() {
			return args, nil
		}
		p.pos++ // comma
	}
}

// parseExpression converts tokens into a flat node list and checks that
// operands and operators alternate and parentheses balance.
func (p *Parser) parseExpression(tokens []token.Token) (*ast.Expression, error) {
	if len(tokens) == 0 {
		return nil, p.errorEOL("expected an expression")
	}
	nodes, err := p.convertNodes(tokens)
	if err != nil {
		return nil, err
	}
	expr := &ast.Expression{Nodes: nodes}
	if err := p.validate(expr); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) convertNodes(tokens []token.Token) ([]ast.ExprNode, error) {
	var nodes []ast.ExprNode
	expectOperand := true
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Type == token.MINUS && expectOperand {
			if i+1 >= len(tokens) {
				return nil, p.errorAt(tok, "expected an operand after '-'")
			}
			next := tokens[i+1]
			switch next.Type {
			case token.INT:
				nodes = append(nodes, valueNode(next, ast.Literal{Kind: ast.LitInteger, Int: -next.Literal.(int64)}))
				i++
				expectOperand = false
				continue
			case token.FLOAT:
				nodes = append(nodes, valueNode(next, ast.Literal{Kind: ast.LitNumber, Num: -next.Literal.(float64)}))
				i++
				expectOperand = false
				continue
			}
			// -operand becomes (0 - operand).
			end, err := p.operandEnd(tokens, i+1)
			if err != nil {
				return nil, err
			}
			inner, err := p.convertNodes(tokens[i+1 : end])
			if err != nil {
				return nil, err
			}
			nodes = append(nodes,
				opNode(tok, ast.OpLParen),
				valueNode(tok, ast.Literal{Kind: ast.LitInteger}),
				opNode(tok, ast.OpMinus))
			nodes = append(nodes, inner...)
			nodes = append(nodes, opNode(tok, ast.OpRParen))
			i = end - 1
			expectOperand = false
			continue
		}

		switch tok.Type {
		case token.INT:
			nodes = append(nodes, valueNode(tok, ast.Literal{Kind: ast.LitInteger, Int: tok.Literal.(int64)}))
			expectOperand = false
		case token.FLOAT:
			nodes = append(nodes, valueNode(tok, ast.Literal{Kind: ast.LitNumber, Num: tok.Literal.(float64)}))
			expectOperand = false
		case token.STRING:
			nodes = append(nodes, valueNode(tok, ast.Literal{Kind: ast.LitText, Str: tok.Literal.(string)}))
			expectOperand = false
		case token.WORD:
			nodes = append(nodes, ast.ExprNode{Kind: ast.NodeSymbol, Name: tok.Lexeme, Token: tok})
			expectOperand = false
		case token.PLUS:
			nodes = append(nodes, opNode(tok, ast.OpPlus))
			expectOperand = true
		case token.MINUS:
			nodes = append(nodes, opNode(tok, ast.OpMinus))
			expectOperand = true
		case token.ASTERISK:
			nodes = append(nodes, opNode(tok, ast.OpMul))
			expectOperand = true
		case token.SLASH:
			nodes = append(nodes, opNode(tok, ast.OpDiv))
			expectOperand = true
		case token.LPAREN:
			nodes = append(nodes, opNode(tok, ast.OpLParen))
			expectOperand = true
		case token.RPAREN:
			nodes = append(nodes, opNode(tok, ast.OpRParen))
			expectOperand = false
		default:
			return nil, p.errorAt(tok, "unexpected %q in expression", tok.Lexeme)
		}
	}
	return nodes, nil
}

// operandEnd returns the index just past the operand starting at i: one
// token, a parenthesized group, or a nested unary minus.
func (p *Parser) operandEnd(tokens []token.Token, i int) (int, error) {
	tok := tokens[i]
	switch tok.Type {
	case token.WORD, token.INT, token.FLOAT, token.STRING:
		return i + 1, nil
	case token.MINUS:
		if i+1 >= len(tokens) {
			return 0, p.errorAt(tok, "expected an operand after '-'")
		}
		return p.operandEnd(tokens, i+1)
	case token.LPAREN:
		depth := 0
		for j := i; j < len(tokens); j++ {
			switch tokens[j].Type {
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
				if depth == 0 {
					return j + 1, nil
				}
			}
		}
		return 0, p.errorAt(tok, "unbalanced parentheses")
	}
	return 0, p.errorAt(tok, "expected an operand after '-', got %q", tok.Lexeme)
}

func (p *Parser) validate(expr *ast.Expression) error {
	depth := 0
	expectOperand := true
	for _, n := range expr.Nodes {
		switch {
		case n.Kind != ast.NodeOperator:
			if !expectOperand {
				return p.errorAt(n.Token, "missing operator before %q", n.Token.Lexeme)
			}
			expectOperand = false
		case n.Op == ast.OpLParen:
			if !expectOperand {
				return p.errorAt(n.Token, "missing operator before '('")
			}
			depth++
		case n.Op == ast.OpRParen:
			if expectOperand {
				return p.errorAt(n.Token, "expected an operand before ')'")
			}
			depth--
			if depth < 0 {
				return p.errorAt(n.Token, "unbalanced parentheses")
			}
		default:
			if expectOperand {
				return p.errorAt(n.Token, "expected an operand before %q", n.Op.String())
			}
			expectOperand = true
		}
	}
	if depth != 0 {
		return p.errorAt(expr.Nodes[0].Token, "unbalanced parentheses")
	}
	if expectOperand {
		return p.errorEOL("expression ends with an operator")
	}
	return nil
}

func valueNode(tok token.Token, lit ast.Literal) ast.ExprNode {
	return ast.ExprNode{Kind: ast.NodeValue, Value: lit, Token: tok}
}

func opNode(tok token.Token, op ast.Operator) ast.ExprNode {
	return ast.ExprNode{Kind: ast.NodeOperator, Op: op, Token: tok}
}

func (p *Parser) errorAt(tok token.Token, format string, args ...any) error {
	line := tok.Line
	if line == 0 {
		line = p.line
	}
	return diagnostics.NewSyntaxError(line, tok.Column, format, args...)
}

func (p *Parser) errorEOL(format string, args ...any) error {
	return diagnostics.NewSyntaxError(p.line, 0, format, args...)
}
