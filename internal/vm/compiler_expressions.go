package vm

import (
	"fmt"

	"github.com/birl-lang/birl/internal/ast"
	"github.com/birl-lang/birl/internal/diagnostics"
)

// compileExpression emits code that leaves the value of expr in math_b.
//
// A term (operands joined by * and /) is accumulated in math_b. A + or -
// whose right term is a single operand is applied at once through math_a.
// Otherwise the running sum is kept in one accumulator slot and each term is
// folded into it as soon as it is complete, so temporaries only grow with
// the nesting of parentheses.
func (c *Compiler) compileExpression(expr *ast.Expression) error {
	if len(expr.Nodes) == 0 {
		return fmt.Errorf("%w: empty expression", diagnostics.ErrParse)
	}
	return c.compileNodes(expr.Nodes)
}

func (c *Compiler) compileNodes(nodes []ast.ExprNode) error {
	saved := c.nextAddr
	defer func() { c.nextAddr = saved }()

	var (
		pendingHigh ast.Operator
		hasPending  bool
		expectValue = true

		lowOp  ast.Operator
		hasLow bool // the left side of lowOp is in acc
		acc    Symbol
		hasAcc bool
	)

	for i := 0; i < len(nodes); i++ {
		n := nodes[i]

		if n.Kind != ast.NodeOperator || n.Op == ast.OpLParen {
			if !expectValue {
				return fmt.Errorf("%w: missing operator before %s", diagnostics.ErrParse, n)
			}
			expectValue = false
		}

		switch {
		case n.Kind == ast.NodeOperator && n.Op == ast.OpLParen:
			end, err := matchingParen(nodes, i)
			if err != nil {
				return err
			}
			inner := nodes[i+1 : end]
			i = end
			if !hasPending {
				if err := c.compileNodes(inner); err != nil {
					return err
				}
				continue
			}
			// The term in math_b survives the group in a temporary.
			mark := c.nextAddr
			t, err := c.allocTemp()
			if err != nil {
				return err
			}
			c.emitWrite(t)
			if err := c.compileNodes(inner); err != nil {
				return err
			}
			c.emitRead(t)
			c.emit(OpPushIntermediateToA, 0)
			c.emitArith(pendingHigh)
			c.nextAddr = mark
			hasPending = false

		case n.Kind == ast.NodeOperator && n.Op == ast.OpRParen:
			return fmt.Errorf("%w: unbalanced parentheses", diagnostics.ErrParse)

		case n.Kind == ast.NodeOperator:
			if expectValue {
				return fmt.Errorf("%w: operator %s without a left operand", diagnostics.ErrParse, n.Op)
			}
			if hasPending {
				return fmt.Errorf("%w: operator %s follows %s", diagnostics.ErrParse, n.Op, pendingHigh)
			}
			expectValue = true
			if n.Op.IsHighPriority() {
				pendingHigh, hasPending = n.Op, true
				continue
			}
			if hasLow {
				c.foldInto(acc, lowOp)
				hasLow = false
			}
			if simpleTerm(nodes, i+1) {
				c.emit(OpSwapMath, 0)
				if err := c.pushOperandB(nodes[i+1]); err != nil {
					return err
				}
				c.emitArith(n.Op)
				i++
				expectValue = false
				continue
			}
			if !hasAcc {
				var err error
				if acc, err = c.allocTemp(); err != nil {
					return err
				}
				hasAcc = true
			}
			c.emitWrite(acc)
			lowOp, hasLow = n.Op, true

		default:
			if hasPending {
				c.emit(OpSwapMath, 0)
				if err := c.pushOperandB(n); err != nil {
					return err
				}
				c.emitArith(pendingHigh)
				hasPending = false
				continue
			}
			if err := c.pushOperandB(n); err != nil {
				return err
			}
		}
	}

	if expectValue {
		return fmt.Errorf("%w: expression ends without an operand", diagnostics.ErrParse)
	}
	if hasLow {
		c.foldInto(acc, lowOp)
	}
	return nil
}

// foldInto leaves acc op math_b in math_b.
func (c *Compiler) foldInto(acc Symbol, op ast.Operator) {
	c.emitRead(acc)
	c.emit(OpPushIntermediateToA, 0)
	c.emitArith(op)
}

// simpleTerm reports whether the term starting at nodes[i] is one operand
// not followed by * or /.
func simpleTerm(nodes []ast.ExprNode, i int) bool {
	if i >= len(nodes) {
		return false
	}
	if k := nodes[i].Kind; k != ast.NodeValue && k != ast.NodeSymbol {
		return false
	}
	if i+1 == len(nodes) {
		return true
	}
	next := nodes[i+1]
	return next.Kind == ast.NodeOperator && next.Op.IsLowPriority()
}

// pushOperandB emits the load of a value or a variable into math_b.
func (c *Compiler) pushOperandB(n ast.ExprNode) error {
	switch n.Kind {
	case ast.NodeValue:
		c.emitConst(OpPushValB, literalConstant(n.Value))
		return nil
	case ast.NodeSymbol:
		sym, ok := c.resolve(n.Name)
		if !ok {
			return fmt.Errorf("%w: %s", diagnostics.ErrUnknownIdentifier, n.Name)
		}
		c.emitRead(sym)
		c.emit(OpPushIntermediateToB, 0)
		return nil
	}
	return fmt.Errorf("%w: %s is not an operand", diagnostics.ErrParse, n)
}

func (c *Compiler) emitArith(op ast.Operator) {
	switch op {
	case ast.OpPlus:
		c.emit(OpAdd, 0)
	case ast.OpMinus:
		c.emit(OpSub, 0)
	case ast.OpMul:
		c.emit(OpMul, 0)
	case ast.OpDiv:
		c.emit(OpDiv, 0)
	}
}

func matchingParen(nodes []ast.ExprNode, open int) (int, error) {
	depth := 0
	for j := open; j < len(nodes); j++ {
		if nodes[j].Kind != ast.NodeOperator {
			continue
		}
		switch nodes[j].Op {
		case ast.OpLParen:
			depth++
		case ast.OpRParen:
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unbalanced parentheses", diagnostics.ErrParse)
}
