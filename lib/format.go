package lib

import (
	"strconv"
	"strings"
)

const (
	precAssignment = iota
	precTerm
	precFactor
	precPrimary
)

// Format renders prog as canonical source: one statement per line, single
// spaces around operators and parentheses only where the tree needs them.
func Format(prog Program) string {
	var b strings.Builder
	for _, stmt := range prog.Statements {
		formatExpr(&b, stmt, precAssignment)
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatExpr renders a single expression.
func FormatExpr(expr Expr) string {
	var b strings.Builder
	formatExpr(&b, expr, precAssignment)
	return b.String()
}

func formatExpr(b *strings.Builder, expr Expr, minPrec int) {
	prec := precedence(expr)
	if prec < minPrec {
		b.WriteByte('(')
		defer b.WriteByte(')')
	}

	switch e := expr.(type) {
	case Number:
		b.WriteString(strconv.FormatInt(e.Value, 10))
	case Variable:
		b.WriteString(e.Ident())
	case Assignment:
		b.WriteString(e.Target.Ident())
		b.WriteString(" = ")
		formatExpr(b, e.Value, precAssignment)
	case BinaryOperation:
		// Operators are left-associative, so a right operand of the same
		// precedence keeps its parentheses.
		formatExpr(b, e.Left, prec)
		b.WriteByte(' ')
		b.WriteString(e.Op.Lexeme)
		b.WriteByte(' ')
		formatExpr(b, e.Right, prec+1)
	case FunCall:
		b.WriteString(e.Callee.Ident())
		b.WriteByte('(')
		formatExpr(b, e.Arg, precAssignment)
		b.WriteByte(')')
	}
}

func precedence(expr Expr) int {
	switch e := expr.(type) {
	case Assignment:
		return precAssignment
	case BinaryOperation:
		if e.Op.Kind == TokenStar || e.Op.Kind == TokenSlash {
			return precFactor
		}
		return precTerm
	default:
		return precPrimary
	}
}

// Dump renders expr as a prefix tree, e.g. "(= x (+ 1 2))".
func Dump(expr Expr) string {
	var b strings.Builder
	dumpExpr(&b, expr)
	return b.String()
}

func dumpExpr(b *strings.Builder, expr Expr) {
	switch e := expr.(type) {
	case Number:
		b.WriteString(strconv.FormatInt(e.Value, 10))
	case Variable:
		b.WriteString(e.Ident())
	case Assignment:
		b.WriteString("(= ")
		b.WriteString(e.Target.Ident())
		b.WriteByte(' ')
		dumpExpr(b, e.Value)
		b.WriteByte(')')
	case BinaryOperation:
		b.WriteByte('(')
		b.WriteString(e.Op.Lexeme)
		b.WriteByte(' ')
		dumpExpr(b, e.Left)
		b.WriteByte(' ')
		dumpExpr(b, e.Right)
		b.WriteByte(')')
	case FunCall:
		b.WriteString("(call ")
		b.WriteString(e.Callee.Ident())
		b.WriteByte(' ')
		dumpExpr(b, e.Arg)
		b.WriteByte(')')
	}
}
