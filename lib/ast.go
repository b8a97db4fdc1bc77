package lib

type Program struct {
	Statements []Expr
}

// Expr is one of Number, Variable, BinaryOperation, Assignment or FunCall.
// Trees are built bottom-up by the parser and never modified afterwards.
type Expr interface {
	isExpr()
	location() Location
}

func (n Number) isExpr()          {}
func (v Variable) isExpr()        {}
func (b BinaryOperation) isExpr() {}
func (a Assignment) isExpr()      {}
func (f FunCall) isExpr()         {}

type Number struct {
	Value int64
	Token Token
}

// Variable is both an assignment target and a read.
type Variable struct {
	Name Token
}

type BinaryOperation struct {
	Left  Expr
	Op    Token
	Right Expr
}

type Assignment struct {
	Target Variable
	Value  Expr
}

type FunCall struct {
	Callee Variable
	Arg    Expr
}

func (n Number) location() Location          { return n.Token.Location }
func (v Variable) location() Location        { return v.Name.Location }
func (b BinaryOperation) location() Location { return b.Op.Location }
func (a Assignment) location() Location      { return a.Target.location() }
func (f FunCall) location() Location         { return f.Callee.location() }

func (v Variable) Ident() string {
	return v.Name.Lexeme
}
