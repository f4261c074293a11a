package ast

// NodeId is the stable identity of an expression node. Ids are assigned once
// by a Builder and are never reused or reassigned; the rest of the engine
// addresses nodes exclusively through them.
type NodeId uint32

type NodeKind string

const (
	NodeLiteral    NodeKind = "Literal"
	NodeVariable   NodeKind = "Variable"
	NodePath       NodeKind = "Path"
	NodeObject     NodeKind = "Object"
	NodeList       NodeKind = "List"
	NodeCall       NodeKind = "Call"
	NodePipe       NodeKind = "Pipe"
	NodeLatest     NodeKind = "Latest"
	NodeHold       NodeKind = "Hold"
	NodeThen       NodeKind = "Then"
	NodeWhen       NodeKind = "When"
	NodeWhile      NodeKind = "While"
	NodeLink       NodeKind = "Link"
	NodeBlock      NodeKind = "Block"
	NodeListMap    NodeKind = "ListMap"
	NodeListAppend NodeKind = "ListAppend"
	NodeListClear  NodeKind = "ListClear"
	NodeListRemove NodeKind = "ListRemove"
	NodeListRetain NodeKind = "ListRetain"
)

// Expr is the closed set of expression nodes. The set is sealed: every
// implementation embeds exprImpl, and the evaluator dispatches exhaustively
// over the concrete types.
type Expr interface {
	Id() NodeId
	NodeKind() NodeKind
	isExpr()
}

type exprImpl struct {
	id   NodeId
	kind NodeKind
}

func newExprImpl(id NodeId, kind NodeKind) exprImpl {
	return exprImpl{id: id, kind: kind}
}

func (e exprImpl) Id() NodeId         { return e.id }
func (e exprImpl) NodeKind() NodeKind { return e.kind }
func (exprImpl) isExpr()              {}

// Literal values carried by Literal expressions and literal patterns.

type Lit interface {
	isLit()
}

type litMarker struct{}

func (litMarker) isLit() {}

type IntLit struct {
	litMarker
	Value int64
}

type FloatLit struct {
	litMarker
	Value float64
}

type TextLit struct {
	litMarker
	Value string
}

type BoolLit struct {
	litMarker
	Value bool
}

type UnitLit struct {
	litMarker
}

// Expressions

type Literal struct {
	exprImpl
	Value Lit
}

type Variable struct {
	exprImpl
	Name string
}

// Path projects a named field out of its base expression.
type Path struct {
	exprImpl
	Base  Expr
	Field string
}

type ObjectField struct {
	Name  string
	Value Expr
}

type Object struct {
	exprImpl
	Fields []ObjectField
}

type List struct {
	exprImpl
	Items []Expr
}

type Call struct {
	exprImpl
	Name string
	Args []Expr
}

// Pipe threads its input expression as the implicit first argument of a
// builtin call.
type Pipe struct {
	exprImpl
	Input Expr
	Name  string
	Args  []Expr
}

type Latest struct {
	exprImpl
	Exprs []Expr
}

// Hold is the persistent accumulator construct. StateName is bound to the
// cell's current value while Body evaluates.
type Hold struct {
	exprImpl
	Initial   Expr
	StateName string
	Body      Expr
}

type Then struct {
	exprImpl
	Input Expr
	Body  Expr
}

type WhenArm struct {
	Pattern Pattern
	Body    Expr
}

type When struct {
	exprImpl
	Input Expr
	Arms  []WhenArm
}

type While struct {
	exprImpl
	Input   Expr
	Pattern Pattern
	Body    Expr
}

// Link is an externally fed event slot. Alias is optional ("" when absent)
// and lets hosts address the link by name instead of by node id.
type Link struct {
	exprImpl
	Alias string
}

type BlockBinding struct {
	Name  string
	Value Expr
}

type Block struct {
	exprImpl
	Bindings []BlockBinding
	Output   Expr
}

type ListMap struct {
	exprImpl
	List     Expr
	ItemName string
	Template Expr
}

type ListAppend struct {
	exprImpl
	List Expr
	Item Expr
}

type ListClear struct {
	exprImpl
	List Expr
}

type ListRemove struct {
	exprImpl
	List  Expr
	Index Expr
}

type ListRetain struct {
	exprImpl
	List      Expr
	ItemName  string
	Predicate Expr
}

// Patterns

type Pattern interface {
	isPattern()
}

type patternMarker struct{}

func (patternMarker) isPattern() {}

type WildcardPattern struct {
	patternMarker
}

// BindPattern matches any value and binds it to Name in the arm body.
type BindPattern struct {
	patternMarker
	Name string
}

type LiteralPattern struct {
	patternMarker
	Value Lit
}

type ObjectPatternField struct {
	Name    string
	Pattern Pattern
}

// ObjectPattern matches structurally: every named sub-pattern must match the
// corresponding field, fields not mentioned are ignored.
type ObjectPattern struct {
	patternMarker
	Fields []ObjectPatternField
}

type ListPattern struct {
	patternMarker
	Elements []Pattern
}

// Program

type Binding struct {
	Name string
	Expr Expr
}

// Program is a set of named top-level bindings sharing one expression arena.
type Program struct {
	Bindings []Binding
}

// Lookup returns the top-level binding with the given name.
func (p *Program) Lookup(name string) (Expr, bool) {
	for _, b := range p.Bindings {
		if b.Name == name {
			return b.Expr, true
		}
	}
	return nil, false
}
