package ast

// Builder mints NodeIds and constructs expression nodes. All nodes of one
// program must come from the same builder so their ids never collide.
type Builder struct {
	nextId NodeId
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) next() NodeId {
	id := b.nextId
	b.nextId++
	return id
}

// Literal helpers.

func (b *Builder) Int(value int64) *Literal {
	return &Literal{exprImpl: newExprImpl(b.next(), NodeLiteral), Value: IntLit{Value: value}}
}

func (b *Builder) Float(value float64) *Literal {
	return &Literal{exprImpl: newExprImpl(b.next(), NodeLiteral), Value: FloatLit{Value: value}}
}

func (b *Builder) Text(value string) *Literal {
	return &Literal{exprImpl: newExprImpl(b.next(), NodeLiteral), Value: TextLit{Value: value}}
}

func (b *Builder) Bool(value bool) *Literal {
	return &Literal{exprImpl: newExprImpl(b.next(), NodeLiteral), Value: BoolLit{Value: value}}
}

func (b *Builder) Unit() *Literal {
	return &Literal{exprImpl: newExprImpl(b.next(), NodeLiteral), Value: UnitLit{}}
}

// Expression helpers.

func (b *Builder) Var(name string) *Variable {
	return &Variable{exprImpl: newExprImpl(b.next(), NodeVariable), Name: name}
}

func (b *Builder) Path(base Expr, field string) *Path {
	return &Path{exprImpl: newExprImpl(b.next(), NodePath), Base: base, Field: field}
}

func (b *Builder) Object(fields ...ObjectField) *Object {
	return &Object{exprImpl: newExprImpl(b.next(), NodeObject), Fields: fields}
}

func (b *Builder) List(items ...Expr) *List {
	return &List{exprImpl: newExprImpl(b.next(), NodeList), Items: items}
}

func (b *Builder) Call(name string, args ...Expr) *Call {
	return &Call{exprImpl: newExprImpl(b.next(), NodeCall), Name: name, Args: args}
}

func (b *Builder) Pipe(input Expr, name string, args ...Expr) *Pipe {
	return &Pipe{exprImpl: newExprImpl(b.next(), NodePipe), Input: input, Name: name, Args: args}
}

func (b *Builder) Latest(exprs ...Expr) *Latest {
	return &Latest{exprImpl: newExprImpl(b.next(), NodeLatest), Exprs: exprs}
}

func (b *Builder) Hold(initial Expr, stateName string, body Expr) *Hold {
	return &Hold{exprImpl: newExprImpl(b.next(), NodeHold), Initial: initial, StateName: stateName, Body: body}
}

func (b *Builder) Then(input, body Expr) *Then {
	return &Then{exprImpl: newExprImpl(b.next(), NodeThen), Input: input, Body: body}
}

func (b *Builder) When(input Expr, arms ...WhenArm) *When {
	return &When{exprImpl: newExprImpl(b.next(), NodeWhen), Input: input, Arms: arms}
}

func (b *Builder) While(input Expr, pattern Pattern, body Expr) *While {
	return &While{exprImpl: newExprImpl(b.next(), NodeWhile), Input: input, Pattern: pattern, Body: body}
}

func (b *Builder) Link(alias string) *Link {
	return &Link{exprImpl: newExprImpl(b.next(), NodeLink), Alias: alias}
}

func (b *Builder) Block(bindings []BlockBinding, output Expr) *Block {
	return &Block{exprImpl: newExprImpl(b.next(), NodeBlock), Bindings: bindings, Output: output}
}

func (b *Builder) ListMap(list Expr, itemName string, template Expr) *ListMap {
	return &ListMap{exprImpl: newExprImpl(b.next(), NodeListMap), List: list, ItemName: itemName, Template: template}
}

func (b *Builder) ListAppend(list, item Expr) *ListAppend {
	return &ListAppend{exprImpl: newExprImpl(b.next(), NodeListAppend), List: list, Item: item}
}

func (b *Builder) ListClear(list Expr) *ListClear {
	return &ListClear{exprImpl: newExprImpl(b.next(), NodeListClear), List: list}
}

func (b *Builder) ListRemove(list, index Expr) *ListRemove {
	return &ListRemove{exprImpl: newExprImpl(b.next(), NodeListRemove), List: list, Index: index}
}

func (b *Builder) ListRetain(list Expr, itemName string, predicate Expr) *ListRetain {
	return &ListRetain{exprImpl: newExprImpl(b.next(), NodeListRetain), List: list, ItemName: itemName, Predicate: predicate}
}

// Pattern helpers. Patterns carry no ids: they are matched structurally and
// never addressed as slots.

func Wildcard() WildcardPattern {
	return WildcardPattern{}
}

func Bind(name string) BindPattern {
	return BindPattern{Name: name}
}

func LitP(value Lit) LiteralPattern {
	return LiteralPattern{Value: value}
}

func ObjectP(fields ...ObjectPatternField) ObjectPattern {
	return ObjectPattern{Fields: fields}
}

func ListP(elements ...Pattern) ListPattern {
	return ListPattern{Elements: elements}
}

func Arm(pattern Pattern, body Expr) WhenArm {
	return WhenArm{Pattern: pattern, Body: body}
}

func Field(name string, value Expr) ObjectField {
	return ObjectField{Name: name, Value: value}
}

func PatField(name string, pattern Pattern) ObjectPatternField {
	return ObjectPatternField{Name: name, Pattern: pattern}
}

func BlockBind(name string, value Expr) BlockBinding {
	return BlockBinding{Name: name, Value: value}
}

// Program assembles top-level bindings. Binding order is evaluation order.
func (b *Builder) Program(bindings ...Binding) *Program {
	return &Program{Bindings: bindings}
}

func TopBind(name string, expr Expr) Binding {
	return Binding{Name: name, Expr: expr}
}
