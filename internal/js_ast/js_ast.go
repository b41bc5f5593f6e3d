package js_ast

import (
	"github.com/concatjs/concatjs/internal/logger"
)

// Every module (i.e. file) is parsed into a separate AST data structure.
// Unlike a bundler, this tree is edited in place by the module rewriting pass.
// Identifiers are stored by name because the rewriting pass renames them by
// name. Scopes are not stored in the tree: they are rebuilt from the current
// tree by the binder whenever a traversal needs them, so deleting or replacing
// a statement can never leave a stale scope behind.

type L int

// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Operators/Operator_Precedence
const (
	LLowest L = iota
	LComma
	LSpread
	LYield
	LAssign
	LConditional
	LNullishCoalescing
	LLogicalOr
	LLogicalAnd
	LBitwiseOr
	LBitwiseXor
	LBitwiseAnd
	LEquals
	LCompare
	LShift
	LAdd
	LMultiply
	LExponentiation
	LPrefix
	LPostfix
	LNew
	LCall
	LMember
)

type OpCode int

func (op OpCode) IsPrefix() bool {
	return op < UnOpPostDec
}

func (op OpCode) IsLeftAssociative() bool {
	return op >= BinOpAdd && op < BinOpComma && op != BinOpPow
}

func (op OpCode) IsRightAssociative() bool {
	return op >= BinOpAssign || op == BinOpPow
}

// If you add a new token, remember to add it to "OpTable" too
const (
	// Prefix
	UnOpPos OpCode = iota
	UnOpNeg
	UnOpCpl
	UnOpNot
	UnOpVoid
	UnOpTypeof
	UnOpDelete

	// Prefix update
	UnOpPreDec
	UnOpPreInc

	// Postfix update
	UnOpPostDec
	UnOpPostInc

	// Left-associative
	BinOpAdd
	BinOpSub
	BinOpMul
	BinOpDiv
	BinOpRem
	BinOpPow
	BinOpLt
	BinOpLe
	BinOpGt
	BinOpGe
	BinOpIn
	BinOpInstanceof
	BinOpShl
	BinOpShr
	BinOpUShr
	BinOpLooseEq
	BinOpLooseNe
	BinOpStrictEq
	BinOpStrictNe
	BinOpNullishCoalescing
	BinOpLogicalOr
	BinOpLogicalAnd
	BinOpBitwiseOr
	BinOpBitwiseAnd
	BinOpBitwiseXor

	// Non-associative
	BinOpComma

	// Right-associative
	BinOpAssign
	BinOpAddAssign
	BinOpSubAssign
	BinOpMulAssign
	BinOpDivAssign
	BinOpRemAssign
	BinOpPowAssign
	BinOpShlAssign
	BinOpShrAssign
	BinOpUShrAssign
	BinOpBitwiseOrAssign
	BinOpBitwiseAndAssign
	BinOpBitwiseXorAssign
	BinOpNullishCoalescingAssign
	BinOpLogicalOrAssign
	BinOpLogicalAndAssign
)

type opTableEntry struct {
	Text      string
	Level     L
	IsKeyword bool
}

var OpTable = []opTableEntry{
	// Prefix
	{"+", LPrefix, false},
	{"-", LPrefix, false},
	{"~", LPrefix, false},
	{"!", LPrefix, false},
	{"void", LPrefix, true},
	{"typeof", LPrefix, true},
	{"delete", LPrefix, true},

	// Prefix update
	{"--", LPrefix, false},
	{"++", LPrefix, false},

	// Postfix update
	{"--", LPostfix, false},
	{"++", LPostfix, false},

	// Left-associative
	{"+", LAdd, false},
	{"-", LAdd, false},
	{"*", LMultiply, false},
	{"/", LMultiply, false},
	{"%", LMultiply, false},
	{"**", LExponentiation, false}, // Right-associative
	{"<", LCompare, false},
	{"<=", LCompare, false},
	{">", LCompare, false},
	{">=", LCompare, false},
	{"in", LCompare, true},
	{"instanceof", LCompare, true},
	{"<<", LShift, false},
	{">>", LShift, false},
	{">>>", LShift, false},
	{"==", LEquals, false},
	{"!=", LEquals, false},
	{"===", LEquals, false},
	{"!==", LEquals, false},
	{"??", LNullishCoalescing, false},
	{"||", LLogicalOr, false},
	{"&&", LLogicalAnd, false},
	{"|", LBitwiseOr, false},
	{"&", LBitwiseAnd, false},
	{"^", LBitwiseXor, false},

	// Non-associative
	{",", LComma, false},

	// Right-associative
	{"=", LAssign, false},
	{"+=", LAssign, false},
	{"-=", LAssign, false},
	{"*=", LAssign, false},
	{"/=", LAssign, false},
	{"%=", LAssign, false},
	{"**=", LAssign, false},
	{"<<=", LAssign, false},
	{">>=", LAssign, false},
	{">>>=", LAssign, false},
	{"|=", LAssign, false},
	{"&=", LAssign, false},
	{"^=", LAssign, false},
	{"??=", LAssign, false},
	{"||=", LAssign, false},
	{"&&=", LAssign, false},
}

// A name together with where it was written. "OriginalName" is filled in by
// passes that rename the identifier and is only used for debugging output.
type Ident struct {
	Loc          logger.Loc
	Name         string
	OriginalName string
}

type PropertyKind int

const (
	PropertyNormal PropertyKind = iota
	PropertyGet
	PropertySet
	PropertySpread
)

type Property struct {
	Key Expr

	// This is omitted for class fields
	Value *Expr

	// This is used when parsing a pattern that uses default values:
	//
	//   [a = 1] = [];
	//   ({a = 1} = {});
	//
	Initializer *Expr

	JSDoc *JSDoc

	Kind         PropertyKind
	IsComputed   bool
	IsMethod     bool
	IsStatic     bool
	WasShorthand bool
}

type PropertyBinding struct {
	Key          Expr
	Value        Binding
	DefaultValue *Expr
	IsComputed   bool
	IsSpread     bool
}

type Arg struct {
	Binding Binding
	Default *Expr
	JSDoc   *JSDoc
}

type Fn struct {
	Name *Ident
	Args []Arg
	Body FnBody

	IsAsync     bool
	IsGenerator bool
	HasRestArg  bool
}

type FnBody struct {
	Loc   logger.Loc
	Stmts []Stmt
}

type Class struct {
	Name       *Ident
	Extends    *Expr
	BodyLoc    logger.Loc
	Properties []Property
}

type ArrayBinding struct {
	Binding      Binding
	DefaultValue *Expr
}

type Binding struct {
	Loc  logger.Loc
	Data B
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type B interface{ isBinding() }

type BMissing struct{}

type BIdentifier struct {
	Name         string
	OriginalName string
}

type BArray struct {
	Items     []ArrayBinding
	HasSpread bool
}

type BObject struct {
	Properties []PropertyBinding
}

func (*BMissing) isBinding()    {}
func (*BIdentifier) isBinding() {}
func (*BArray) isBinding()      {}
func (*BObject) isBinding()     {}

type Expr struct {
	Loc  logger.Loc
	Data E
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type E interface{ isExpr() }

type EArray struct {
	Items []Expr
}

type EUnary struct {
	Op    OpCode
	Value Expr
}

type EBinary struct {
	Op    OpCode
	Left  Expr
	Right Expr
}

type EBoolean struct{ Value bool }

type ESuper struct{}

type ENewTarget struct{}

type ENull struct{}

type EUndefined struct{}

type EThis struct{}

type ENew struct {
	Target Expr
	Args   []Expr
}

type ECall struct {
	Target Expr
	Args   []Expr

	// True if the call target was written as a plain name ("f()" rather than
	// "a.f()"), which means "this" is undefined inside the callee. If a pass
	// replaces the target with a property access, it must either clear this
	// flag or the printer will keep "this" undefined by printing "(0, a.f)()".
	IsFreeCall bool

	IsOptionalChain bool
}

type EDot struct {
	Target          Expr
	Name            string
	NameLoc         logger.Loc
	IsOptionalChain bool
}

type EIndex struct {
	Target          Expr
	Index           Expr
	IsOptionalChain bool
}

type EArrow struct {
	Args []Arg
	Body FnBody

	IsAsync    bool
	HasRestArg bool
	PreferExpr bool // Use shorthand if true and "Body" is a single return statement
}

type EFunction struct{ Fn Fn }

type EClass struct{ Class Class }

type EIdentifier struct {
	Name         string
	OriginalName string
}

type EMissing struct{}

type ENumber struct{ Value float64 }

type EObject struct {
	Properties []Property
}

type ESpread struct{ Value Expr }

type EString struct {
	Value string
}

type ERegExp struct{ Value string }

type EBigInt struct{ Value string }

type TemplatePart struct {
	Value   Expr
	TailLoc logger.Loc
	TailRaw string
}

// Template literals are printed from their raw text so escapes survive
type ETemplate struct {
	Tag     *Expr
	HeadLoc logger.Loc
	HeadRaw string
	Parts   []TemplatePart
}

type EAwait struct {
	Value Expr
}

type EYield struct {
	Value  *Expr
	IsStar bool
}

type EIf struct {
	Test Expr
	Yes  Expr
	No   Expr
}

func (*EArray) isExpr()      {}
func (*EUnary) isExpr()      {}
func (*EBinary) isExpr()     {}
func (*EBoolean) isExpr()    {}
func (*ESuper) isExpr()      {}
func (*ENewTarget) isExpr()  {}
func (*ENull) isExpr()       {}
func (*EUndefined) isExpr()  {}
func (*EThis) isExpr()       {}
func (*ENew) isExpr()        {}
func (*ECall) isExpr()       {}
func (*EDot) isExpr()        {}
func (*EIndex) isExpr()      {}
func (*EArrow) isExpr()      {}
func (*EFunction) isExpr()   {}
func (*EClass) isExpr()      {}
func (*EIdentifier) isExpr() {}
func (*EMissing) isExpr()    {}
func (*ENumber) isExpr()     {}
func (*EObject) isExpr()     {}
func (*ESpread) isExpr()     {}
func (*EString) isExpr()     {}
func (*ERegExp) isExpr()     {}
func (*EBigInt) isExpr()     {}
func (*ETemplate) isExpr()   {}
func (*EAwait) isExpr()      {}
func (*EYield) isExpr()      {}
func (*EIf) isExpr()         {}

type ExprOrStmt struct {
	Expr *Expr
	Stmt *Stmt
}

type Stmt struct {
	Loc  logger.Loc
	Data S
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type S interface{ isStmt() }

type SBlock struct {
	Stmts []Stmt
}

type SDebugger struct{}

type SEmpty struct{}

type SDirective struct {
	Value string
}

// "export {a, b as c}"
type SExportClause struct {
	Items []ClauseItem
}

// "export {a, b as c} from 'path'"
type SExportFrom struct {
	Items     []ClauseItem
	Path      string
	PathRange logger.Range
}

type SExportDefault struct {
	Value ExprOrStmt // May be a SFunction or SClass
}

// "export * from 'path'" or "export * as ns from 'path'"
type SExportStar struct {
	Alias     *Ident
	Path      string
	PathRange logger.Range
}

type SExpr struct {
	Value Expr
	JSDoc *JSDoc
}

type SFunction struct {
	Fn       Fn
	IsExport bool
	JSDoc    *JSDoc
}

type SClass struct {
	Class    Class
	IsExport bool
	JSDoc    *JSDoc
}

type SLabel struct {
	Name Ident
	Stmt Stmt
}

type SIf struct {
	Test Expr
	Yes  Stmt
	No   *Stmt
}

type SFor struct {
	Init   *Stmt // May be a SLocal or SExpr
	Test   *Expr
	Update *Expr
	Body   Stmt
}

type SForIn struct {
	Init  Stmt // May be a SLocal or SExpr
	Value Expr
	Body  Stmt
}

type SForOf struct {
	IsAwait bool
	Init    Stmt // May be a SLocal or SExpr
	Value   Expr
	Body    Stmt
}

type SDoWhile struct {
	Body Stmt
	Test Expr
}

type SWhile struct {
	Test Expr
	Body Stmt
}

type Catch struct {
	Loc     logger.Loc
	Binding *Binding
	Body    []Stmt
}

type Finally struct {
	Loc   logger.Loc
	Stmts []Stmt
}

type STry struct {
	Body    []Stmt
	Catch   *Catch
	Finally *Finally
}

type Case struct {
	Value *Expr
	Body  []Stmt
}

type SSwitch struct {
	Test    Expr
	BodyLoc logger.Loc
	Cases   []Case
}

// This object represents all of these types of import statements:
//
//	import 'path'
//	import {item1, item2} from 'path'
//	import * as ns from 'path'
//	import defaultItem, {item1, item2} from 'path'
//	import defaultItem, * as ns from 'path'
//
// Many parts are optional and can be combined in different ways. The only
// restriction is that you cannot have both a clause and a star namespace.
type SImport struct {
	DefaultName *Ident
	Items       *[]ClauseItem
	Namespace   *Ident
	Path        string
	PathRange   logger.Range
}

type SReturn struct {
	Value *Expr
}

type SThrow struct {
	Value Expr
}

type LocalKind uint8

const (
	LocalVar LocalKind = iota
	LocalLet
	LocalConst
)

func (kind LocalKind) Keyword() string {
	switch kind {
	case LocalLet:
		return "let"
	case LocalConst:
		return "const"
	default:
		return "var"
	}
}

type SLocal struct {
	Decls    []Decl
	Kind     LocalKind
	IsExport bool
	JSDoc    *JSDoc
}

type SBreak struct {
	Label *Ident
}

type SContinue struct {
	Label *Ident
}

func (*SBlock) isStmt()         {}
func (*SEmpty) isStmt()         {}
func (*SDebugger) isStmt()      {}
func (*SDirective) isStmt()     {}
func (*SExportClause) isStmt()  {}
func (*SExportFrom) isStmt()    {}
func (*SExportDefault) isStmt() {}
func (*SExportStar) isStmt()    {}
func (*SExpr) isStmt()          {}
func (*SFunction) isStmt()      {}
func (*SClass) isStmt()         {}
func (*SLabel) isStmt()         {}
func (*SIf) isStmt()            {}
func (*SFor) isStmt()           {}
func (*SForIn) isStmt()         {}
func (*SForOf) isStmt()         {}
func (*SDoWhile) isStmt()       {}
func (*SWhile) isStmt()         {}
func (*STry) isStmt()           {}
func (*SSwitch) isStmt()        {}
func (*SImport) isStmt()        {}
func (*SReturn) isStmt()        {}
func (*SThrow) isStmt()         {}
func (*SLocal) isStmt()         {}
func (*SBreak) isStmt()         {}
func (*SContinue) isStmt()      {}

type ClauseItem struct {
	// For imports this is the name exported by the other module. For exports
	// this is the name other modules see.
	Alias    string
	AliasLoc logger.Loc

	// The local name
	Name Ident
}

type Decl struct {
	Binding Binding
	Value   *Expr
}

func Assign(a Expr, b Expr) Expr {
	return Expr{Loc: a.Loc, Data: &EBinary{Op: BinOpAssign, Left: a, Right: b}}
}

// Builds "a.b.c" from ["a", "b", "c"]
func DottedName(loc logger.Loc, parts []string) Expr {
	value := Expr{Loc: loc, Data: &EIdentifier{Name: parts[0]}}
	for _, part := range parts[1:] {
		value = Expr{Loc: loc, Data: &EDot{Target: value, Name: part, NameLoc: loc}}
	}
	return value
}

// Returns the name of the identifier at the base of a chain of property
// accesses, or false if the chain starts with something else
func BaseIdentifier(expr Expr) (*EIdentifier, bool) {
	for {
		switch e := expr.Data.(type) {
		case *EIdentifier:
			return e, true
		case *EDot:
			expr = e.Target
		default:
			return nil, false
		}
	}
}

type AST struct {
	Hashbang string
	Stmts    []Stmt
}
