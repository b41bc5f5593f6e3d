package js_ast

import "github.com/concatjs/concatjs/internal/logger"

// A parsed "/** ... */" comment. Only the tags are structured. Everything else
// is kept as text and printed back out unchanged.
type JSDoc struct {
	Loc         logger.Loc
	Description string
	Tags        []JSDocTag

	// Set for an inline annotation such as "function f(/** number */ x)"
	// where the whole comment is a single type expression
	InlineType *Type
}

type JSDocTag struct {
	Name string // Without the leading "@"

	// This is present for tags followed by a "{...}" type expression
	Type *Type

	// The text between the braces if it could not be parsed as a type
	RawType string

	// "@extends Foo" is allowed to omit the braces around the type
	TypeWithoutBraces bool

	// Whatever follows the tag and its type. Continuation lines are separated
	// by newlines.
	Text string
}

func (doc *JSDoc) Tag(name string) *JSDocTag {
	for i := range doc.Tags {
		if doc.Tags[i].Name == name {
			return &doc.Tags[i]
		}
	}
	return nil
}

// A Closure type expression such as "!Array<string>|undefined"
type Type struct {
	Loc  logger.Loc
	Data T
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type T interface{ isType() }

// "*"
type TAll struct{}

// "?" on its own
type TUnknown struct{}

// A possibly-dotted name with optional type arguments: "foo.Bar<string>".
// Renaming a type reference only ever touches "Name". "OriginalName" keeps
// what was written for every reference the renamer visits.
type TName struct {
	Name         string
	OriginalName string
	Args         []Type
}

// "(A|B)"
type TUnion struct {
	Types []Type
}

// "{a: number, b}"
type TRecord struct {
	Fields []TRecordField
}

type TRecordField struct {
	Key   string
	Value *Type
}

// "function(this:T, A, B=): R"
type TFunction struct {
	This   *Type
	New    *Type
	Params []Type
	Result *Type
}

type TModifierOp uint8

const (
	TNullable    TModifierOp = iota // "?T"
	TNonNullable                    // "!T"
	TOptional                       // "T="
	TRest                           // "...T"
)

type TModifier struct {
	Op    TModifierOp
	Value Type
}

func (*TAll) isType()      {}
func (*TUnknown) isType()  {}
func (*TName) isType()     {}
func (*TUnion) isType()    {}
func (*TRecord) isType()   {}
func (*TFunction) isType() {}
func (*TModifier) isType() {}

// Calls "visit" on every type name in "t", innermost arguments last
func VisitTypeNames(t *Type, visit func(loc logger.Loc, name *TName)) {
	switch d := t.Data.(type) {
	case *TName:
		visit(t.Loc, d)
		for i := range d.Args {
			VisitTypeNames(&d.Args[i], visit)
		}

	case *TUnion:
		for i := range d.Types {
			VisitTypeNames(&d.Types[i], visit)
		}

	case *TRecord:
		for _, field := range d.Fields {
			if field.Value != nil {
				VisitTypeNames(field.Value, visit)
			}
		}

	case *TFunction:
		if d.This != nil {
			VisitTypeNames(d.This, visit)
		}
		if d.New != nil {
			VisitTypeNames(d.New, visit)
		}
		for i := range d.Params {
			VisitTypeNames(&d.Params[i], visit)
		}
		if d.Result != nil {
			VisitTypeNames(d.Result, visit)
		}

	case *TModifier:
		VisitTypeNames(&d.Value, visit)
	}
}
