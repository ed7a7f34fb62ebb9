// Package synth builds language-agnostic declarations from schema entities
// and handler modules from event channels.
package synth

import "github.com/asyncgen/asyncgen/internal/typeresolve"

// DeclKind is the kind of a generated declaration.
type DeclKind int

const (
	DeclClass DeclKind = iota
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Declaration is one fully resolved type declaration.
type Declaration struct {
	Kind    DeclKind
	Name    string
	Members []Member // in output order
}

// Member is a class property (Type set) or an enum constant (Value set).
type Member struct {
	Name  string
	Type  typeresolve.TypeName
	Value string // enum literal, verbatim
}

// HandlerModule is the handler class generated for one channel batch.
type HandlerModule struct {
	Source   string // exchange source shared by all handlers
	Prefix   string // common channel prefix
	Handlers []Handler
	Warnings []error
}

// Handler is one generated handler stub.
type Handler struct {
	RoutingKey  string // channel name without the common prefix
	OperationID string
	PayloadType string
}
