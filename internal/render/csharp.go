// Package render turns synthesized declarations into C# source text.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/asyncgen/asyncgen/internal/synth"
)

const indent = "    "

// DefaultNamespace is used when neither the config nor the document title
// yields a namespace.
const DefaultNamespace = "Generated"

// HandlerOptions controls the handlers file.
type HandlerOptions struct {
	Namespace string
	ClassName string   // e.g. "Handlers"
	Usings    []string // namespaces imported at the top of the file
}

// FileName returns the file a declaration is written to.
func FileName(decl synth.Declaration) string {
	return decl.Name + ".cs"
}

// Declaration renders one class or enum in its own namespace block.
func Declaration(decl synth.Declaration, namespace string) string {
	var sb strings.Builder
	if decl.Kind == synth.DeclClass {
		sb.WriteString("using System;\n\n")
	}
	fmt.Fprintf(&sb, "namespace %s\n{\n", namespace)
	fmt.Fprintf(&sb, "%spublic %s %s\n%s{\n", indent, decl.Kind, decl.Name, indent)
	for _, m := range decl.Members {
		switch decl.Kind {
		case synth.DeclEnum:
			fmt.Fprintf(&sb, "%s%s%s = %s,\n", indent, indent, m.Name, m.Value)
		default:
			fmt.Fprintf(&sb, "%s%spublic %s %s { get; set; }\n", indent, indent, m.Type, m.Name)
		}
	}
	fmt.Fprintf(&sb, "%s}\n}\n", indent)
	return sb.String()
}

// Handlers renders the handler class for a module.
func Handlers(module *synth.HandlerModule, opts HandlerOptions) string {
	var sb strings.Builder
	for _, u := range opts.Usings {
		fmt.Fprintf(&sb, "using %s;\n", u)
	}
	if len(opts.Usings) > 0 {
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "namespace %s\n{\n", opts.Namespace)
	fmt.Fprintf(&sb, "%s[IntegrationEventSource(%q)]\n", indent, "/"+module.Source)
	fmt.Fprintf(&sb, "%s[IntegrationEventTypePrefix(%q)]\n", indent, module.Prefix)
	fmt.Fprintf(&sb, "%spublic class %s\n%s{\n", indent, opts.ClassName, indent)

	in := indent + indent
	for i, h := range module.Handlers {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s[HandleIntegrationEvent(%q, 1)]\n", in, h.RoutingKey)
		fmt.Fprintf(&sb, "%spublic async Task %s(%s message)\n", in, h.OperationID, h.PayloadType)
		fmt.Fprintf(&sb, "%s{\n", in)
		fmt.Fprintf(&sb, "%s%s// TODO: Handle %s message\n", in, indent, h.PayloadType)
		fmt.Fprintf(&sb, "%s}\n", in)
	}

	fmt.Fprintf(&sb, "%s}\n}\n", indent)
	return sb.String()
}

// Namespace derives a PascalCase namespace from a document title, e.g.
// "order service" -> "OrderService".
func Namespace(title string) string {
	words := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	caser := cases.Title(language.Und, cases.NoLower)

	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(caser.String(w))
	}
	ns := sb.String()
	if ns == "" {
		return DefaultNamespace
	}
	if unicode.IsDigit([]rune(ns)[0]) {
		ns = "_" + ns
	}
	return ns
}
