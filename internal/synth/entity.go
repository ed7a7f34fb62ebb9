package synth

import (
	"errors"
	"fmt"

	"github.com/asyncgen/asyncgen/internal/schema"
	"github.com/asyncgen/asyncgen/internal/typeresolve"
)

// EntitySynthesizer turns named entities into class and enum declarations.
type EntitySynthesizer struct {
	resolver *typeresolve.Resolver
}

// NewEntitySynthesizer creates an EntitySynthesizer using resolver for
// member types.
func NewEntitySynthesizer(resolver *typeresolve.Resolver) *EntitySynthesizer {
	return &EntitySynthesizer{resolver: resolver}
}

// Synthesize returns one declaration per entity, in input order. An entity
// that fails is left out and its error joined into the returned error; the
// other entities are unaffected.
func (s *EntitySynthesizer) Synthesize(entities []schema.NamedEntity) ([]Declaration, error) {
	decls := make([]Declaration, 0, len(entities))
	var errs []error
	for _, entity := range entities {
		decl, err := s.Entity(entity)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		decls = append(decls, decl)
	}
	return decls, errors.Join(errs...)
}

// Entity synthesizes a single declaration.
func (s *EntitySynthesizer) Entity(entity schema.NamedEntity) (Declaration, error) {
	if entity.Schema == nil {
		return Declaration{}, &schema.MappingError{Name: entity.Name, Reason: "entity has no schema"}
	}
	if entity.Schema.IsEnum() {
		return enumDeclaration(entity)
	}
	return s.classDeclaration(entity)
}

func enumDeclaration(entity schema.NamedEntity) (Declaration, error) {
	node := entity.Schema
	if len(node.EnumNames) != len(node.EnumValues) {
		return Declaration{}, &schema.MappingError{
			Name:    entity.Name,
			Pointer: node.Pointer,
			Reason:  fmt.Sprintf("%d enum names for %d enum values", len(node.EnumNames), len(node.EnumValues)),
		}
	}

	decl := Declaration{Kind: DeclEnum, Name: entity.Name}
	for i, name := range node.EnumNames {
		decl.Members = append(decl.Members, Member{Name: name, Value: node.EnumValues[i]})
	}
	return decl, nil
}

func (s *EntitySynthesizer) classDeclaration(entity schema.NamedEntity) (Declaration, error) {
	decl := Declaration{Kind: DeclClass, Name: entity.Name}
	for _, prop := range entity.Schema.Properties {
		typ, err := s.resolver.Resolve(prop.Schema)
		if err != nil {
			return Declaration{}, memberError(entity.Name+"."+prop.Name, err)
		}
		decl.Members = append(decl.Members, Member{Name: prop.Name, Type: typ})
	}
	return decl, nil
}

// memberError attributes a resolution error to the member that caused it.
func memberError(member string, err error) error {
	var mapping *schema.MappingError
	if errors.As(err, &mapping) && mapping.Name == "" {
		named := *mapping
		named.Name = member
		return &named
	}
	return fmt.Errorf("%s: %w", member, err)
}
