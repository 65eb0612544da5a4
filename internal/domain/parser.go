package domain

import (
	"fmt"

	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
)

// Parse extracts the single domain class and its fields from source text.
// The text is preprocessed into a GraphQL input definition and parsed with a
// conformant parser; the interesting work happens on the resulting tree.
func Parse(input string) (*DomainInfo, error) {
	pre := Preprocess(input)

	doc, report := astparser.ParseGraphqlDocumentString(pre.Document)
	if report.HasErrors() {
		return nil, &MalformedDomainError{Reason: fmt.Sprintf("source does not parse: %v", report)}
	}

	classRef := -1
	classes := 0
	for i := range doc.RootNodes {
		node := &doc.RootNodes[i]
		if node.Kind == ast.NodeKindInputObjectTypeDefinition {
			classes++
			classRef = node.Ref
		}
	}
	if classes != 1 {
		return nil, &MalformedDomainError{
			Reason: fmt.Sprintf("expected exactly one class declaration, found %d", classes),
		}
	}

	def := doc.InputObjectTypeDefinitions[classRef]
	info := &DomainInfo{Name: doc.Input.ByteSliceString(def.Name)}

	for _, ref := range def.InputFieldsDefinition.Refs {
		fieldDef := doc.InputValueDefinitions[ref]
		fieldName := doc.Input.ByteSliceString(fieldDef.Name)

		typeName, err := namedType(&doc, fieldDef.Type)
		if err != nil {
			return nil, err
		}

		init, ok := pre.Initializers[fieldName]
		if !ok {
			return nil, &MalformedDomainError{
				Reason: fmt.Sprintf("field %q has no initializer", fieldName),
			}
		}

		prop, err := NewPropertyDescriptor(fieldName, typeName, init)
		if err != nil {
			return nil, err
		}
		info.Fields = append(info.Fields, prop)
	}

	return info, nil
}

func namedType(doc *ast.Document, typeRef int) (string, error) {
	t := doc.Types[typeRef]
	if t.TypeKind != ast.TypeKindNamed {
		return "", &MalformedDomainError{Reason: "field types must be plain named types"}
	}
	return doc.Input.ByteSliceString(t.Name), nil
}
