package domain

import (
	"fmt"
	"strings"
)

// PropertyDescriptor describes one field of the domain class plus the derived
// literals the generated code needs: an empty fallback value and a seed value
// for generated tests. Empty and test values are pure functions of the type
// and are fixed at construction.
type PropertyDescriptor struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	DefaultValue string `json:"defaultValue"`
	EmptyValue   string `json:"emptyValue"`
	TestValue    string `json:"testValue"`
}

// NewPropertyDescriptor derives the empty and test literals for the declared
// type. The default value is the initializer's source text, kept verbatim
// apart from surrounding whitespace. Types outside the supported set are a
// configuration error and fail immediately.
func NewPropertyDescriptor(name, typeName, defaultValue string) (PropertyDescriptor, error) {
	p := PropertyDescriptor{
		Name:         name,
		Type:         typeName,
		DefaultValue: strings.TrimSpace(defaultValue),
	}

	switch typeName {
	case "String":
		p.EmptyValue = `''`
		p.TestValue = `'testString'`
	case "int":
		p.EmptyValue = "0"
		p.TestValue = "1"
	case "double":
		p.EmptyValue = "0"
		p.TestValue = "1"
	case "bool":
		p.EmptyValue = "false"
		p.TestValue = "true"
	default:
		return PropertyDescriptor{}, &MalformedDomainError{
			Reason: fmt.Sprintf("unsupported type %q for field %q (supported: String, int, double, bool)", typeName, name),
		}
	}

	return p, nil
}

// DomainInfo is the parsed domain model: the single class name and its fields
// in declaration order. Field order drives generated field and column order.
type DomainInfo struct {
	Name   string               `json:"name"`
	Fields []PropertyDescriptor `json:"fields"`
}
