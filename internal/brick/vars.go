package brick

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sjhorn/scaffolding/internal/domain"
)

// FeatureVariables builds the variable mapping for the feature brick from a
// parsed domain model. Pure function: repeated runs against the same input
// yield the same mapping.
func FeatureVariables(packageName string, info *domain.DomainInfo) Variables {
	props := make([]map[string]string, 0, len(info.Fields))
	for _, f := range info.Fields {
		props = append(props, map[string]string{
			"name":         f.Name,
			"type":         f.Type,
			"defaultValue": f.DefaultValue,
			"emptyValue":   f.EmptyValue,
			"testValue":    f.TestValue,
		})
	}

	return Variables{
		"package":    packageName,
		"feature":    SnakeCase(info.Name),
		"properties": props,
	}
}

// IndexVariables builds the variable mapping for the home brick that
// aggregates every scaffolded feature. Features are sorted so the mapping is
// stable across runs.
func IndexVariables(packageName string, features []string) Variables {
	sorted := make([]string, len(features))
	copy(sorted, features)
	sort.Strings(sorted)

	return Variables{
		"package":  packageName,
		"features": sorted,
	}
}

// SnakeCase converts a class name to the lowercase underscore token used as
// the feature identifier: ContactForm -> contact_form. Acronym runs stay
// together: HTTPServer -> http_server.
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
