package asset

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// sourceFuncs are the functions available to source identifiers.
var sourceFuncs = sprig.TxtFuncMap()

// expandTemplate renders one source identifier against the manifest vars.
// Referencing an undeclared var is an error.
func expandTemplate(source string, vars map[string]string) (string, error) {
	if !strings.Contains(source, "{{") {
		return source, nil
	}

	tmpl, err := template.New(source).
		Funcs(sourceFuncs).
		Option("missingkey=error").
		Parse(source)
	if err != nil {
		return "", fmt.Errorf("parsing source template: %w", err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, vars); err != nil {
		return "", fmt.Errorf("expanding source template: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
