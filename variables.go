package template_installer

import (
	"bytes"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
)

// StringMap is the type of config variables and of the strings of one language.
type StringMap map[string]string

var templateFunctions = template.FuncMap{
	"replace": func(from, to, input string) string { return strings.ReplaceAll(input, from, to) },
	"trim":    func(input string) string { return strings.Trim(input, " \r\n\t") },
	"upper":   strings.ToUpper,
	"lower":   strings.ToLower,
	"base":    filepath.Base,
	"native":  filepath.FromSlash,
}

// ExpandVariables takes a string with template variables like {{.var}} and expands them
// with the given map. If the template is broken, str is returned unchanged.
func ExpandVariables(str string, variables StringMap) string {
	if !strings.Contains(str, "{{") {
		return str
	}
	templ, err := template.New("").Funcs(templateFunctions).Option("missingkey=zero").Parse(str)
	if err != nil {
		log.Warn().Err(err).Str("template", str).Msg("Invalid string template")
		return str
	}
	var buf bytes.Buffer
	if err := templ.Execute(&buf, variables); err != nil {
		log.Warn().Err(err).Str("template", str).Msg("Error executing template")
		return str
	}
	return buf.String()
}

// MergeVariables combines several variable maps into a single one. Duplicate keys will
// be overridden by the value in the last map which has the key.
func MergeVariables(varMaps ...StringMap) StringMap {
	merged := make(StringMap)
	for _, vars := range varMaps {
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged
}
