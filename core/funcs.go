package core

import (
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateFuncs is the function map every template is parsed with: sprig's
// html-safe set plus the app helpers.
func TemplateFuncs() template.FuncMap {
	funcs := sprig.HtmlFuncMap()

	funcs["props"] = func(values ...interface{}) map[string]interface{} {
		if len(values)%2 != 0 {
			panic("props must be called with even number of arguments")
		}
		m := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				panic("props keys must be strings")
			}
			m[key] = values[i+1]
		}
		return m
	}

	funcs["safeHTML"] = func(s interface{}) template.HTML {
		switch val := s.(type) {
		case template.HTML:
			return val
		case string:
			return template.HTML(val)
		default:
			return ""
		}
	}

	return funcs
}
