package merge

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"
)

const (
	// markerTag is the dedicated element that marks a substitution point.
	markerTag = "mark"
	// inertTag is what markers are demoted to once substituted, so they are
	// never re-scanned or re-edited downstream.
	inertTag = "span"
	// attrVarName stamps the resolved variable name onto the replacement.
	attrVarName = "varname"
	// markerClass is the editor highlight dropped on substitution.
	markerClass = "marker-yellow"
	// arrayValueKey is the field every element of an array-valued JSON
	// variable must carry.
	arrayValueKey = "valor"
)

// Engine merges one HTML template with a set of typed variables. The raw
// template content is kept so the same engine can be re-bound and
// re-processed for batch runs.
type Engine struct {
	content string
	vars    map[string]*Var
	statics *StaticTable
}

// NewEngineFromJSON seeds the variable set from a JSON object. Nested
// objects are flattened into dotted-path variable names.
func NewEngineFromJSON(content string, jsonVars string) (*Engine, error) {
	e := &Engine{content: content, vars: make(map[string]*Var), statics: Statics}

	dec := json.NewDecoder(strings.NewReader(jsonVars))
	dec.UseNumber()

	var elements map[string]any
	if err := dec.Decode(&elements); err != nil {
		return nil, &BadJSONError{Err: err}
	}

	for name, value := range elements {
		e.initVar(name, value)
	}

	return e, nil
}

// NewEngineFromFields seeds the variable set from a template's default
// field schema instead of request data.
func NewEngineFromFields(content string, fields []Field) *Engine {
	e := &Engine{content: content, vars: make(map[string]*Var), statics: Statics}

	for _, field := range fields {
		v := FromField(field)
		e.vars[v.Name] = &v
	}

	return e
}

// WithStatics replaces the static variable table, mainly for tests.
func (e *Engine) WithStatics(statics *StaticTable) *Engine {
	e.statics = statics
	return e
}

func (e *Engine) initVar(name string, value any) {
	if nested, ok := value.(map[string]any); ok {
		// use dot notation for nested objects
		for key, nestedValue := range nested {
			e.initVar(name+"."+key, nestedValue)
		}
		return
	}

	v := FromJSONValue(name, value)
	e.vars[name] = &v
}

// Var returns the named variable of the merge context.
func (e *Engine) Var(name string) (*Var, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// SetVariables rebinds every known variable from the request payload.
// Array-valued fields are joined with ";" before rebinding; a missing field
// or an unparsable value aborts before any substitution happens.
func (e *Engine) SetVariables(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return &BadJSONError{Err: err}
	}

	for name, v := range e.vars {
		raw, ok := payload[name]
		if !ok {
			return &VariableNotFoundError{Name: name}
		}

		if items, isArray := raw.([]any); isArray {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				obj, isObject := item.(map[string]any)
				if !isObject {
					return &VariableNotFoundError{Name: name}
				}
				value, hasValue := obj[arrayValueKey].(string)
				if !hasValue {
					return &VariableNotFoundError{Name: name}
				}
				parts = append(parts, value)
			}
			if err := v.Rebind(strings.Join(parts, ";")); err != nil {
				return err
			}
			continue
		}

		if err := v.Rebind(asText(raw)); err != nil {
			return err
		}
	}

	return nil
}

func asText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}

// SetVariablesAndProcess rebinds every variable from the payload and then
// runs the merge in render mode.
func (e *Engine) SetVariablesAndProcess(data []byte) (string, error) {
	if err := e.SetVariables(data); err != nil {
		return "", err
	}

	return e.Render()
}

// Render substitutes all markers leniently: an unknown variable is inlined
// as an error text and the merge still serializes.
func (e *Engine) Render() (string, error) {
	return e.process(false)
}

// Validate substitutes all markers strictly: the first unknown variable
// aborts the merge with VariableNotFoundError. Used to check a template's
// completeness before real data is fetched.
func (e *Engine) Validate() (string, error) {
	return e.process(true)
}

func (e *Engine) process(validate bool) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(e.content))
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var procErr error
	doc.Find(markerTag).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		procErr = e.substitute(el, validate)
		return procErr == nil
	})
	if procErr != nil {
		return "", procErr
	}

	// MS-Word exported documents mark variables as bold [name] tokens.
	doc.Find("b").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if hasDelimiters(strings.TrimSpace(el.Text()), "[", "]") {
			procErr = e.substitute(el, validate)
		}
		return procErr == nil
	})
	if procErr != nil {
		return "", procErr
	}

	return doc.Html()
}

type resolutionKind int

const (
	resolvedScalar resolutionKind = iota
	resolvedTable
	unresolvedInline
)

// resolution is the outcome of resolving one marker, making the
// lenient-vs-strict behavior an explicit branch.
type resolution struct {
	kind     resolutionKind
	text     string
	variable *Var
}

func (e *Engine) resolve(name string, validate bool) (resolution, error) {
	if strings.HasPrefix(name, "@") {
		value, ok := e.statics.Get(strings.TrimPrefix(name, "@"))
		if !ok {
			return resolution{kind: unresolvedInline,
				text: fmt.Sprintf("Error: variable estática %s no definida", name)}, nil
		}
		return resolution{kind: resolvedScalar, text: value}, nil
	}

	v, ok := e.vars[name]
	if !ok {
		if validate {
			return resolution{}, &VariableNotFoundError{Name: name}
		}
		return resolution{kind: unresolvedInline,
			text: fmt.Sprintf("Error: variable no definida '%s'", name)}, nil
	}

	if v.IsArray() {
		return resolution{kind: resolvedTable, variable: v}, nil
	}
	return resolution{kind: resolvedScalar, text: v.Format(0)}, nil
}

func (e *Engine) substitute(el *goquery.Selection, validate bool) error {
	raw := strings.TrimSpace(el.Text())

	name := raw
	if hasDelimiters(name, "[", "]") {
		name = deleteDelimiters(name, 1)
	}

	res, err := e.resolve(name, validate)
	if err != nil {
		return err
	}

	demote(el)
	switch res.kind {
	case resolvedTable:
		expandToTable(el, res.variable)
	default:
		el.SetText(res.text)
		el.SetAttr(attrVarName, raw)
	}

	return nil
}

func hasDelimiters(token, prefix, suffix string) bool {
	return len(token) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(token, prefix) && strings.HasSuffix(token, suffix)
}

func deleteDelimiters(token string, index int) string {
	return token[index : len(token)-index]
}

// demote turns the marker into an inert span so it does nothing downstream.
// Data and DataAtom must stay consistent or net/html refuses to parse
// fragments in the node's context.
func demote(el *goquery.Selection) {
	el.RemoveClass(markerClass)
	for _, node := range el.Nodes {
		node.Data = inertTag
		node.DataAtom = atom.Span
	}
}

// expandToTable lays the variable's values out two per row, each cell
// wrapping the formatted value in a paragraph stamped with the variable
// name. An odd count leaves the last row's second cell absent.
func expandToTable(el *goquery.Selection, v *Var) {
	var b strings.Builder

	// keep the whole table on one printed page
	b.WriteString(`<table style="page-break-inside: avoid;">`)
	for i := range v.Values {
		if i%2 == 0 {
			if i > 0 {
				b.WriteString(`</tr>`)
			}
			b.WriteString(`<tr valign="top">`)
		}
		b.WriteString(`<td><p><span ` + attrVarName + `="`)
		b.WriteString(html.EscapeString(v.Name))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(v.Format(i)))
		b.WriteString(`</span></p></td>`)
	}
	b.WriteString(`</tr></table>`)

	el.SetHtml(b.String())
}
