package merge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Kind is the element type shared by every value of one variable. It is
// selected once when the variable is created and never inferred again.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
	KindCurrency
	KindDate
	KindUndefined
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindInteger:
		return "Integer"
	case KindReal:
		return "Real"
	case KindCurrency:
		return "Currency"
	case KindDate:
		return "Date"
	default:
		return "Undefined"
	}
}

func KindFromString(value string) Kind {
	switch value {
	case "Text":
		return KindText
	case "Integer":
		return KindInteger
	case "Real":
		return KindReal
	case "Currency":
		return KindCurrency
	case "Date":
		return KindDate
	default:
		return KindUndefined
	}
}

// dateLayout matches the ISO dates stored in template defaults and payloads.
const dateLayout = "2006-01-02"

// fullDateLayout is the long localized date format used when rendering.
const fullDateLayout = "2 de January de 2006"

var printer = message.NewPrinter(language.MustParse("es-MX"))

// Value is one element of a variable: a closed tagged variant carrying its
// own parse and format behavior.
type Value struct {
	kind    Kind
	text    string
	integer int64
	real    float64
	amount  decimal.Decimal
	date    time.Time
}

func textValue(s string) Value { return Value{kind: KindText, text: s} }

func integerValue(i int64) Value { return Value{kind: KindInteger, integer: i} }

func realValue(f float64) Value { return Value{kind: KindReal, real: f} }

func currencyValue(d decimal.Decimal) Value { return Value{kind: KindCurrency, amount: d} }

func dateValue(t time.Time) Value { return Value{kind: KindDate, date: t} }

func (k Kind) parse(s string) (Value, error) {
	switch k {
	case KindText:
		return textValue(s), nil
	case KindInteger:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, err
		}
		return integerValue(i), nil
	case KindReal:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, err
		}
		return realValue(f), nil
	case KindCurrency:
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return Value{}, err
		}
		return currencyValue(d), nil
	case KindDate:
		t, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return Value{}, err
		}
		return dateValue(t), nil
	default:
		return Value{}, fmt.Errorf("cannot parse value for undefined kind")
	}
}

// Format renders the value with the default formatting rules: Text verbatim,
// Integer thousands-grouped, Real grouped with 2 decimals, Currency grouped
// with 2 decimals behind "$", Date as a long localized date.
func (v Value) Format() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return printer.Sprintf("%v", number.Decimal(v.integer))
	case KindReal:
		return printer.Sprintf("%v", number.Decimal(v.real,
			number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	case KindCurrency:
		return printer.Sprintf("$%v", number.Decimal(v.amount.InexactFloat64(),
			number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	case KindDate:
		return monday.Format(v.date, fullDateLayout, monday.LocaleEsES)
	default:
		return ""
	}
}

// Var holds one named, homogeneously-typed list of values. Values is never
// empty: parse failures degrade to a single human-readable error text so a
// malformed default never aborts template loading.
type Var struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Field describes one default field of a template catalog schema.
type Field struct {
	Name         string
	Type         Kind
	DefaultValue string
}

func errorVar(name, text string) Var {
	return Var{Name: name, Kind: KindText, Values: []Value{textValue(text)}}
}

func formatErrorVar(name string) Var {
	return errorVar(name, fmt.Sprintf("ERROR en el formato '%s' del valor de 'default' definido en el template", name))
}

// FromField builds a variable from a catalog field, parsing the
// semicolon-delimited default value into the field's element type.
func FromField(f Field) Var {
	if f.Type == KindUndefined {
		return errorVar(f.Name, "Tipo no definido")
	}

	if f.DefaultValue == "" {
		var seed Value
		switch f.Type {
		case KindText:
			seed = textValue("no definido")
		case KindInteger:
			seed = integerValue(-1)
		case KindReal:
			seed = realValue(-1)
		case KindCurrency:
			seed = currencyValue(decimal.Zero)
		case KindDate:
			seed = dateValue(time.Now())
		}
		return Var{Name: f.Name, Kind: f.Type, Values: []Value{seed}}
	}

	parts := strings.Split(f.DefaultValue, ";")
	values := make([]Value, 0, len(parts))
	for _, part := range parts {
		value, err := f.Type.parse(part)
		if err != nil {
			return formatErrorVar(f.Name)
		}
		values = append(values, value)
	}

	return Var{Name: f.Name, Kind: f.Type, Values: values}
}

// FromJSONValue builds a variable from one decoded JSON scalar. Strings
// split on ";" into Text elements, integers become Integer, any other
// number becomes a Currency-capable decimal. Unsupported shapes (booleans,
// nulls, unflattened objects) degrade to an error-text variable.
func FromJSONValue(name string, value any) Var {
	switch v := value.(type) {
	case string:
		parts := strings.Split(v, ";")
		values := make([]Value, 0, len(parts))
		for _, part := range parts {
			values = append(values, textValue(part))
		}
		return Var{Name: name, Kind: KindText, Values: values}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Var{Name: name, Kind: KindInteger, Values: []Value{integerValue(i)}}
		}
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return formatErrorVar(name)
		}
		return Var{Name: name, Kind: KindCurrency, Values: []Value{currencyValue(d)}}
	case int:
		return Var{Name: name, Kind: KindInteger, Values: []Value{integerValue(int64(v))}}
	case int64:
		return Var{Name: name, Kind: KindInteger, Values: []Value{integerValue(v)}}
	case float64:
		return Var{Name: name, Kind: KindCurrency, Values: []Value{currencyValue(decimal.NewFromFloat(v))}}
	default:
		return formatErrorVar(name)
	}
}

// IsArray reports whether the variable expands to a table when merged.
func (v *Var) IsArray() bool {
	return len(v.Values) > 1
}

// Format renders the value at index. Callers must check the index; an
// out-of-range index is a contract violation.
func (v *Var) Format(index int) string {
	if index < 0 || index >= len(v.Values) {
		panic(fmt.Sprintf("merge: value index %d out of range for variable %q", index, v.Name))
	}
	return v.Values[index].Format()
}

// Rebind re-parses a semicolon-delimited string into the variable's
// existing element type. The update is atomic: if any element fails to
// parse, the previous values are left untouched and an error is returned.
func (v *Var) Rebind(delimited string) error {
	parts := strings.Split(delimited, ";")
	values := make([]Value, 0, len(parts))
	for _, part := range parts {
		value, err := v.Kind.parse(part)
		if err != nil {
			return &VariableFormatError{Name: v.Name, Value: part}
		}
		values = append(values, value)
	}

	v.Values = values
	return nil
}
