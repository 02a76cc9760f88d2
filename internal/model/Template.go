package model

import (
	"encoding/json"
)

type Destination string

const (
	DestinationEmail     Destination = "Email"
	DestinationReport    Destination = "Report"
	DestinationSMS       Destination = "SMS"
	DestinationWeb       Destination = "Web"
	DestinationOther     Destination = "Other"
	DestinationUndefined Destination = "Undefined"
)

func DestinationFromString(value string) Destination {
	switch Destination(value) {
	case DestinationEmail, DestinationReport, DestinationSMS, DestinationWeb, DestinationOther:
		return Destination(value)
	default:
		return DestinationUndefined
	}
}

// Template is the catalog entity for a stored letter template. The raw HTML
// body itself lives in the document store under ContentRef; Fields holds the
// JSON-encoded default field schema used to pre-validate a template before
// real data is available.
type Template struct {
	BaseModel
	Name        string      `gorm:"type:text;not null;uniqueIndex" json:"name" form:"name" binding:"required"`
	ContentRef  string      `gorm:"type:text;not null" json:"contentRef" form:"contentRef" binding:"required"`
	Destination Destination `gorm:"type:text;not null;default:Email" json:"destination" form:"destination"`
	Fields      string      `gorm:"type:text" json:"fields" form:"fields"`
	Author      string      `gorm:"type:text;not null" json:"author" form:"author"`
	Active      bool        `gorm:"type:boolean;not null;default:true" json:"active" form:"active"`
}

func (t Template) TableName() string {
	return "templates"
}

// FieldSchema decodes the default field schema stored in Fields. An empty
// column yields an empty schema, not an error.
func (t Template) FieldSchema() ([]TemplateField, error) {
	if t.Fields == "" {
		return []TemplateField{}, nil
	}

	var fields []TemplateField
	if err := json.Unmarshal([]byte(t.Fields), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

type FieldType string

const (
	FieldText      FieldType = "Text"
	FieldInteger   FieldType = "Integer"
	FieldReal      FieldType = "Real"
	FieldCurrency  FieldType = "Currency"
	FieldDate      FieldType = "Date"
	FieldUndefined FieldType = "Undefined"
)

func FieldTypeFromString(value string) FieldType {
	switch FieldType(value) {
	case FieldText, FieldInteger, FieldReal, FieldCurrency, FieldDate:
		return FieldType(value)
	default:
		return FieldUndefined
	}
}

// TemplateField describes one default field of a template. DefaultValue is a
// semicolon-delimited string encoding one or more default elements.
type TemplateField struct {
	Name         string    `json:"name"`
	Type         FieldType `json:"type"`
	DefaultValue string    `json:"defaultValue"`
}
