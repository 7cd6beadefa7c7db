package formfill

import (
	"context"
	"fmt"
	"strings"
)

// FieldKind is the closed normalized type set (spec §4.5 Detect).
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindTel      FieldKind = "tel"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindRange    FieldKind = "range"
	KindFile     FieldKind = "file"
	KindRadio    FieldKind = "radio"
	KindCheckbox FieldKind = "checkbox"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
)

// Field is the normalized, enumerable shape Detect returns.
type Field struct {
	Tag      string
	Kind     FieldKind
	Name     string
	Label    string
	Required bool
	Options  []string
	Ref      string
	Visible  bool
	Value    string
}

var inputTypeToKind = map[string]FieldKind{
	"email":  KindEmail,
	"tel":    KindTel,
	"number": KindNumber,
	"date":   KindDate,
	"range":  KindRange,
	"file":   KindFile,
	"radio":  KindRadio,
	"checkbox": KindCheckbox,
}

func classifyKind(raw RawField) FieldKind {
	tag := strings.ToLower(raw.Tag)
	switch tag {
	case "textarea":
		return KindTextarea
	case "select":
		return KindSelect
	}
	if kind, ok := inputTypeToKind[strings.ToLower(raw.Type)]; ok {
		return kind
	}
	return KindText
}

// resolveLabel implements spec §4.5's label resolution order.
func resolveLabel(raw RawField) string {
	if raw.AriaLabel != "" {
		return raw.AriaLabel
	}
	if raw.LabelFor != "" {
		return raw.LabelFor
	}
	if raw.Placeholder != "" {
		return raw.Placeholder
	}
	if p := strings.TrimSpace(raw.PrecedingText); p != "" && len(p) <= 80 {
		return p
	}
	if raw.Name != "" {
		return raw.Name
	}
	return raw.ID
}

// Detect enumerates interactive fields, assigning stable refs: #id
// preferred, else tag[name="x"], with :nth-of-type(i) appended when several
// fields share the name.
func Detect(ctx context.Context, page Page) ([]Field, error) {
	raws, err := page.Fields(ctx)
	if err != nil {
		return nil, err
	}

	nameOccurrence := map[string]int{}
	nameTotal := map[string]int{}
	for _, raw := range raws {
		nameTotal[raw.Name]++
	}

	fields := make([]Field, 0, len(raws))
	for _, raw := range raws {
		ref := buildRef(raw, nameOccurrence, nameTotal)
		fields = append(fields, Field{
			Tag:      strings.ToLower(raw.Tag),
			Kind:     classifyKind(raw),
			Name:     raw.Name,
			Label:    resolveLabel(raw),
			Required: raw.Required,
			Options:  raw.Options,
			Ref:      ref,
			Visible:  raw.Visible,
			Value:    raw.Value,
		})
	}
	return fields, nil
}

func buildRef(raw RawField, occurrence, total map[string]int) string {
	if raw.ID != "" {
		return "#" + raw.ID
	}
	tag := strings.ToLower(raw.Tag)
	if total[raw.Name] <= 1 {
		return fmt.Sprintf(`%s[name="%s"]`, tag, raw.Name)
	}
	occurrence[raw.Name]++
	return fmt.Sprintf(`%s[name="%s"]:nth-of-type(%d)`, tag, raw.Name, occurrence[raw.Name])
}
