package debugui

import (
	"reflect"
	"sync"
)

// Widget is how the inspector shows a field.
type Widget uint8

const (
	// WidgetText shows the formatted value read-only.
	WidgetText Widget = iota
	// WidgetFloat is an editable float32.
	WidgetFloat
	// WidgetVector is an editable float32 array of up to four elements.
	WidgetVector
	// WidgetNested expands an embedded struct value.
	WidgetNested
	// WidgetHidden fields are shown elsewhere or not at all.
	WidgetHidden
)

// FieldInfo is one exported field and its widget.
type FieldInfo struct {
	Name   string
	Index  int
	Widget Widget
}

// FieldLayout caches the inspector layout of struct types.
type FieldLayout struct {
	layouts sync.Map // reflect.Type -> []FieldInfo
}

func NewFieldLayout() *FieldLayout {
	return &FieldLayout{}
}

// Fields returns the exported fields of t, which may be a pointer to a
// struct. Non-struct types have no fields.
func (l *FieldLayout) Fields(t reflect.Type) []FieldInfo {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := l.layouts.Load(t); ok {
		return cached.([]FieldInfo)
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			f := t.Field(i)
			if f.IsExported() {
				fields = append(fields, FieldInfo{Name: f.Name, Index: i, Widget: widgetFor(f.Type)})
			}
		}
	}

	actual, _ := l.layouts.LoadOrStore(t, fields)
	return actual.([]FieldInfo)
}

func widgetFor(t reflect.Type) Widget {
	switch t.Kind() {
	case reflect.Float32:
		return WidgetFloat
	case reflect.Array:
		if t.Len() <= 4 && t.Elem().Kind() == reflect.Float32 {
			return WidgetVector
		}
	case reflect.Struct:
		return WidgetNested
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return WidgetHidden
	}
	return WidgetText
}

var inspectorLayout = NewFieldLayout()
