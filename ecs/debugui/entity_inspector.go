package debugui

import (
	"fmt"
	"reflect"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/sky"
)

var durationType = reflect.TypeOf(time.Duration(0))

// FormatValue renders a field value as a single line.
func FormatValue(val reflect.Value) string {
	if !val.IsValid() {
		return "<invalid>"
	}
	if val.Type() == durationType {
		d := time.Duration(val.Int())
		if d == sky.Forever {
			return "forever"
		}
		return d.String()
	}

	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		if val.IsNil() {
			return "nil"
		}
		return FormatValue(val.Elem())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.3f", val.Float())
	case reflect.Array:
		s := "("
		for i := range val.Len() {
			if i > 0 {
				s += ", "
			}
			s += FormatValue(val.Index(i))
		}
		return s + ")"
	case reflect.Slice:
		return fmt.Sprintf("[%d items]", val.Len())
	case reflect.Map:
		return fmt.Sprintf("map[%d items]", val.Len())
	}
	if s, ok := val.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", val.Interface())
}

// EntityInspector shows the fields of the entity selected in the browser.
// Float fields are editable in place.
type EntityInspector struct {
	registry *sky.Registry
	selected func() ecs.EntityId
}

func NewEntityInspector(registry *sky.Registry, selected func() ecs.EntityId) *EntityInspector {
	return &EntityInspector{registry: registry, selected: selected}
}

func (ei *EntityInspector) Render() {
	if !imgui.BeginV("Entity Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	id := ei.selected()
	if id == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	entity := ei.registry.Get(id)
	if entity == nil {
		imgui.Text(fmt.Sprintf("Entity %d is gone", id))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d (serial %d)", id, id.Serial()))
	imgui.Text(fmt.Sprintf("Kind: %s", entity.Motion.Kind))
	imgui.Separator()

	ei.renderStruct(reflect.ValueOf(entity).Elem())

	if len(entity.Sprites) > 0 && imgui.TreeNodeStr("Sprites") {
		for _, s := range entity.Sprites {
			imgui.BulletText(fmt.Sprintf("%s (%s)", s.Name, s.ID))
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (ei *EntityInspector) renderStruct(val reflect.Value) {
	for _, field := range inspectorLayout.Fields(val.Type()) {
		ei.renderField(field, val.Field(field.Index))
	}
}

func (ei *EntityInspector) renderField(field FieldInfo, val reflect.Value) {
	switch {
	case field.Widget == WidgetVector && val.CanAddr():
		imgui.Text(fmt.Sprintf("%s:", field.Name))
		for i := range val.Len() {
			imgui.SameLine()
			imgui.SetNextItemWidth(80)
			imgui.InputFloat(fmt.Sprintf("##%s%d", field.Name, i), val.Index(i).Addr().Interface().(*float32))
		}

	case field.Widget == WidgetFloat && val.CanAddr():
		imgui.Text(fmt.Sprintf("%s:", field.Name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		imgui.InputFloat(fmt.Sprintf("##%s", field.Name), val.Addr().Interface().(*float32))

	case field.Widget == WidgetNested:
		if imgui.TreeNodeStr(field.Name) {
			ei.renderStruct(val)
			imgui.TreePop()
		}

	case field.Widget == WidgetHidden:

	default:
		imgui.Text(fmt.Sprintf("%s: %s", field.Name, FormatValue(val)))
	}
}
