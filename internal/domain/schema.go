package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var ErrUnknownField = errors.New("unknown field")

// FieldSpec 字段元数据（由 Doctor 的 struct tag 派生）
type FieldSpec struct {
	Name          string // json 字段名
	Column        string // xlsx 列名
	Group         FieldGroup
	Date          bool
	ServerManaged bool

	index int
}

// Editable reports whether the field is a client-editable string value.
func (f FieldSpec) Editable() bool {
	return !f.ServerManaged
}

var (
	schemaOnce   sync.Once
	schemaFields []FieldSpec
	schemaByName map[string]int
)

func loadSchema() {
	t := reflect.TypeOf(Doctor{})
	stringPtr := reflect.TypeOf((*string)(nil))
	schemaByName = make(map[string]int)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("field")
		if !ok {
			continue
		}
		name := strings.Split(sf.Tag.Get("json"), ",")[0]
		parts := strings.Split(tag, ",")
		group, err := parseGroup(parts[0])
		if err != nil {
			panic(fmt.Sprintf("domain: field %s: %v", sf.Name, err))
		}
		spec := FieldSpec{
			Name:          name,
			Column:        sf.Tag.Get("xlsx"),
			Group:         group,
			ServerManaged: group == GroupServer,
			index:         i,
		}
		for _, opt := range parts[1:] {
			if opt == "date" {
				spec.Date = true
			}
		}
		if !spec.ServerManaged && sf.Type != stringPtr {
			panic(fmt.Sprintf("domain: editable field %s must be *string", sf.Name))
		}
		schemaByName[name] = len(schemaFields)
		schemaFields = append(schemaFields, spec)
	}
}

// Schema 返回完整字段列表（声明顺序）
func Schema() []FieldSpec {
	schemaOnce.Do(loadSchema)
	out := make([]FieldSpec, len(schemaFields))
	copy(out, schemaFields)
	return out
}

// EditableFields 返回所有可编辑字段（排除服务端管理字段）
func EditableFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range Schema() {
		if f.Editable() {
			out = append(out, f)
		}
	}
	return out
}

// FieldsInGroup 返回属于指定字段组的可编辑字段
func FieldsInGroup(g FieldGroup) []FieldSpec {
	var out []FieldSpec
	for _, f := range Schema() {
		if f.Group == g && f.Editable() {
			out = append(out, f)
		}
	}
	return out
}

// LookupField 按 json 字段名查找
func LookupField(name string) (FieldSpec, bool) {
	schemaOnce.Do(loadSchema)
	i, ok := schemaByName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return schemaFields[i], true
}

// Value 读取可编辑字段的值
func (d *Doctor) Value(name string) (*string, error) {
	spec, ok := LookupField(name)
	if !ok || !spec.Editable() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	v := reflect.ValueOf(d).Elem().Field(spec.index)
	if v.IsNil() {
		return nil, nil
	}
	return v.Interface().(*string), nil
}

// SetValue 替换可编辑字段的值（nil 表示 null）
func (d *Doctor) SetValue(name string, value *string) error {
	spec, ok := LookupField(name)
	if !ok || !spec.Editable() {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	reflect.ValueOf(d).Elem().Field(spec.index).Set(reflect.ValueOf(value))
	return nil
}

// FillEmpty 把所有为 nil 的可编辑字段设为 ""，使每个表单控件都有确定的值
func (d *Doctor) FillEmpty() {
	rv := reflect.ValueOf(d).Elem()
	for _, f := range EditableFields() {
		fv := rv.Field(f.index)
		if fv.IsNil() {
			fv.Set(reflect.ValueOf(StringPtr("")))
		}
	}
}
