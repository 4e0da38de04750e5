package editor

import (
	"fmt"

	"doctor-registry/internal/domain"
)

// HiddenFieldPolicy 不可见字段组在保存 payload 中的处理方式
type HiddenFieldPolicy string

const (
	HiddenOmit HiddenFieldPolicy = "omit" // 不发送，服务端保留原值
	HiddenNull HiddenFieldPolicy = "null" // 发送 null
)

// ParseHiddenFieldPolicy parses "omit" or "null".
func ParseHiddenFieldPolicy(s string) (HiddenFieldPolicy, error) {
	switch HiddenFieldPolicy(s) {
	case HiddenOmit, HiddenNull:
		return HiddenFieldPolicy(s), nil
	}
	return "", fmt.Errorf("unknown hidden field policy %q", s)
}

// BuildPayload 构造 PUT /api/doctores/{id} 的请求体
//
//   - 服务端管理字段不发送
//   - 日期字段为 "" 时发送 null
//   - 本次会话中被状态清理规则置空的字段，若不可见则始终发送 null
//   - 其余不可见字段按 policy 处理
func BuildPayload(staged *domain.Doctor, cleared map[string]struct{}, policy HiddenFieldPolicy) map[string]any {
	status := staged.Status()
	payload := make(map[string]any)

	for _, f := range domain.EditableFields() {
		v, _ := staged.Value(f.Name)
		_, wasCleared := cleared[f.Name]
		visible := domain.IsVisible(f.Group, status)

		switch {
		case !visible && wasCleared:
			payload[f.Name] = nil
		case !visible && policy != HiddenNull:
			continue
		case !visible:
			payload[f.Name] = nil
		default:
			payload[f.Name] = wireValue(f, v)
		}
	}
	return payload
}

func wireValue(f domain.FieldSpec, v *string) any {
	if v == nil {
		return nil
	}
	if f.Date && *v == "" {
		return nil
	}
	return *v
}
