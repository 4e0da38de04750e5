package domain

import "fmt"

// Status 医生状态（estatus 字段取值）
type Status string

const (
	StatusActive          Status = "01 ACTIVO"
	StatusRetirementCuba  Status = "02 RETIRO TEMP. (CUBA)"
	StatusRetirementMexic Status = "03 RETIRO TEMP. (MEXICO)"
	StatusPersonal        Status = "04 SOL. PERSONAL"
	StatusLeave           Status = "05 INCAPACIDAD"
	StatusDischarge       Status = "05 BAJA"
	StatusBaja            Status = "06 BAJA" // 后端现有记录使用的编码
	StatusDeceased        Status = "Defunción"
)

// FieldGroup 字段组
type FieldGroup int

const (
	GroupCommon FieldGroup = iota
	GroupActive
	GroupDischarge
	GroupRetirement
	GroupPersonal
	GroupLeave
	GroupDeceased
	GroupServer
)

var groupNames = map[FieldGroup]string{
	GroupCommon:     "common",
	GroupActive:     "active",
	GroupDischarge:  "discharge",
	GroupRetirement: "retirement",
	GroupPersonal:   "personal",
	GroupLeave:      "leave",
	GroupDeceased:   "deceased",
	GroupServer:     "server",
}

func (g FieldGroup) String() string {
	if s, ok := groupNames[g]; ok {
		return s
	}
	return fmt.Sprintf("FieldGroup(%d)", int(g))
}

func parseGroup(s string) (FieldGroup, error) {
	for g, name := range groupNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown field group %q", s)
}

type statusRule struct {
	group  FieldGroup
	locked bool
}

// statusPolicy 状态 -> 字段组映射表；未列出的状态归入 common
var statusPolicy = map[Status]statusRule{
	StatusActive:          {group: GroupActive},
	StatusRetirementCuba:  {group: GroupRetirement},
	StatusRetirementMexic: {group: GroupRetirement},
	StatusPersonal:        {group: GroupPersonal},
	StatusLeave:           {group: GroupLeave},
	StatusDischarge:       {group: GroupDischarge},
	StatusBaja:            {group: GroupDischarge},
	StatusDeceased:        {group: GroupDeceased, locked: true},
}

// Statuses 返回枚举中的全部状态（显示顺序）
func Statuses() []Status {
	return []Status{
		StatusActive,
		StatusRetirementCuba,
		StatusRetirementMexic,
		StatusPersonal,
		StatusLeave,
		StatusDischarge,
		StatusBaja,
		StatusDeceased,
	}
}

// Known reports whether s is part of the status enumeration.
func (s Status) Known() bool {
	_, ok := statusPolicy[s]
	return ok
}

// FieldGroupFor 返回状态对应的字段组
func FieldGroupFor(s Status) FieldGroup {
	if rule, ok := statusPolicy[s]; ok {
		return rule.group
	}
	return GroupCommon
}

// Locked 锁定状态下，只有具备覆盖权限的用户才能进入编辑
func (s Status) Locked() bool {
	return statusPolicy[s].locked
}

// IsVisible 字段组在给定状态下是否显示
func IsVisible(g FieldGroup, s Status) bool {
	switch g {
	case GroupCommon:
		return true
	case GroupServer:
		return false
	}
	return FieldGroupFor(s) == g
}

// ApplyStatusTransition 把 estatus 改为 next，并按清理规则把不再适用的字段置为 null。
// 返回被置空的字段名；next 与当前状态相同时不做任何清理。
func ApplyStatusTransition(d *Doctor, next Status) []string {
	if d.Status() == next && d.Estatus != nil {
		return nil
	}

	var nulled []string
	nullGroup := func(g FieldGroup) {
		for _, f := range FieldsInGroup(g) {
			_ = d.SetValue(f.Name, nil)
			nulled = append(nulled, f.Name)
		}
	}

	group := FieldGroupFor(next)
	if group == GroupDischarge {
		nullGroup(GroupActive)
	} else {
		nullGroup(GroupDischarge)
	}
	if group != GroupDeceased {
		nullGroup(GroupDeceased)
	}

	d.Estatus = StringPtr(string(next))
	return nulled
}
