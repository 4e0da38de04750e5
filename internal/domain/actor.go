package domain

// RoleAdmin 管理员角色，可编辑锁定状态的档案并执行审计日志清理
const RoleAdmin = "admin"

// Actor 当前操作用户
type Actor struct {
	Username string
	Role     string
}

// CanOverrideLock reports whether the actor may edit records in a locked status.
func (a Actor) CanOverrideLock() bool {
	return a.Role == RoleAdmin
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
