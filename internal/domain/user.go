package domain

// RoleUser 普通用户角色
const RoleUser = "user"

const (
	// MinTempPasswordLength 管理员重置的临时密码最小长度
	MinTempPasswordLength = 4
	// MinPasswordLength 用户自行修改密码的最小长度
	MinPasswordLength = 8
)

// User 系统用户，GET /api/admin/users
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// NewUser 创建用户请求
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
