package domain

// UserRef 用户引用
type UserRef struct {
	Username string `json:"username"`
}

// DeletedDoctor 已删除（可恢复）的档案，GET /api/admin/doctores/eliminados
type DeletedDoctor struct {
	ID                int64    `json:"id"`
	NombreCompleto    *string  `json:"nombre_completo"`
	CURP              *string  `json:"curp"`
	DeletedAt         *string  `json:"deleted_at"`
	DeletedBy         *UserRef `json:"deleted_by,omitempty"`
	DeletedByUsername string   `json:"deleted_by_username,omitempty"`
}

// DeletedByName 删除人用户名；后端可能返回对象或扁平字段
func (d *DeletedDoctor) DeletedByName() string {
	if d.DeletedBy != nil && d.DeletedBy.Username != "" {
		return d.DeletedBy.Username
	}
	return d.DeletedByUsername
}

// DeletedDoctorPage 已删除档案分页结果
type DeletedDoctorPage struct {
	TotalCount int             `json:"total_count"`
	Doctores   []DeletedDoctor `json:"doctores"`
}
