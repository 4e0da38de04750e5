package domain

// Attachment 附件（expediente），由服务端管理，客户端只读
type Attachment struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre_archivo"`
	URL    string `json:"url"`
}

// Doctor 医生档案（对应后端 doctores 资源）
//
// 字段元数据通过 struct tag 声明，Schema() 由此派生：
//   - json:  传输字段名
//   - field: 字段组（common/active/discharge/retirement/personal/leave/deceased/server），可附加 ",date"
//   - xlsx:  表格列名（导出/导入）
//
// 新增字段只需在这里声明，编辑默认值、保存 payload、导出表头、导入建表都会自动包含。
type Doctor struct {
	ID int64 `json:"id"`

	// 通用字段
	IdentificadorIMSS *string `json:"identificador_imss" field:"common" xlsx:"Identificador.IMSS"`
	NombreCompleto    *string `json:"nombre_completo" field:"common" xlsx:"NOMBRE COMPLETO"`
	Estatus           *string `json:"estatus" field:"common" xlsx:"Estatus"`
	FechaEstatus      *string `json:"fecha_estatus" field:"common,date" xlsx:"Fecha Estatus"`
	MatrimonioID      *string `json:"matrimonio_id" field:"common" xlsx:"Matrimonio_id"`
	CURP              *string `json:"curp" field:"common" xlsx:"CURP"`
	FechaNacimiento   *string `json:"fecha_nacimiento" field:"common,date" xlsx:"Fecha Nacimiento"`
	Sexo              *string `json:"sexo" field:"common" xlsx:"Sexo"`
	CedulaEsp         *string `json:"cedula_esp" field:"common" xlsx:"CÉDULA ESP"`
	CedulaLic         *string `json:"cedula_lic" field:"common" xlsx:"CÉDULA LIC"`
	Especialidad      *string `json:"especialidad" field:"common" xlsx:"Especialidad"`
	Entidad           *string `json:"entidad" field:"common" xlsx:"Entidad"`
	CluesSSA          *string `json:"clues_ssa" field:"common" xlsx:"CLUES SSA"`
	CluesIB           *string `json:"clues_ib" field:"common" xlsx:"CLUES_IB"`
	NombreUnidad      *string `json:"nombre_unidad" field:"common" xlsx:"Nombre Unidad"`
	Despliegue        *string `json:"despliegue" field:"common" xlsx:"Despliegue"`
	FechaVuelo        *string `json:"fecha_vuelo" field:"common,date" xlsx:"Fecha Vuelo"`
	Estrato           *string `json:"estrato" field:"common" xlsx:"Estrato"`
	Acuerdo           *string `json:"acuerdo" field:"common" xlsx:"Acuerdo"`
	Observaciones     *string `json:"observaciones" field:"common" xlsx:"Observaciones"`

	// 在岗（01 ACTIVO）
	DireccionUnidad        *string `json:"direccion_unidad" field:"active" xlsx:"Dirección Unidad"`
	TipoEstablecimiento    *string `json:"tipo_establecimiento" field:"active" xlsx:"Tipo Establecimiento"`
	SubtipoEstablecimiento *string `json:"subtipo_establecimiento" field:"active" xlsx:"Subtipo Establecimiento"`
	Municipio              *string `json:"municipio" field:"active" xlsx:"Municipio"`
	Region                 *string `json:"region" field:"active" xlsx:"Región"`
	Turno                  *string `json:"turno" field:"active" xlsx:"Turno"`
	NivelAtencion          *string `json:"nivel_atencion" field:"active" xlsx:"Nivel de Atención"`

	// 离职（05 BAJA / 06 BAJA）
	FechaExtraccion       *string `json:"fecha_extraccion" field:"discharge,date" xlsx:"Fecha de Extracción"`
	MotivoBaja            *string `json:"motivo_baja" field:"discharge" xlsx:"Motivo de baja"`
	FechaNotificacion     *string `json:"fecha_notificacion" field:"discharge,date" xlsx:"Fecha Notificación"`
	FormaNotificacionBaja *string `json:"forma_notificacion_baja" field:"discharge" xlsx:"Forma de notificación de baja"`

	// 临时退休（02/03 RETIRO TEMP.）
	MotivoRetiro      *string `json:"motivo_retiro" field:"retirement" xlsx:"Motivo Retiro"`
	FechaInicioRetiro *string `json:"fecha_inicio_retiro" field:"retirement,date" xlsx:"Inicio Retiro"`
	FechaFinRetiro    *string `json:"fecha_fin_retiro" field:"retirement,date" xlsx:"Fin Retiro"`

	// 个人申请（04 SOL. PERSONAL）
	MotivoSolicitud      *string `json:"motivo_solicitud" field:"personal" xlsx:"Motivo Solicitud"`
	FechaInicioSolicitud *string `json:"fecha_inicio_solicitud" field:"personal,date" xlsx:"Inicio Solicitud"`
	FechaFinSolicitud    *string `json:"fecha_fin_solicitud" field:"personal,date" xlsx:"Fin Solicitud"`

	// 病假（05 INCAPACIDAD）
	MotivoIncapacidad      *string `json:"motivo_incapacidad" field:"leave" xlsx:"Motivo Incapacidad"`
	FechaInicioIncapacidad *string `json:"fecha_inicio_incapacidad" field:"leave,date" xlsx:"Inicio Incapacidad"`
	FechaFinIncapacidad    *string `json:"fecha_fin_incapacidad" field:"leave,date" xlsx:"Fin Incapacidad"`

	// 死亡（Defunción）
	FechaFallecimiento *string `json:"fecha_fallecimiento" field:"deceased,date" xlsx:"Fecha Fallecimiento"`

	// 服务端管理字段（不随保存发送）
	Archivos []Attachment `json:"archivos,omitempty" field:"server"`
	FotoURL  *string      `json:"foto_url,omitempty" field:"server"`
}

// Status 返回当前状态（nil 视为空状态）
func (d *Doctor) Status() Status {
	if d == nil || d.Estatus == nil {
		return ""
	}
	return Status(*d.Estatus)
}

// Clone 浅拷贝。字段修改总是替换指针而不是写入指针指向的值，所以共享 *string 是安全的。
func (d *Doctor) Clone() *Doctor {
	if d == nil {
		return nil
	}
	c := *d
	if d.Archivos != nil {
		c.Archivos = append([]Attachment(nil), d.Archivos...)
	}
	return &c
}

// DoctorPage 分页列表（GET /api/doctores）
type DoctorPage struct {
	TotalCount int      `json:"total_count"`
	Doctores   []Doctor `json:"doctores"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
