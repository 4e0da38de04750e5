package domain

// CluesLength CLUES 编码长度
const CluesLength = 11

// CluesInfo 医疗机构信息及所在州的名额（GET /api/clues-con-capacidad/{clues}）
type CluesInfo struct {
	Clues                  string `json:"clues"`
	DireccionUnidad        string `json:"direccion_unidad"`
	NombreUnidad           string `json:"nombre_unidad"`
	Entidad                string `json:"entidad"`
	Municipio              string `json:"municipio"`
	NivelAtencion          string `json:"nivel_atencion"`
	TipoEstablecimiento    string `json:"tipo_establecimiento"`
	SubtipoEstablecimiento string `json:"subtipo_establecimiento"`
	Estrato                string `json:"estrato"`
	Actual                 int    `json:"actual"`
	Maximo                 int    `json:"maximo"`
}

// Full 州名额已满
func (c *CluesInfo) Full() bool {
	return c.Actual >= c.Maximo
}

// ApplyTo 把机构信息写入档案
func (c *CluesInfo) ApplyTo(d *Doctor) {
	d.CluesIB = StringPtr(c.Clues)
	d.DireccionUnidad = StringPtr(c.DireccionUnidad)
	d.NombreUnidad = StringPtr(c.NombreUnidad)
	d.Entidad = StringPtr(c.Entidad)
	d.Municipio = StringPtr(c.Municipio)
	d.NivelAtencion = StringPtr(c.NivelAtencion)
	d.TipoEstablecimiento = StringPtr(c.TipoEstablecimiento)
	d.SubtipoEstablecimiento = StringPtr(c.SubtipoEstablecimiento)
	d.Estrato = StringPtr(c.Estrato)
}
