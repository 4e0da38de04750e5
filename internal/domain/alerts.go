package domain

import (
	"sort"
	"time"
)

// DefaultAlertWindowDays 到期提醒的默认天数
const DefaultAlertWindowDays = 15

// ExpiryAlert 临时状态（退休、个人申请、病假）即将到期的提醒
type ExpiryAlert struct {
	DoctorID       int64  `json:"doctor_id,omitempty"`
	IDImss         string `json:"id_imss"`
	NombreCompleto string `json:"nombre_completo"`
	Estatus        string `json:"estatus"`
	FechaFin       string `json:"fecha_fin"`
}

// 各字段组的结束日期字段
var endDateFields = map[FieldGroup]string{
	GroupRetirement: "fecha_fin_retiro",
	GroupPersonal:   "fecha_fin_solicitud",
	GroupLeave:      "fecha_fin_incapacidad",
}

// EndDate 当前状态对应的结束日期；状态没有结束日期或未填写时返回 false
func (d *Doctor) EndDate() (time.Time, bool) {
	name, ok := endDateFields[FieldGroupFor(d.Status())]
	if !ok {
		return time.Time{}, false
	}
	v, _ := d.Value(name)
	if v == nil || *v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ExpiringWithin 返回结束日期落在 [today, today+days] 内的档案，按日期、姓名排序
func ExpiringWithin(doctors []Doctor, now time.Time, days int) []ExpiryAlert {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last := today.AddDate(0, 0, days)

	alerts := []ExpiryAlert{}
	for i := range doctors {
		d := &doctors[i]
		end, ok := d.EndDate()
		if !ok || end.Before(today) || end.After(last) {
			continue
		}
		alerts = append(alerts, ExpiryAlert{
			DoctorID:       d.ID,
			IDImss:         deref(d.IdentificadorIMSS),
			NombreCompleto: deref(d.NombreCompleto),
			Estatus:        string(d.Status()),
			FechaFin:       end.Format("2006-01-02"),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].FechaFin != alerts[j].FechaFin {
			return alerts[i].FechaFin < alerts[j].FechaFin
		}
		return alerts[i].NombreCompleto < alerts[j].NombreCompleto
	})
	return alerts
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
