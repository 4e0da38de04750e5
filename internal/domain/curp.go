package domain

import (
	"strconv"
	"strings"
	"time"
)

// CurpLength CURP 固定长度
const CurpLength = 18

// CurpTakenMessage 服务端未给出信息时的默认提示
const CurpTakenMessage = "Esta CURP ya está registrada en el sistema"

// CurpCheck GET /api/doctores/check-curp/{curp} 的响应
type CurpCheck struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

// CurpInfo 从 CURP 中解析出的信息
type CurpInfo struct {
	BirthDate string // YYYY-MM-DD
	Sex       string // Masculino / Femenino / Otro
	Age       int
}

// ParseCURP 解析 CURP（第 5-10 位为 yymmdd，第 11 位为性别）
//
// 两位年份大于当前两位年份+5 时视为 19xx，否则 20xx。
func ParseCURP(curp string, now time.Time) (CurpInfo, bool) {
	curp = strings.ToUpper(strings.TrimSpace(curp))
	if len(curp) != CurpLength {
		return CurpInfo{}, false
	}

	for i := 4; i < 10; i++ {
		if curp[i] < '0' || curp[i] > '9' {
			return CurpInfo{}, false
		}
	}

	yy, err1 := strconv.Atoi(curp[4:6])
	mm, err2 := strconv.Atoi(curp[6:8])
	dd, err3 := strconv.Atoi(curp[8:10])
	if err1 != nil || err2 != nil || err3 != nil {
		return CurpInfo{}, false
	}

	century := 2000
	if yy > now.Year()%100+5 {
		century = 1900
	}
	year := century + yy

	birth := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	// time.Date 会规范化越界日期（2月31日 -> 3月3日），据此判断非法日期
	if birth.Year() != year || int(birth.Month()) != mm || birth.Day() != dd {
		return CurpInfo{}, false
	}

	var sex string
	switch curp[10] {
	case 'H':
		sex = "Masculino"
	case 'M':
		sex = "Femenino"
	default:
		sex = "Otro"
	}

	age := now.Year() - year
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}

	return CurpInfo{
		BirthDate: birth.Format("2006-01-02"),
		Sex:       sex,
		Age:       age,
	}, true
}
