package models

import (
	"strconv"
	"strings"
)

// SerieOption is one selectable sales series/store returned by the ERP.
type SerieOption struct {
	Serie     string `json:"serie"`
	Descricao string `json:"Descricao"`
}

// SaleRow is one document row from the ERP sales reports.
type SaleRow struct {
	TipoDoc   string     `json:"TipoDoc"`
	Serie     string     `json:"Serie"`
	NumDoc    FlexString `json:"NumDoc"`
	TotalMerc FlexFloat  `json:"TotalMerc"`
}

// FlexString decodes a JSON value that the ERP sometimes sends as a
// string ("1") and sometimes as a number (1).
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	v := strings.Trim(string(data), `"`)
	if v == "null" {
		v = ""
	}
	*s = FlexString(v)
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// FlexFloat decodes a JSON number that the ERP sometimes sends as a
// string ("10.00") and sometimes as a number (10.0).
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	v := strings.Trim(string(data), `"`)
	if v == "" || v == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*f = FlexFloat(n)
	return nil
}

func (f FlexFloat) Float64() float64 {
	return float64(f)
}
