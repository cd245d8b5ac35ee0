package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+351912345678", "351912345678"},
		{"whatsapp:+351912345678", "351912345678"},
		{"351 912 345 678", "351912345678"},
		{"(351) 912-345-678", "351912345678"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestSaleRowDecodesMixedNumberFormats(t *testing.T) {
	payload := `[
		{"TipoDoc":"FT","Serie":"A","NumDoc":"12","TotalMerc":"10.50"},
		{"TipoDoc":"FR","Serie":"B","NumDoc":7,"TotalMerc":20}
	]`

	var rows []SaleRow
	require.NoError(t, json.Unmarshal([]byte(payload), &rows))

	assert.Equal(t, "12", rows[0].NumDoc.String())
	assert.InDelta(t, 10.50, rows[0].TotalMerc.Float64(), 0.001)
	assert.Equal(t, "7", rows[1].NumDoc.String())
	assert.InDelta(t, 20.0, rows[1].TotalMerc.Float64(), 0.001)
}
