package lightspeed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParamsEncode(t *testing.T) {
	checkIn := time.Date(2021, 2, 26, 18, 10, 19, 0, time.UTC)
	checkOut := time.Date(2021, 2, 26, 19, 6, 21, 0, time.UTC)

	tests := []struct {
		name   string
		params Params
		key    string
		want   string
	}{
		{
			name:   "datetime literal serializes to ISO-8601",
			params: Params{"checkIn": checkIn},
			key:    "checkIn",
			want:   "2021-02-26T18:10:19Z",
		},
		{
			name:   "between filter joins operator and both timestamps",
			params: Params{"checkIn": Op("><", checkIn, checkOut)},
			key:    "checkIn",
			want:   "><,2021-02-26T18:10:19Z,2021-02-26T19:06:21Z",
		},
		{
			name:   "single operand filter",
			params: Params{"checkOut": Op("<", checkOut)},
			key:    "checkOut",
			want:   "<,2021-02-26T19:06:21Z",
		},
		{
			name:   "plain string passes through",
			params: Params{"orderby": "employeeHoursID"},
			key:    "orderby",
			want:   "employeeHoursID",
		},
		{
			name:   "bool literal",
			params: Params{"archived": true},
			key:    "archived",
			want:   "true",
		},
		{
			name:   "sequence-shaped literal still collapses to one string",
			params: Params{"shopID": []interface{}{"1", "2", "3"}},
			key:    "shopID",
			want:   "1,2,3",
		},
		{
			name:   "string slice joins by comma",
			params: Params{"fields": []string{"employeeID", "firstName"}},
			key:    "fields",
			want:   "employeeID,firstName",
		},
	}

	for _, test := range tests {
		tt := test
		t.Run(tt.name, func(t *testing.T) {
			values := tt.params.Encode()
			assert.Equal(t, tt.want, values.Get(tt.key))
		})
	}
}

func TestParamsEncodeZonedTimestamp(t *testing.T) {
	boise, err := time.LoadLocation("America/Boise")
	if err != nil {
		t.Fatal(err)
	}
	checkIn := time.Date(2021, 2, 26, 0, 0, 0, 0, boise)

	values := Params{"checkIn": checkIn}.Encode()
	assert.Equal(t, "2021-02-26T00:00:00-07:00", values.Get("checkIn"))
}
