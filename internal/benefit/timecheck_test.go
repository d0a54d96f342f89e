package benefit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nearbite/nearbite/internal/model"
)

// 2026-08-24 is a Monday.
var monday = time.Date(2026, 8, 24, 12, 30, 0, 0, time.UTC)

func mask(bits uint8) *uint8 { return &bits }

func TestDayBit(t *testing.T) {
	assert.Equal(t, uint8(1), DayBit(time.Monday))
	assert.Equal(t, uint8(1<<5), DayBit(time.Saturday))
	assert.Equal(t, uint8(1<<6), DayBit(time.Sunday))
}

func TestCheckConstraints(t *testing.T) {
	from := monday.AddDate(0, 0, -7)
	to := monday.AddDate(0, 0, 7)

	tests := []struct {
		name       string
		c          model.Constraints
		ec         EvalContext
		wantOK     bool
		wantReason string
	}{
		{
			"unconstrained",
			model.Constraints{},
			EvalContext{Now: monday, Channel: model.ChannelOffline, OrderAmount: 12000},
			true, "",
		},
		{
			"inside date range and weekday",
			model.Constraints{ValidFrom: &from, ValidTo: &to, DayOfWeekMask: mask(0b0000001)},
			EvalContext{Now: monday, Channel: model.ChannelOffline, OrderAmount: 12000},
			true, "",
		},
		{
			"expired",
			model.Constraints{ValidTo: &from},
			EvalContext{Now: monday},
			false, "expired",
		},
		{
			"weekend-only mask rejects monday",
			model.Constraints{DayOfWeekMask: mask(0b1100000)},
			EvalContext{Now: monday},
			false, "not valid today",
		},
		{
			"before time window",
			model.Constraints{TimeFrom: "14:00", TimeTo: "17:00"},
			EvalContext{Now: monday},
			false, "valid from 14:00",
		},
		{
			"inside time window",
			model.Constraints{TimeFrom: "11:00", TimeTo: "14:00"},
			EvalContext{Now: monday},
			true, "",
		},
		{
			"online-only rejected offline",
			model.Constraints{ChannelLimit: model.ChannelOnline},
			EvalContext{Now: monday, Channel: model.ChannelOffline},
			false, "ONLINE only",
		},
		{
			"both channels admits offline",
			model.Constraints{ChannelLimit: model.ChannelBoth},
			EvalContext{Now: monday, Channel: model.ChannelOffline},
			true, "",
		},
		{
			"minimum order not met",
			model.Constraints{MinOrderAmount: i64(20000)},
			EvalContext{Now: monday, OrderAmount: 12000},
			false, "minimum order 20000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := CheckConstraints(tt.c, tt.ec)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}
