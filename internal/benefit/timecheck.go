package benefit

import (
	"fmt"
	"time"

	"github.com/nearbite/nearbite/internal/model"
)

// EvalContext carries the runtime conditions a redemption happens under.
type EvalContext struct {
	Now         time.Time
	Channel     string // ONLINE or OFFLINE
	OrderAmount int64
}

// CheckConstraints evaluates a program's constraints against the runtime
// context. It returns false with a short reason on the first failing check.
// Catalog listing does not call this; only evaluation under runtime
// constraints does.
func CheckConstraints(c model.Constraints, ec EvalContext) (bool, string) {
	if c.ValidFrom != nil && ec.Now.Before(*c.ValidFrom) {
		return false, "not yet valid"
	}
	if c.ValidTo != nil && ec.Now.After(*c.ValidTo) {
		return false, "expired"
	}
	if c.DayOfWeekMask != nil && *c.DayOfWeekMask&DayBit(ec.Now.Weekday()) == 0 {
		return false, "not valid today"
	}
	if c.TimeFrom != "" || c.TimeTo != "" {
		clock := ec.Now.Format("15:04")
		if c.TimeFrom != "" && clock < c.TimeFrom {
			return false, fmt.Sprintf("valid from %s", c.TimeFrom)
		}
		if c.TimeTo != "" && clock > c.TimeTo {
			return false, fmt.Sprintf("valid until %s", c.TimeTo)
		}
	}
	if !channelAllowed(c.ChannelLimit, ec.Channel) {
		return false, fmt.Sprintf("%s only", c.ChannelLimit)
	}
	if c.MinOrderAmount != nil && ec.OrderAmount < *c.MinOrderAmount {
		return false, fmt.Sprintf("minimum order %d", *c.MinOrderAmount)
	}
	if c.MaxOrderAmount != nil && ec.OrderAmount > *c.MaxOrderAmount {
		return false, fmt.Sprintf("maximum order %d", *c.MaxOrderAmount)
	}
	return true, ""
}

// DayBit maps a weekday to the catalog's 7-bit mask, Monday = bit 0.
func DayBit(w time.Weekday) uint8 {
	// time.Weekday has Sunday = 0.
	return 1 << uint((int(w)+6)%7)
}

func channelAllowed(limit, channel string) bool {
	switch limit {
	case "", model.ChannelBoth:
		return true
	case model.ChannelOnline:
		return channel == model.ChannelOnline
	case model.ChannelOffline:
		return channel == model.ChannelOffline
	default:
		return true
	}
}
