package stats

import (
	"github.com/fplstats/fpl-stats/internal/domain/feed"
)

// PriceTrend is the derived price movement indicator.
type PriceTrend string

const (
	PriceTrendDown PriceTrend = "down"
	PriceTrendFlat PriceTrend = "flat"
	PriceTrendUp   PriceTrend = "up"
)

// PriceTrendOf combines this-gameweek and season-to-date cost movement as
// sign(sign(event) + sign(start)). A rise and a fall cancel to flat.
func PriceTrendOf(costChangeEvent, costChangeStart int) PriceTrend {
	switch sign(sign(costChangeEvent) + sign(costChangeStart)) {
	case -1:
		return PriceTrendDown
	case 1:
		return PriceTrendUp
	default:
		return PriceTrendFlat
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// Price converts the feed's integer tenths into the display price.
func Price(nowCost int) float64 {
	return float64(nowCost) / 10
}

// ValueRatio is expected points this gameweek per unit price. Absent
// expectation or a zero price yields nil ("not applicable"), never an
// infinity and never a crash.
func ValueRatio(epThis *feed.Decimal, price float64) *float64 {
	if epThis == nil || price == 0 {
		return nil
	}
	v := epThis.Float64() / price
	return &v
}
