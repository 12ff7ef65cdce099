package service

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func CoercePrice(raw string) (decimal.Decimal, bool) {
	return coercePrice(json.RawMessage(raw))
}

// NewUPCGeneratorAt builds a generator with a frozen clock and counter start.
func NewUPCGeneratorAt(now time.Time, start uint64) *UPCGenerator {
	return &UPCGenerator{
		start: start,
		now:   func() time.Time { return now },
	}
}
