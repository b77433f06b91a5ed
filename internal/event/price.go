package event

import (
	"strconv"
	"strings"
)

type PriceClass int

const (
	PriceFree PriceClass = iota
	PricePaid
)

func (p PriceClass) String() string {
	if p == PriceFree {
		return "free"
	}
	return "paid"
}

// ClassifyPrice interprets a free-text price. Empty, "0", "free", "bezpłatne"
// and anything numerically zero are free; everything else is paid.
func ClassifyPrice(price string) PriceClass {
	p := strings.ToLower(strings.TrimSpace(price))
	switch p {
	case "", "0", "free", "bezpłatne":
		return PriceFree
	}
	if v, err := strconv.ParseFloat(p, 64); err == nil && v == 0 {
		return PriceFree
	}
	return PricePaid
}

// IsFree reports whether the event's price classifies as free.
func (e Event) IsFree() bool {
	return ClassifyPrice(e.Price) == PriceFree
}
