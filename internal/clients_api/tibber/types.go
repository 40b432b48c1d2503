package tibber

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one hourly price. Hour is StartsAt's hour in the configured zone.
type PricePoint struct {
	StartsAt time.Time
	Hour     int
	Total    decimal.Decimal
}

// PriceSeries is an ordered run of price points for one window.
type PriceSeries []PricePoint

// Max returns the highest total; ok is false for an empty series.
func (s PriceSeries) Max() (max decimal.Decimal, ok bool) {
	for i, p := range s {
		if i == 0 || p.Total.GreaterThan(max) {
			max = p.Total
		}
	}
	return max, len(s) > 0
}

// PriceInfo holds the three windows returned by one query.
type PriceInfo struct {
	Current  PriceSeries // one point
	Today    PriceSeries // 24 points
	Tomorrow PriceSeries // empty until tomorrow's prices are published, else 24 points
}

// Wire format of the GraphQL response.

type priceResponse struct {
	Data   *responseData  `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type responseData struct {
	Viewer *viewer `json:"viewer"`
}

type viewer struct {
	Homes []home `json:"homes"`
}

type home struct {
	CurrentSubscription *subscription `json:"currentSubscription"`
}

type subscription struct {
	PriceInfo *priceInfoPayload `json:"priceInfo"`
}

type priceInfoPayload struct {
	Current  *priceEntry   `json:"current"`
	Today    *[]priceEntry `json:"today"`
	Tomorrow *[]priceEntry `json:"tomorrow"`
}

type priceEntry struct {
	Total    *decimal.Decimal `json:"total"`
	StartsAt string           `json:"startsAt"`
}
