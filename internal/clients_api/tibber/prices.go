package tibber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PriceQuery asks for current/today/tomorrow prices of every home on the account.
const PriceQuery = `{
  viewer {
    homes {
      currentSubscription {
        priceInfo {
          current {
            total
            startsAt
          }
          today {
            total
            startsAt
          }
          tomorrow {
            total
            startsAt
          }
        }
      }
    }
  }
}`

// FetchError is any failure to obtain a usable price response.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch prices: %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type graphQLRequest struct {
	Query string `json:"query"`
}

// FetchPrices issues the price query and returns the three price windows.
func (c *Client) FetchPrices(ctx context.Context) (*PriceInfo, error) {
	body, err := c.MakeRequest(ctx, graphQLRequest{Query: PriceQuery})
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}

	info, err := ParsePriceInfo(body, c.location)
	if err != nil {
		return nil, err
	}

	LogDebug("Prices fetched")
	return info, nil
}

// ParsePriceInfo decodes a GraphQL response body. Every field on the path
// data.viewer.homes[0].currentSubscription.priceInfo.{current,today,tomorrow}
// is required; tomorrow may be an empty list.
func ParsePriceInfo(body []byte, loc *time.Location) (*PriceInfo, error) {
	if loc == nil {
		loc = time.Local
	}

	var resp priceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &FetchError{Op: "decode", Err: err}
	}

	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			messages = append(messages, e.Message)
		}
		return nil, &FetchError{Op: "query", Err: fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))}
	}

	switch {
	case resp.Data == nil:
		return nil, missingField("data")
	case resp.Data.Viewer == nil:
		return nil, missingField("data.viewer")
	case len(resp.Data.Viewer.Homes) == 0:
		return nil, missingField("data.viewer.homes")
	}

	home := resp.Data.Viewer.Homes[0]
	if home.CurrentSubscription == nil {
		return nil, missingField("homes[0].currentSubscription")
	}
	payload := home.CurrentSubscription.PriceInfo
	switch {
	case payload == nil:
		return nil, missingField("currentSubscription.priceInfo")
	case payload.Current == nil:
		return nil, missingField("priceInfo.current")
	case payload.Today == nil:
		return nil, missingField("priceInfo.today")
	case payload.Tomorrow == nil:
		return nil, missingField("priceInfo.tomorrow")
	}

	current, err := toSeries("current", []priceEntry{*payload.Current}, loc)
	if err != nil {
		return nil, err
	}
	today, err := toSeries("today", *payload.Today, loc)
	if err != nil {
		return nil, err
	}
	tomorrow, err := toSeries("tomorrow", *payload.Tomorrow, loc)
	if err != nil {
		return nil, err
	}

	return &PriceInfo{Current: current, Today: today, Tomorrow: tomorrow}, nil
}

func toSeries(window string, entries []priceEntry, loc *time.Location) (PriceSeries, error) {
	series := make(PriceSeries, 0, len(entries))
	for i, entry := range entries {
		if entry.Total == nil {
			return nil, &FetchError{Op: "parse", Err: fmt.Errorf("%s[%d]: missing total", window, i)}
		}
		startsAt, err := time.Parse(time.RFC3339, entry.StartsAt)
		if err != nil {
			return nil, &FetchError{Op: "parse", Err: fmt.Errorf("%s[%d]: invalid startsAt %q: %w", window, i, entry.StartsAt, err)}
		}
		local := startsAt.In(loc)
		series = append(series, PricePoint{
			StartsAt: local,
			Hour:     local.Hour(),
			Total:    *entry.Total,
		})
	}
	return series, nil
}

var errMissingField = errors.New("missing field")

func missingField(path string) error {
	return &FetchError{Op: "parse", Err: fmt.Errorf("%w: %s", errMissingField, path)}
}

// IsMissingField reports whether err comes from an absent response field.
func IsMissingField(err error) bool {
	return errors.Is(err, errMissingField)
}
