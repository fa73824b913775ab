package teztok

import (
	"fmt"
	"strings"
	"time"

	"fxhashETL/internal/model"
)

// DateLayout is the calendar day format accepted by the activity query.
const DateLayout = "2006-01-02"

// ActivityQuery builds the events query for one calendar day of fxhash activity.
// The timestamp range is inclusive: [date 00:00:00, date 23:59:59].
func ActivityQuery(limit, offset int, date string) (string, error) {
	if limit < 0 || offset < 0 {
		return "", fmt.Errorf("limit and offset must be non-negative")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}

	var types strings.Builder
	for _, tag := range model.KnownEventTags() {
		fmt.Fprintf(&types, "\n          { type: { _eq: %q } }", string(tag))
	}

	return fmt.Sprintf(`query FxhashActivity {
  events(
    where: {
      _or: [%s
      ]
      _and: [
        { timestamp: { _gte: "%sT00:00:00" } }
        { timestamp: { _lte: "%sT23:59:59" } }
      ]
    }
    limit: %d
    offset: %d
  ) {
    type
    timestamp
    price
    buyer_address
    seller_address
    artist_address
    artist_profile {
      alias
    }
    token {
      fa2_address
      token_id
      fx_issuer_id
      fx_iteration
      fx_collection_name
      fx_collection_editions
      fx_collection_thumbnail_uri
      thumbnail_uri
    }
  }
}`, types.String(), date, date, limit, offset), nil
}
