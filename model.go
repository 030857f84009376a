package currency

import "time"

type Rate struct {
	Currency  string
	Rate      float64
	CreatedAt time.Time
}
