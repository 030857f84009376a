package currency

import "context"

type (
	Service interface {
		Save(ctx context.Context) (map[string][]Rate, error)
	}

	Conversion interface {
		Convert(ctx context.Context, from, to string, value float64) (float64, error)
	}
)
