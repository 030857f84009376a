package fetchers

import (
	"context"
	"io"
	"net/http"
)

// BankOfTaiwanFetcher downloads the daily exchange-rate CSV published by the
// Bank of Taiwan.
type BankOfTaiwanFetcher struct {
	URL    string
	Client *http.Client
}

func (b BankOfTaiwanFetcher) Fetch(ctx context.Context) (string, error) {
	url := b.URL

	if url == "" {
		url = BankOfTaiwanURL
	}

	client := b.Client

	if client == nil {
		client = http.DefaultClient
	}

	req, err := getData(ctx, url)

	if err != nil {
		return "", unreachable(err)
	}

	res, err := client.Do(req)

	if err != nil {
		return "", unreachable(err)
	}

	defer res.Body.Close()

	if err := handleHTTPStatusCodeError(res); err != nil {
		return "", unreachable(err)
	}

	body, err := io.ReadAll(res.Body)

	if err != nil {
		return "", unreachable(err)
	}

	text, err := decode(body)

	if err != nil {
		return "", unreachable(err)
	}

	return text, nil
}
