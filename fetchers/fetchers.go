package fetchers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	BankOfTaiwanURL = "https://rate.bot.com.tw/xrt/flcsv/0/day"
	byteOrderMark   = "\ufeff"
)

var (
	ErrFeedUnreachable = errors.New("feed unreachable")
	ErrInvalidEncoding = errors.New("feed is not valid UTF-8")
	ErrClient          = errors.New("client error")
	ErrServer          = errors.New("server error")
	ErrUnknown         = errors.New("unknown error")
)

func unreachable(err error) error {
	return fmt.Errorf("%w: %w", ErrFeedUnreachable, err)
}

func getData(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	req.Header.Add("Accept", "text/csv")

	return req, nil
}

func handleHTTPStatusCodeError(res *http.Response) error {
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrClient, res.StatusCode)
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrServer, res.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", ErrUnknown, res.StatusCode)
	}
}

func decode(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", ErrInvalidEncoding
	}

	return strings.TrimPrefix(string(body), byteOrderMark), nil
}
