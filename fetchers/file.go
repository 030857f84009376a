package fetchers

import (
	"context"

	"github.com/spf13/afero"
)

// FileFetcher replays a feed previously saved to disk.
type FileFetcher struct {
	Fs   afero.Fs
	Path string
}

func (f FileFetcher) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", unreachable(err)
	}

	fs := f.Fs

	if fs == nil {
		fs = afero.NewOsFs()
	}

	body, err := afero.ReadFile(fs, f.Path)

	if err != nil {
		return "", unreachable(err)
	}

	text, err := decode(body)

	if err != nil {
		return "", unreachable(err)
	}

	return text, nil
}
