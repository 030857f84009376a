// Package filter loads the set of currency codes the crawler accepts from the feed.
package filter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const DefaultPath = "resources/currency.txt"

var ErrAcceptedSetUnreadable = errors.New("accepted currency set cannot be read")

type (
	Set map[string]struct{}

	FileLoader struct {
		Fs   afero.Fs
		Path string
	}
)

func New(codes ...string) Set {
	set := make(Set, len(codes))

	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			set[code] = struct{}{}
		}
	}

	return set
}

func (s Set) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

func (l FileLoader) Load() (Set, error) {
	fs := l.Fs

	if fs == nil {
		fs = afero.NewOsFs()
	}

	file, err := fs.Open(l.Path)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcceptedSetUnreadable, err)
	}

	defer file.Close()

	set := Set{}
	reader := bufio.NewReader(file)

	// ReadString has no line length limit, unlike bufio.Scanner.
	for {
		line, err := reader.ReadString('\n')

		if code := strings.TrimSpace(line); code != "" {
			set[code] = struct{}{}
		}

		if errors.Is(err, io.EOF) {
			return set, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAcceptedSetUnreadable, err)
		}
	}
}

// ResolvePath looks for a relative path in the working directory first and
// falls back to the directory of the running executable.
func ResolvePath(fs afero.Fs, path string) string {
	if path == "" {
		path = DefaultPath
	}

	if filepath.IsAbs(path) {
		return path
	}

	if exists, _ := afero.Exists(fs, path); exists {
		return path
	}

	executable, err := os.Executable()

	if err != nil {
		return path
	}

	candidate := filepath.Join(filepath.Dir(executable), path)

	if exists, _ := afero.Exists(fs, candidate); exists {
		return candidate
	}

	return path
}
