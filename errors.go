package currency

import "fmt"

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageConfig Stage = "config"
	StageFilter Stage = "filter"
	StageFetch  Stage = "fetch"
	StageStore  Stage = "store"
)

type StageError struct {
	Stage   Stage
	Storage string
	Err     error
}

func (e *StageError) Error() string {
	if e.Storage != "" {
		return fmt.Sprintf("%s stage (%s): %v", e.Stage, e.Storage, e.Err)
	}

	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
