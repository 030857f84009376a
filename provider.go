package currency

import (
	"fmt"
	"strings"
)

// Provider names the source of the rate feed. It satisfies pflag.Value so it
// can be given on the command line directly.
type Provider string

const (
	BankOfTaiwanProvider Provider = "BankOfTaiwan"
	FileProvider         Provider = "File"
	EmptyProvider        Provider = ""
)

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "bankoftaiwan", "bot":
		return BankOfTaiwanProvider, nil
	case "file":
		return FileProvider, nil
	}

	return EmptyProvider, fmt.Errorf("value %s is not valid Provider", str)
}

func (p Provider) String() string {
	return string(p)
}

func (p *Provider) Set(value string) error {
	provider, err := ConvertToProviderFromString(value)

	if err != nil {
		return err
	}

	*p = provider

	return nil
}

func (p *Provider) Type() string {
	return "provider"
}
