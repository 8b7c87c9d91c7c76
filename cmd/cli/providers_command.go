package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	providersCommandUseConstant   = "providers"
	providersCommandShortConstant = "List the registered providers"

	providerLineTemplateConstant         = "%s\n"
	missingProviderNamesMessageConstant  = "provider names provider not configured"
	noRegisteredProvidersMessageConstant = "no providers registered"
)

// ProvidersCommandBuilder assembles the providers subcommand.
type ProvidersCommandBuilder struct {
	ProviderNamesProvider func() []string
}

// Build wires the providers listing command.
func (builder *ProvidersCommandBuilder) Build() (*cobra.Command, error) {
	if builder.ProviderNamesProvider == nil {
		return nil, errors.New(missingProviderNamesMessageConstant)
	}

	providersCommand := &cobra.Command{
		Use:   providersCommandUseConstant,
		Short: providersCommandShortConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			registeredNames := builder.ProviderNamesProvider()
			if len(registeredNames) == 0 {
				return errors.New(noRegisteredProvidersMessageConstant)
			}
			for _, providerName := range registeredNames {
				fmt.Fprintf(command.OutOrStdout(), providerLineTemplateConstant, providerName)
			}
			return nil
		},
	}

	return providersCommand, nil
}
