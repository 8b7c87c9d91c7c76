package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pathutils "github.com/temirov/devsnap/internal/utils/path"
)

const (
	showCommandUseConstant   = "show"
	showCommandShortConstant = "Render a captured snapshot"
	showCommandLongConstant  = "Show prints snapshot metadata, provider artifact presence, and the aggregated git analysis."

	showStartedMessageConstant = "show started"
	showFieldSnapshotConstant  = "snapshot_dir"
)

// ShowCommandBuilder assembles the show subcommand.
type ShowCommandBuilder struct {
	LoggerProvider func() *zap.Logger
	RunnerProvider RunnerProvider
}

// Build wires the show command with its flag surface.
func (builder *ShowCommandBuilder) Build() (*cobra.Command, error) {
	if builder.LoggerProvider == nil {
		return nil, errors.New(missingLoggerProviderMessageConstant)
	}
	if builder.RunnerProvider == nil {
		return nil, errors.New(missingRunnerProviderMessageConstant)
	}

	var inputDirectoryFlagValue string

	showCommand := &cobra.Command{
		Use:   showCommandUseConstant,
		Short: showCommandShortConstant,
		Long:  showCommandLongConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			snapshotDirectory := pathutils.NewHomeExpander().Expand(inputDirectoryFlagValue)

			builder.LoggerProvider().Debug(
				showStartedMessageConstant,
				zap.String(showFieldSnapshotConstant, snapshotDirectory),
			)

			snapshotRunner, runnerError := builder.RunnerProvider(command.OutOrStdout())
			if runnerError != nil {
				return runnerError
			}

			return snapshotRunner.Show(snapshotDirectory)
		},
	}

	showCommand.Flags().StringVarP(&inputDirectoryFlagValue, inputDirFlagNameConstant, inputDirFlagShorthandConstant, "", inputDirFlagUsageConstant)
	if markError := showCommand.MarkFlagRequired(inputDirFlagNameConstant); markError != nil {
		return nil, markError
	}

	return showCommand, nil
}
