package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/devsnap/internal/snapshot"
	pathutils "github.com/temirov/devsnap/internal/utils/path"
)

const (
	restoreCommandUseConstant   = "restore"
	restoreCommandShortConstant = "Restore configuration from a snapshot"
	restoreCommandLongConstant  = "Restore previews the actions a snapshot implies; --apply permits providers that support mutation to execute them."

	applyFlagNameConstant  = "apply"
	applyFlagUsageConstant = "Execute restore actions instead of previewing them."

	restoreStartedMessageConstant = "restore started"
	restoreFieldSnapshotConstant  = "snapshot_dir"
	restoreFieldApplyConstant     = "apply"
)

// RestoreCommandBuilder assembles the restore subcommand.
type RestoreCommandBuilder struct {
	LoggerProvider func() *zap.Logger
	RunnerProvider RunnerProvider
}

// Build wires the restore command with its flag surface.
func (builder *RestoreCommandBuilder) Build() (*cobra.Command, error) {
	if builder.LoggerProvider == nil {
		return nil, errors.New(missingLoggerProviderMessageConstant)
	}
	if builder.RunnerProvider == nil {
		return nil, errors.New(missingRunnerProviderMessageConstant)
	}

	var (
		inputDirectoryFlagValue string
		includeFlagValue        []string
		excludeFlagValue        []string
		applyFlagValue          bool
		verboseFlagValue        bool
	)

	restoreCommand := &cobra.Command{
		Use:   restoreCommandUseConstant,
		Short: restoreCommandShortConstant,
		Long:  restoreCommandLongConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			snapshotDirectory := pathutils.NewHomeExpander().Expand(inputDirectoryFlagValue)

			builder.LoggerProvider().Info(
				restoreStartedMessageConstant,
				zap.String(restoreFieldSnapshotConstant, snapshotDirectory),
				zap.Bool(restoreFieldApplyConstant, applyFlagValue),
			)

			snapshotRunner, runnerError := builder.RunnerProvider(command.OutOrStdout())
			if runnerError != nil {
				return runnerError
			}

			restoreSummary, restoreError := snapshotRunner.Restore(command.Context(), snapshot.RestoreOptions{
				SnapshotDirectory: snapshotDirectory,
				IncludeNames:      includeFlagValue,
				ExcludeNames:      excludeFlagValue,
				ApplyChanges:      applyFlagValue,
				Verbose:           verboseFlagValue,
			})
			if restoreError != nil {
				return restoreError
			}
			if !restoreSummary.OK {
				return NewProviderFailureError(providerFailureMessageConstant)
			}
			return nil
		},
	}

	restoreCommand.Flags().StringVarP(&inputDirectoryFlagValue, inputDirFlagNameConstant, inputDirFlagShorthandConstant, "", inputDirFlagUsageConstant)
	restoreCommand.Flags().StringSliceVar(&includeFlagValue, includeFlagNameConstant, nil, includeFlagUsageConstant)
	restoreCommand.Flags().StringSliceVar(&excludeFlagValue, excludeFlagNameConstant, nil, excludeFlagUsageConstant)
	restoreCommand.Flags().BoolVar(&applyFlagValue, applyFlagNameConstant, false, applyFlagUsageConstant)
	restoreCommand.Flags().BoolVarP(&verboseFlagValue, verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagUsageConstant)
	if markError := restoreCommand.MarkFlagRequired(inputDirFlagNameConstant); markError != nil {
		return nil, markError
	}

	return restoreCommand, nil
}
