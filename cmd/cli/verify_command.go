package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/devsnap/internal/snapshot"
	pathutils "github.com/temirov/devsnap/internal/utils/path"
)

const (
	verifyCommandUseConstant   = "verify"
	verifyCommandShortConstant = "Verify providers against an existing snapshot"
	verifyCommandLongConstant  = "Verify checks tool availability and snapshot artifact health without changing any state."

	inputDirFlagNameConstant      = "input-dir"
	inputDirFlagShorthandConstant = "i"
	inputDirFlagUsageConstant     = "Snapshot directory to inspect."

	verifyStartedMessageConstant = "verify started"
	verifyFieldSnapshotConstant  = "snapshot_dir"
)

// VerifyCommandBuilder assembles the verify subcommand.
type VerifyCommandBuilder struct {
	LoggerProvider func() *zap.Logger
	RunnerProvider RunnerProvider
}

// Build wires the verify command with its flag surface.
func (builder *VerifyCommandBuilder) Build() (*cobra.Command, error) {
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
		verboseFlagValue        bool
	)

	verifyCommand := &cobra.Command{
		Use:   verifyCommandUseConstant,
		Short: verifyCommandShortConstant,
		Long:  verifyCommandLongConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			snapshotDirectory := pathutils.NewHomeExpander().Expand(inputDirectoryFlagValue)

			builder.LoggerProvider().Info(
				verifyStartedMessageConstant,
				zap.String(verifyFieldSnapshotConstant, snapshotDirectory),
			)

			snapshotRunner, runnerError := builder.RunnerProvider(command.OutOrStdout())
			if runnerError != nil {
				return runnerError
			}

			verifySummary, verifyError := snapshotRunner.Verify(command.Context(), snapshot.VerifyOptions{
				SnapshotDirectory: snapshotDirectory,
				IncludeNames:      includeFlagValue,
				ExcludeNames:      excludeFlagValue,
				Verbose:           verboseFlagValue,
			})
			if verifyError != nil {
				return verifyError
			}
			if !verifySummary.OK {
				return NewProviderFailureError(providerFailureMessageConstant)
			}
			return nil
		},
	}

	verifyCommand.Flags().StringVarP(&inputDirectoryFlagValue, inputDirFlagNameConstant, inputDirFlagShorthandConstant, "", inputDirFlagUsageConstant)
	verifyCommand.Flags().StringSliceVar(&includeFlagValue, includeFlagNameConstant, nil, includeFlagUsageConstant)
	verifyCommand.Flags().StringSliceVar(&excludeFlagValue, excludeFlagNameConstant, nil, excludeFlagUsageConstant)
	verifyCommand.Flags().BoolVarP(&verboseFlagValue, verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagUsageConstant)
	if markError := verifyCommand.MarkFlagRequired(inputDirFlagNameConstant); markError != nil {
		return nil, markError
	}

	return verifyCommand, nil
}
