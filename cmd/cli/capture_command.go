package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/devsnap/internal/snapshot"
	pathutils "github.com/temirov/devsnap/internal/utils/path"
)

const (
	captureCommandUseConstant   = "capture"
	captureCommandShortConstant = "Capture the current machine configuration into a snapshot"
	captureCommandLongConstant  = "Capture runs every selected provider and writes its artifacts into a new snapshot directory."

	outputDirFlagNameConstant      = "output-dir"
	outputDirFlagShorthandConstant = "o"
	outputDirFlagUsageConstant     = "Directory that receives the snapshot (defaults to the configured capture.output_dir)."
	snapshotNameFlagNameConstant   = "snapshot-name"
	snapshotNameFlagUsageConstant  = "Snapshot name (defaults to a timestamped name)."
	includeFlagNameConstant        = "include"
	includeFlagUsageConstant       = "Provider names to run; all registered providers when empty."
	excludeFlagNameConstant        = "exclude"
	excludeFlagUsageConstant       = "Provider names to skip."
	formatFlagNameConstant         = "format"
	formatFlagUsageConstant        = "Snapshot metadata format (json or yaml)."
	verboseFlagNameConstant        = "verbose"
	verboseFlagShorthandConstant   = "v"
	verboseFlagUsageConstant       = "Print per-provider detail entries."

	missingLoggerProviderMessageConstant = "logger provider not configured"
	missingRunnerProviderMessageConstant = "runner provider not configured"
	missingConfigurationMessageConstant  = "configuration provider not configured"
	providerFailureMessageConstant       = "one or more providers reported failures"

	captureStartedMessageConstant = "capture started"
	captureFieldSnapshotConstant  = "snapshot"
	captureFieldOutputConstant    = "output_dir"
)

// CaptureCommandBuilder assembles the capture subcommand.
type CaptureCommandBuilder struct {
	LoggerProvider        func() *zap.Logger
	ConfigurationProvider func() CaptureConfiguration
	RunnerProvider        RunnerProvider
}

// Build wires the capture command with its flag surface.
func (builder *CaptureCommandBuilder) Build() (*cobra.Command, error) {
	if builder.LoggerProvider == nil {
		return nil, errors.New(missingLoggerProviderMessageConstant)
	}
	if builder.RunnerProvider == nil {
		return nil, errors.New(missingRunnerProviderMessageConstant)
	}
	if builder.ConfigurationProvider == nil {
		return nil, errors.New(missingConfigurationMessageConstant)
	}

	var (
		outputDirectoryFlagValue string
		snapshotNameFlagValue    string
		includeFlagValue         []string
		excludeFlagValue         []string
		formatFlagValue          string
		verboseFlagValue         bool
	)

	captureCommand := &cobra.Command{
		Use:   captureCommandUseConstant,
		Short: captureCommandShortConstant,
		Long:  captureCommandLongConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			captureConfiguration := builder.ConfigurationProvider()

			outputDirectory := captureConfiguration.OutputDirectory
			if command.Flags().Changed(outputDirFlagNameConstant) {
				outputDirectory = outputDirectoryFlagValue
			}
			outputDirectory = pathutils.NewHomeExpander().Expand(outputDirectory)

			metadataFormat := captureConfiguration.Format
			if command.Flags().Changed(formatFlagNameConstant) {
				metadataFormat = formatFlagValue
			}

			builder.LoggerProvider().Info(
				captureStartedMessageConstant,
				zap.String(captureFieldSnapshotConstant, snapshotNameFlagValue),
				zap.String(captureFieldOutputConstant, outputDirectory),
			)

			snapshotRunner, runnerError := builder.RunnerProvider(command.OutOrStdout())
			if runnerError != nil {
				return runnerError
			}

			captureSummary, captureError := snapshotRunner.Capture(command.Context(), snapshot.CaptureOptions{
				OutputDirectory: outputDirectory,
				SnapshotName:    snapshotNameFlagValue,
				IncludeNames:    includeFlagValue,
				ExcludeNames:    excludeFlagValue,
				Format:          metadataFormat,
				Verbose:         verboseFlagValue,
			})
			if captureError != nil {
				return captureError
			}
			if !captureSummary.OK {
				return NewProviderFailureError(providerFailureMessageConstant)
			}
			return nil
		},
	}

	captureCommand.Flags().StringVarP(&outputDirectoryFlagValue, outputDirFlagNameConstant, outputDirFlagShorthandConstant, "", outputDirFlagUsageConstant)
	captureCommand.Flags().StringVar(&snapshotNameFlagValue, snapshotNameFlagNameConstant, "", snapshotNameFlagUsageConstant)
	captureCommand.Flags().StringSliceVar(&includeFlagValue, includeFlagNameConstant, nil, includeFlagUsageConstant)
	captureCommand.Flags().StringSliceVar(&excludeFlagValue, excludeFlagNameConstant, nil, excludeFlagUsageConstant)
	captureCommand.Flags().StringVar(&formatFlagValue, formatFlagNameConstant, "", formatFlagUsageConstant)
	captureCommand.Flags().BoolVarP(&verboseFlagValue, verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagUsageConstant)

	return captureCommand, nil
}
