package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/devsnap/internal/provider"
	"github.com/temirov/devsnap/internal/snapshot"
)

const (
	testStubProviderNameConstant = "stub"
	testCaptureSnapshotName      = "internal-test-snapshot"
	testCaptureSuccessTestName   = "capture_success"
	testCaptureProviderFailName  = "capture_provider_failure"
	testCaptureUnknownFormatName = "capture_unknown_format"
)

type stubCliProvider struct {
	captureOK bool
}

func (stubProvider *stubCliProvider) Name() string {
	return testStubProviderNameConstant
}

func (stubProvider *stubCliProvider) Capture(_ context.Context, _ provider.RunContext) (provider.CaptureResult, error) {
	return provider.CaptureResult{OK: stubProvider.captureOK}, nil
}

func (stubProvider *stubCliProvider) Verify(_ context.Context, _ provider.RunContext) (provider.VerifyResult, error) {
	return provider.VerifyResult{OK: stubProvider.captureOK}, nil
}

func (stubProvider *stubCliProvider) Restore(_ context.Context, _ provider.RunContext) (provider.RestoreResult, error) {
	return provider.RestoreResult{OK: stubProvider.captureOK}, nil
}

func stubRunnerProvider(captureOK bool) RunnerProvider {
	return func(outputWriter io.Writer) (*snapshot.Runner, error) {
		providerRegistry := provider.NewRegistry(&stubCliProvider{captureOK: captureOK})
		return snapshot.NewRunner(providerRegistry, zap.NewNop(), outputWriter, nil), nil
	}
}

func TestApplicationCommandTree(testInstance *testing.T) {
	application := NewApplication()

	registeredCommandNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredCommandNames[registeredCommand.Name()] = true
	}

	for _, expectedCommandName := range []string{
		captureCommandUseConstant,
		verifyCommandUseConstant,
		restoreCommandUseConstant,
		showCommandUseConstant,
		providersCommandUseConstant,
	} {
		require.True(testInstance, registeredCommandNames[expectedCommandName], expectedCommandName)
	}
}

func TestCaptureCommandOutcomes(testInstance *testing.T) {
	testCases := []struct {
		name           string
		captureOK      bool
		extraArguments []string
		expectExitCode int
		expectMetadata bool
	}{
		{
			name:           testCaptureSuccessTestName,
			captureOK:      true,
			expectMetadata: true,
		},
		{
			name:           testCaptureProviderFailName,
			captureOK:      false,
			expectExitCode: ProviderFailureExitCode,
			expectMetadata: true,
		},
		{
			name:           testCaptureUnknownFormatName,
			captureOK:      true,
			extraArguments: []string{"--format", "toml"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			outputDirectory := subtestInstance.TempDir()
			captureBuilder := CaptureCommandBuilder{
				LoggerProvider: zap.NewNop,
				ConfigurationProvider: func() CaptureConfiguration {
					return CaptureConfiguration{OutputDirectory: outputDirectory, Format: snapshot.FormatJSON}
				},
				RunnerProvider: stubRunnerProvider(testCase.captureOK),
			}
			captureCommand, buildError := captureBuilder.Build()
			require.NoError(subtestInstance, buildError)

			captureCommand.SetOut(&bytes.Buffer{})
			captureCommand.SetErr(&bytes.Buffer{})
			captureCommand.SetContext(context.Background())
			captureCommand.SetArgs(append([]string{"--snapshot-name", testCaptureSnapshotName}, testCase.extraArguments...))

			executionError := captureCommand.Execute()

			metadataPath := filepath.Join(outputDirectory, testCaptureSnapshotName, "metadata.json")
			if testCase.expectMetadata {
				_, statError := os.Stat(metadataPath)
				require.NoError(subtestInstance, statError)
			} else {
				_, statError := os.Stat(metadataPath)
				require.True(subtestInstance, os.IsNotExist(statError))
			}

			if testCase.expectExitCode > 0 {
				var exitCodeError *ExitCodeError
				require.ErrorAs(subtestInstance, executionError, &exitCodeError)
				require.Equal(subtestInstance, testCase.expectExitCode, exitCodeError.Code)
				return
			}
			if len(testCase.extraArguments) > 0 {
				require.Error(subtestInstance, executionError)
				return
			}
			require.NoError(subtestInstance, executionError)
		})
	}
}

func TestCommandBuildersRequireCollaborators(testInstance *testing.T) {
	_, captureBuildError := (&CaptureCommandBuilder{}).Build()
	require.Error(testInstance, captureBuildError)

	_, verifyBuildError := (&VerifyCommandBuilder{}).Build()
	require.Error(testInstance, verifyBuildError)

	_, restoreBuildError := (&RestoreCommandBuilder{}).Build()
	require.Error(testInstance, restoreBuildError)

	_, showBuildError := (&ShowCommandBuilder{}).Build()
	require.Error(testInstance, showBuildError)

	_, providersBuildError := (&ProvidersCommandBuilder{}).Build()
	require.Error(testInstance, providersBuildError)

	providersCommand, providersOKError := (&ProvidersCommandBuilder{
		ProviderNamesProvider: func() []string { return []string{testStubProviderNameConstant} },
	}).Build()
	require.NoError(testInstance, providersOKError)
	outputBuffer := &bytes.Buffer{}
	providersCommand.SetOut(outputBuffer)
	providersCommand.SetArgs(nil)
	require.NoError(testInstance, providersCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), testStubProviderNameConstant)
}

func TestRestoreCommandPassesApplyFlag(testInstance *testing.T) {
	recordingProvider := &applyRecordingProvider{}
	restoreBuilder := RestoreCommandBuilder{
		LoggerProvider: zap.NewNop,
		RunnerProvider: func(outputWriter io.Writer) (*snapshot.Runner, error) {
			return snapshot.NewRunner(provider.NewRegistry(recordingProvider), zap.NewNop(), outputWriter, nil), nil
		},
	}
	restoreCommand, buildError := restoreBuilder.Build()
	require.NoError(testInstance, buildError)

	restoreCommand.SetOut(&bytes.Buffer{})
	restoreCommand.SetErr(&bytes.Buffer{})
	restoreCommand.SetContext(context.Background())
	restoreCommand.SetArgs([]string{"--input-dir", testInstance.TempDir(), "--apply"})

	require.NoError(testInstance, restoreCommand.Execute())
	require.NotNil(testInstance, recordingProvider.observedApply)
	require.True(testInstance, *recordingProvider.observedApply)
}

type applyRecordingProvider struct {
	observedApply *bool
}

func (recordingProvider *applyRecordingProvider) Name() string {
	return testStubProviderNameConstant
}

func (recordingProvider *applyRecordingProvider) Capture(_ context.Context, _ provider.RunContext) (provider.CaptureResult, error) {
	return provider.CaptureResult{OK: true}, nil
}

func (recordingProvider *applyRecordingProvider) Verify(_ context.Context, _ provider.RunContext) (provider.VerifyResult, error) {
	return provider.VerifyResult{OK: true}, nil
}

func (recordingProvider *applyRecordingProvider) Restore(_ context.Context, runContext provider.RunContext) (provider.RestoreResult, error) {
	applyValue := runContext.ApplyChanges
	recordingProvider.observedApply = &applyValue
	return provider.RestoreResult{OK: true}, nil
}
