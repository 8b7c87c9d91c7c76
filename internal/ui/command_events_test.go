package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/devsnap/internal/execshell"
	"github.com/temirov/devsnap/internal/ui"
)

const (
	testStartedCaseNameConstant          = "started"
	testCompletedCaseNameConstant        = "completed_success"
	testCompletedFailureCaseNameConstant = "completed_failure"
	testExecutionFailureCaseNameConstant = "execution_failure"
	testVersionArgumentConstant          = "--version"
	testRepositoryDirectoryConstant      = "/tmp/repo"
)

func TestConsoleCommandEventLoggerLevels(testInstance *testing.T) {
	sampleCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{testVersionArgumentConstant}, WorkingDirectory: testRepositoryDirectoryConstant},
	}

	testCases := []struct {
		name            string
		notify          func(eventLogger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: testStartedCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandStarted(sampleCommand)
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: "Capturing with git --version (in /tmp/repo)",
		},
		{
			name: testCompletedCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(sampleCommand, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: "Finished git --version (in /tmp/repo)",
		},
		{
			name: testCompletedFailureCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(sampleCommand, execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal"})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "git --version (in /tmp/repo) exited with code 128: fatal",
		},
		{
			name: testExecutionFailureCaseNameConstant,
			notify: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(sampleCommand, errors.New("not found"))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "git --version (in /tmp/repo) could not run: not found",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.notify(eventLogger)

			recordedEntries := observedLogs.All()
			require.Len(testInstance, recordedEntries, 1)
			require.Equal(testInstance, testCase.expectedLevel, recordedEntries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, recordedEntries[0].Message)
		})
	}
}
