package execshell

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

const (
	gitToolNameConstant  = "git"
	brewToolNameConstant = "brew"

	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"

	commandFailureTemplateConstant          = "%s exited with code %d"
	commandExecutionFailureTemplateConstant = "%s execution failed: %v"
	toolNotFoundTemplateConstant            = "%s not found in PATH"
)

// CommandName identifies a supported external tool.
type CommandName string

// Supported external tools.
const (
	CommandGit  CommandName = CommandName(gitToolNameConstant)
	CommandBrew CommandName = CommandName(brewToolNameConstant)
)

// CommandDetails describes one tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner abstracts process execution for testability.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ToolPathResolver resolves an executable name to an absolute path.
type ToolPathResolver func(executableName string) (string, error)

// Initialization errors surfaced by NewShellExecutor.
var (
	ErrLoggerNotConfigured        = errors.New(loggerNotConfiguredMessageConstant)
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command and its exit code.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailureTemplateConstant, describeCommand(failure.Command), failure.Result.ExitCode)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the command and the underlying execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailureTemplateConstant, describeCommand(failure.Command), failure.Cause)
}

// Unwrap exposes the underlying execution failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ToolNotFoundError reports an external tool missing from the search path.
type ToolNotFoundError struct {
	Tool  CommandName
	Cause error
}

// Error describes the missing tool.
func (failure ToolNotFoundError) Error() string {
	return fmt.Sprintf(toolNotFoundTemplateConstant, failure.Tool)
}

// Unwrap exposes the underlying lookup failure.
func (failure ToolNotFoundError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs external tools while logging command lifecycle events.
type ShellExecutor struct {
	logger           *zap.Logger
	commandRunner    CommandRunner
	eventObserver    CommandEventObserver
	toolPathResolver ToolPathResolver
}

// NewShellExecutor constructs a ShellExecutor with a no-op event observer.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, commandRunner, noopCommandEventObserver{})
}

// NewShellExecutorWithObserver constructs a ShellExecutor notifying the provided observer.
func NewShellExecutorWithObserver(logger *zap.Logger, commandRunner CommandRunner, eventObserver CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if eventObserver == nil {
		eventObserver = noopCommandEventObserver{}
	}

	return &ShellExecutor{
		logger:           logger,
		commandRunner:    commandRunner,
		eventObserver:    eventObserver,
		toolPathResolver: exec.LookPath,
	}, nil
}

// SetToolPathResolver overrides executable lookup, primarily for tests.
func (executor *ShellExecutor) SetToolPathResolver(resolver ToolPathResolver) {
	if resolver == nil {
		resolver = exec.LookPath
	}
	executor.toolPathResolver = resolver
}

// ResolveToolPath locates the named tool on the search path.
func (executor *ShellExecutor) ResolveToolPath(toolName CommandName) (string, error) {
	resolvedPath, lookupError := executor.toolPathResolver(string(toolName))
	if lookupError != nil {
		return "", ToolNotFoundError{Tool: toolName, Cause: lookupError}
	}
	return resolvedPath, nil
}

// Execute runs an arbitrary shell command through the configured runner.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.eventObserver.CommandStarted(command)
	executor.logger.Debug(buildStageMessage(messageStageStart, command, ExecutionResult{}, nil))

	executionResult, executionError := executor.commandRunner.Run(executionContext, command)
	if executionError != nil {
		executor.eventObserver.CommandExecutionFailed(command, executionError)
		executor.logger.Error(buildStageMessage(messageStageExecutionFailure, command, ExecutionResult{}, executionError))
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: executionError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Debug(buildStageMessage(messageStageFailure, command, executionResult, nil))
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(buildStageMessage(messageStageSuccess, command, executionResult, nil))
	return executionResult, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// ExecuteBrew runs Homebrew with the provided details.
func (executor *ShellExecutor) ExecuteBrew(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandBrew, Details: details})
}
