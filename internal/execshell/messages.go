package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	stageStartTemplateConstant            = "Running %s"
	stageSuccessTemplateConstant          = "Completed %s"
	stageFailureTemplateConstant          = "%s failed with exit code %d%s"
	stageExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant          = "%s%s"
	workingDirectorySuffixTemplate        = " (in %s)"
	commandArgumentsJoinSeparatorConstant = " "
	standardErrorSuffixTemplateConstant   = ": %s"
	unknownFailureMessageConstant         = "unknown error"
	emptyStringConstant                   = ""
)

func describeCommand(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}

	workingDirectorySuffix := emptyStringConstant
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplate, trimmedWorkingDirectory)
	}

	return fmt.Sprintf(commandLabelTemplateConstant, strings.Join(commandParts, commandArgumentsJoinSeparatorConstant), workingDirectorySuffix)
}

func buildStageMessage(stage messageStage, command ShellCommand, result ExecutionResult, failure error) string {
	commandLabel := describeCommand(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(stageStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(stageSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(stageFailureTemplateConstant, commandLabel, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		failureMessage := unknownFailureMessageConstant
		if failure != nil {
			failureMessage = failure.Error()
		}
		return fmt.Sprintf(stageExecutionFailureTemplateConstant, commandLabel, failureMessage)
	}
}

func formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
