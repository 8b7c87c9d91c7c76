package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/devsnap/internal/execshell"
	"github.com/temirov/devsnap/internal/gitconfig"
	"github.com/temirov/devsnap/internal/homebrew"
	"github.com/temirov/devsnap/internal/provider"
	"github.com/temirov/devsnap/internal/snapshot"
	"github.com/temirov/devsnap/internal/ui"
	"github.com/temirov/devsnap/internal/utils"
	pathutils "github.com/temirov/devsnap/internal/utils/path"
)

const (
	applicationNameConstant             = "devsnap"
	applicationShortDescriptionConstant = "Developer-machine configuration snapshots"
	applicationLongDescriptionConstant  = "devsnap captures, verifies, and restores developer machine configuration through git and homebrew providers."

	configFileFlagNameConstant  = "config"
	configFileFlagUsageConstant = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant    = "log-level"
	logLevelFlagUsageConstant   = "Override the configured log level."
	logFormatFlagNameConstant   = "log-format"
	logFormatFlagUsageConstant  = "Override the configured log format (structured or console)."

	commonConfigurationKeyConstant    = "common"
	commonLogLevelConfigKeyConstant   = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant  = commonConfigurationKeyConstant + ".log_format"
	captureOutputDirConfigKeyConstant = "capture.output_dir"
	captureFormatConfigKeyConstant    = "capture.format"
	gitRootsConfigKeyConstant         = "providers.git.roots"

	environmentPrefixConstant              = "DEVSNAP"
	configurationNameConstant              = "config"
	configurationTypeConstant              = "yaml"
	defaultConfigurationSearchPathConstant = "."
	defaultOutputDirectoryConstant         = "~/.devsnap/snapshots"

	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common    ApplicationCommonConfiguration `mapstructure:"common"`
	Capture   CaptureConfiguration           `mapstructure:"capture"`
	Providers ProvidersConfiguration         `mapstructure:"providers"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// CaptureConfiguration stores capture defaults overridable per invocation.
type CaptureConfiguration struct {
	OutputDirectory string `mapstructure:"output_dir"`
	Format          string `mapstructure:"format"`
}

// ProvidersConfiguration groups per-provider configuration sections.
type ProvidersConfiguration struct {
	Git gitconfig.Configuration `mapstructure:"git"`
}

// RunnerProvider builds a snapshot runner writing human-readable output to the supplied writer.
type RunnerProvider func(outputWriter io.Writer) (*snapshot.Runner, error)

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfiguration, _ := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	captureBuilder := CaptureCommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() CaptureConfiguration {
			return application.configuration.Capture
		},
		RunnerProvider: application.buildRunner,
	}
	if captureCommand, captureBuildError := captureBuilder.Build(); captureBuildError == nil {
		cobraCommand.AddCommand(captureCommand)
	}

	verifyBuilder := VerifyCommandBuilder{
		LoggerProvider: loggerProvider,
		RunnerProvider: application.buildRunner,
	}
	if verifyCommand, verifyBuildError := verifyBuilder.Build(); verifyBuildError == nil {
		cobraCommand.AddCommand(verifyCommand)
	}

	restoreBuilder := RestoreCommandBuilder{
		LoggerProvider: loggerProvider,
		RunnerProvider: application.buildRunner,
	}
	if restoreCommand, restoreBuildError := restoreBuilder.Build(); restoreBuildError == nil {
		cobraCommand.AddCommand(restoreCommand)
	}

	showBuilder := ShowCommandBuilder{
		LoggerProvider: loggerProvider,
		RunnerProvider: application.buildRunner,
	}
	if showCommand, showBuildError := showBuilder.Build(); showBuildError == nil {
		cobraCommand.AddCommand(showCommand)
	}

	providersBuilder := ProvidersCommandBuilder{
		ProviderNamesProvider: application.providerNames,
	}
	if providersCommand, providersBuildError := providersBuilder.Build(); providersBuildError == nil {
		cobraCommand.AddCommand(providersCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:   string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:  string(utils.LogFormatStructured),
		captureOutputDirConfigKeyConstant: defaultOutputDirectoryConstant,
		captureFormatConfigKeyConstant:    snapshot.FormatJSON,
		gitRootsConfigKeyConstant:         gitconfig.DefaultConfiguration().Roots,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	configuredLogger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = configuredLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) buildRegistry() (*provider.Registry, error) {
	shellExecutor, executorError := execshell.NewShellExecutorWithObserver(
		application.logger,
		execshell.NewOSCommandRunner(),
		ui.NewConsoleCommandEventLogger(application.logger),
	)
	if executorError != nil {
		return nil, executorError
	}

	homeDirectory := pathutils.NewHomeExpander().HomeDirectory()
	gitProvider := gitconfig.NewProvider(shellExecutor, application.configuration.Providers.Git, homeDirectory, application.logger)
	brewProvider := homebrew.NewProvider(shellExecutor, application.logger)

	return provider.NewRegistry(gitProvider, brewProvider), nil
}

func (application *Application) buildRunner(outputWriter io.Writer) (*snapshot.Runner, error) {
	providerRegistry, registryError := application.buildRegistry()
	if registryError != nil {
		return nil, registryError
	}
	return snapshot.NewRunner(providerRegistry, application.logger, outputWriter, nil), nil
}

func (application *Application) providerNames() []string {
	providerRegistry, registryError := application.buildRegistry()
	if registryError != nil {
		return nil
	}
	registeredNames := make([]string, 0, len(providerRegistry.Providers()))
	for _, registeredProvider := range providerRegistry.Providers() {
		registeredNames = append(registeredNames, registeredProvider.Name())
	}
	return registeredNames
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
