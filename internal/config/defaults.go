package config

const (
	defaultConfigsDir         = "configs"
	defaultDatasetsDir        = "corpora/datasets"
	defaultDockerDir          = "docker"
	defaultLogsDir            = "logs"
	defaultPrefabsDir         = "prefabs"
	defaultTaggersDir         = "taggers"
	defaultDockerVersion      = "latest"
	defaultPrefabPolicy       = PrefabSkipIfExists
	defaultPythonInterpreter  = "python3"
	defaultRequirementsScript = "requirements.sh"
	defaultEntryScript        = "train.py"
	defaultPieDevice          = "cuda:0"
	defaultHistoryFile        = "history.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Prefab copy policies.
const (
	// PrefabSkipIfExists copies the prefab tree only when the docker context
	// folder did not exist before the build started.
	PrefabSkipIfExists = "skip_if_exists"
	// PrefabAlways copies the prefab tree on every build.
	PrefabAlways = "always"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ConfigsDir:  defaultConfigsDir,
			DatasetsDir: defaultDatasetsDir,
			DockerDir:   defaultDockerDir,
			LogsDir:     defaultLogsDir,
			PrefabsDir:  defaultPrefabsDir,
			TaggersDir:  defaultTaggersDir,
		},
		Docker: Docker{
			Version:      defaultDockerVersion,
			PrefabPolicy: defaultPrefabPolicy,
		},
		Python: Python{
			Interpreter:        defaultPythonInterpreter,
			RequirementsScript: defaultRequirementsScript,
			EntryScript:        defaultEntryScript,
		},
		Pie: Pie{
			Device: defaultPieDevice,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
