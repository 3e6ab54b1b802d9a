package domain

import (
	"log"
	"strings"

	"github.com/Scusemua/go-utils/config"
	"github.com/goccy/go-json"
)

const (
	SettingsBackendMemory = "memory"
	SettingsBackendFile   = "file"
	SettingsBackendRedis  = "redis"

	PromptAnswerRestart      = "restart"
	PromptAnswerDontAskAgain = "dont-ask-again"
	PromptAnswerDismiss      = "dismiss"

	DefaultListenAddress     = "127.0.0.1:8765"
	DefaultJupyterServerUrl  = "http://127.0.0.1:8888"
	DefaultSettingsFile      = "notebook-commands.yaml"
	DefaultRedisAddress      = "127.0.0.1:6379"
	DefaultRequestTimeoutSec = 30
	DefaultCommandsPerSecond = 20
)

type JupyterOptions struct {
	JupyterServerUrl  string `name:"jupyter-server-url"    json:"jupyter-server-url"    yaml:"jupyter-server-url"    description:"Base URL of the Jupyter Server whose notebooks and kernels are controlled."`
	JupyterToken      string `name:"jupyter-token"         json:"-"                     yaml:"jupyter-token"         description:"Token used to authenticate with the Jupyter Server."`
	RequestTimeoutSec int    `name:"request-timeout-sec"   json:"request-timeout-sec"   yaml:"request-timeout-sec"   description:"Timeout, in seconds, of requests sent to the Jupyter Server."`
}

type SettingsOptions struct {
	SettingsBackend string `name:"settings-backend" json:"settings-backend" yaml:"settings-backend" description:"Where settings are kept: 'memory', 'file', or 'redis'."`
	SettingsFile    string `name:"settings-file"    json:"settings-file"    yaml:"settings-file"    description:"Path of the YAML settings file when the settings backend is 'file'."`
	RedisAddress    string `name:"redis-address"    json:"redis-address"    yaml:"redis-address"    description:"Address of the Redis server when the settings backend is 'redis'."`
	RedisPassword   string `name:"redis-password"   json:"-"                yaml:"redis-password"   description:"Password of the Redis server."`
	RedisDatabase   int    `name:"redis-database"   json:"redis-database"   yaml:"redis-database"   description:"Redis database number."`
	RedisKeyPrefix  string `name:"redis-key-prefix" json:"redis-key-prefix" yaml:"redis-key-prefix" description:"Prefix of the Redis keys holding settings."`
}

// ExtensionOptions configures the notebook command daemon.
type ExtensionOptions struct {
	config.LoggerOptions `yaml:",inline" json:"logger_options"`

	JupyterOptions  `yaml:",inline" json:"jupyter_options"`
	SettingsOptions `yaml:",inline" json:"settings_options"`

	ListenAddress      string `name:"listen"               json:"listen"               yaml:"listen"               description:"Address the websocket command server listens on."`
	RestartPrompt      string `name:"restart-prompt"       json:"restart-prompt"       yaml:"restart-prompt"       description:"Answer given to the restart confirmation: 'restart', 'dont-ask-again', or 'dismiss'."`
	CommandsPerSecond  int    `name:"commands-per-second"  json:"commands-per-second"  yaml:"commands-per-second"  description:"Maximum number of commands accepted per second from a single websocket client."`
	PrettyPrintOptions bool   `name:"pretty-print-options" json:"pretty-print-options" yaml:"pretty-print-options" description:"Print the options as indented JSON when the daemon starts."`
	DisableMetrics     bool   `name:"disable-metrics"      json:"disable-metrics"      yaml:"disable-metrics"      description:"Do not record Prometheus metrics or serve them at /metrics."`
}

// ValidateExtensionOptions replaces missing or invalid values with their defaults.
func (o *ExtensionOptions) ValidateExtensionOptions() {
	if o.ListenAddress == "" {
		o.ListenAddress = DefaultListenAddress
	}

	if o.JupyterServerUrl == "" {
		log.Printf("[WARNING] No Jupyter Server URL specified. Defaulting to %s.\n", DefaultJupyterServerUrl)
		o.JupyterServerUrl = DefaultJupyterServerUrl
	}
	o.JupyterServerUrl = strings.TrimSuffix(o.JupyterServerUrl, "/")

	if o.RequestTimeoutSec <= 0 {
		o.RequestTimeoutSec = DefaultRequestTimeoutSec
	}

	if o.CommandsPerSecond <= 0 {
		o.CommandsPerSecond = DefaultCommandsPerSecond
	}

	switch o.SettingsBackend {
	case SettingsBackendMemory, SettingsBackendFile, SettingsBackendRedis:
	case "":
		o.SettingsBackend = SettingsBackendMemory
	default:
		log.Printf("[WARNING] Unknown settings backend \"%s\". Defaulting to \"%s\".\n", o.SettingsBackend, SettingsBackendMemory)
		o.SettingsBackend = SettingsBackendMemory
	}

	if o.SettingsBackend == SettingsBackendFile && o.SettingsFile == "" {
		o.SettingsFile = DefaultSettingsFile
	}

	if o.SettingsBackend == SettingsBackendRedis && o.RedisAddress == "" {
		log.Printf("[WARNING] No Redis address specified. Defaulting to %s.\n", DefaultRedisAddress)
		o.RedisAddress = DefaultRedisAddress
	}

	switch o.RestartPrompt {
	case PromptAnswerRestart, PromptAnswerDontAskAgain, PromptAnswerDismiss:
	case "":
		o.RestartPrompt = PromptAnswerRestart
	default:
		log.Printf("[WARNING] Unknown restart prompt answer \"%s\". Defaulting to \"%s\".\n", o.RestartPrompt, PromptAnswerRestart)
		o.RestartPrompt = PromptAnswerRestart
	}
}

func (o *ExtensionOptions) String() string {
	m, err := json.Marshal(o)
	if err != nil {
		panic(err)
	}

	return string(m)
}

// PrettyString is the same as String, except that PrettyString calls json.MarshalIndent instead of json.Marshal.
func (o *ExtensionOptions) PrettyString(indentSize int) string {
	m, err := json.MarshalIndent(o, "", strings.Repeat(" ", indentSize))
	if err != nil {
		panic(err)
	}

	return string(m)
}
