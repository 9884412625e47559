package core

type Conf struct {
	Version            string `long:"version" description:"version of qbridge server" env:"QBRIDGE_VERSION"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"QBRIDGE_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QBRIDGE_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"QBRIDGE_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QBRIDGE_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QBRIDGE_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QBRIDGE_LOG_ROTATION_MAX_DAYS"`
	UseDummyTarget     bool   `long:"enable-dummy-target" description:"use dummy target for tests and disable target settings" env:"QBRIDGE_USE_DUMMY_TARGET"`
	TargetSettingPath  string `long:"target-setting-path" description:"target setting file path" default:"./target_setting.toml" env:"QBRIDGE_TARGET_SETTING_PATH"`
	QueueMaxSize       int    `long:"queue-max-size" description:"queue max size" default:"100" env:"QBRIDGE_QUEUE_MAX_SIZE"`
	GatewayEndpoint    string `long:"gateway-endpoint" description:"remote QVM gateway endpoint" default:"http://localhost:5000" env:"QBRIDGE_GATEWAY_ENDPOINT"`
	GatewayAPIKey      string `long:"gateway-api-key" description:"remote QVM gateway API key" env:"QBRIDGE_GATEWAY_API_KEY"`
	OptimisationLevel  int    `long:"optimisation-level" description:"default compilation pass level" default:"2" env:"QBRIDGE_OPTIMISATION_LEVEL"`
	SettingPath        string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QBRIDGE_SETTING_PATH"`
}
