package core

type NonSecretConf struct {
	DevMode            bool
	DisableStdoutLog   bool
	EnableFileLog      bool
	LogDir             string
	LogLevel           string
	LogRotationMaxDays int
	UseDummyTarget     bool
	TargetSettingPath  string
	QueueMaxSize       int
	GatewayEndpoint    string
	OptimisationLevel  int
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:            c.DevMode,
		DisableStdoutLog:   c.DisableStdoutLog,
		EnableFileLog:      c.EnableFileLog,
		LogDir:             c.LogDir,
		LogLevel:           c.LogLevel,
		LogRotationMaxDays: c.LogRotationMaxDays,
		UseDummyTarget:     c.UseDummyTarget,
		TargetSettingPath:  c.TargetSettingPath,
		QueueMaxSize:       c.QueueMaxSize,
		GatewayEndpoint:    c.GatewayEndpoint,
		OptimisationLevel:  c.OptimisationLevel,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
