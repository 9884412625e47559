package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oklog/run"
	"go.uber.org/multierr"

	"github.com/qbridge-team/qbridge-engine/api"
	"github.com/qbridge-team/qbridge-engine/core"
	"github.com/qbridge-team/qbridge-engine/gateway"
	"github.com/qbridge-team/qbridge-engine/log"
	"github.com/qbridge-team/qbridge-engine/qvm"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var versionByBuildFlag string
var parser *flags.Parser
var engine *Engine

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	engine = &Engine{}
	setParser(engine)
}

type Engine struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	ShotTarget string `long:"shot-target" description:"shot-target-type" default:"qvm" choice:"qvm" choice:"gateway" env:"QBRIDGE_SHOT_TARGET_TYPE"`
}

func setParser(engine *Engine) {
	parser = flags.NewParser(engine, flags.Default)
	parser.ShortDescription = "qbridge engine"
	parser.LongDescription = "the execution coordination daemon of the qbridge quantum computation system."
	parser.AddCommand("serve", "start server", "start serving the job api", newServeCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to pasre flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (e *Engine) provideDIContainer() (*dig.Container, error) {
	c := dig.New()
	err := multierr.Combine(
		c.Provide(func() (core.ShotTarget, error) {
			if e.Conf.UseDummyTarget {
				return &core.UnimplementedShotTarget{}, nil
			}
			switch e.DIContainerParameters.ShotTarget {
			case "qvm":
				return qvm.NewTarget(), nil
			case "gateway":
				return gateway.NewTarget(), nil
			default:
				return nil, fmt.Errorf("%s is an unknown shot target", e.DIContainerParameters.ShotTarget)
			}
		}),
		c.Provide(func() (core.StateTarget, error) {
			if e.Conf.UseDummyTarget {
				return &core.UnimplementedStateTarget{}, nil
			}
			// the gateway serves shots only; state queries stay local
			return qvm.NewTarget(), nil
		}),
	)
	if err != nil {
		return &dig.Container{}, err
	}
	return c, nil
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		debugCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			level)
		cores = append(cores, debugCore)
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "qbridged-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func main() {
	parse()
}

type serveCmd struct{}

func newServeCmd() *serveCmd {
	return &serveCmd{}
}

func (c *serveCmd) Execute(args []string) error {
	logger := setZap(engine.Conf)
	defer logger.Sync()

	core.ResetSetting()
	if err := core.ParseSettingFromPath(engine.Conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return err
	}
	if _, err := os.Stat(engine.Conf.TargetSettingPath); err == nil {
		if err := core.ParseSettingFromPath(engine.Conf.TargetSettingPath); err != nil {
			zap.L().Error(fmt.Sprintf("failed to parse target settings/reason:%s", err))
			return err
		}
	}

	s := setupSystemComponents(engine.Conf)
	defer s.TearDown()

	im := &core.ImplMaps{
		PeriodicTaskImplMap: core.PeriodicTaskImplMap{
			log.VersionLogTaskName: &log.VersionLogTaskImpl{},
			log.MetricsLogTaskName: &log.MetricsLogTaskImpl{},
		},
		InternalJobServerImplMap: core.InternalJobServerImplMap{
			api.ResultWriterName: &api.ResultWriterImpl{},
		},
		APIServerImplMap: core.APIServerImplMap{
			api.JobAPIServerName: &api.JobAPIServerImpl{},
		},
	}
	rc, err := core.NewRunContextWithSettingPath(engine.Conf.SettingPath, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup run context/reason:%s", err.Error()))
		return err
	}

	core.SetInfo(engine.Conf)

	zap.L().Debug("Setting up run-group")
	if err := c.setupRunGroup(rc); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setup run group. Reason:%s", err))
		return err
	}

	if err := rc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "execution error:%v\n", err)
		os.Exit(1)
	}

	return nil
}

func (c *serveCmd) setupRunGroup(rc *core.RunContext) error {
	rc.Add(
		run.SignalHandler(
			rc.Context,
			os.Interrupt))
	core.SetRunContext(rc)
	return nil
}

func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Info("Starting logger")
	zap.L().Info(fmt.Sprintf("DevMode is %t", conf.DevMode))
	zap.L().Info(fmt.Sprintf("Log rotation max days is %d", conf.LogRotationMaxDays))
	return logger
}

func setupSystemComponents(conf *core.Conf) *core.SystemComponents {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with parameters %+v", engine.DIContainerParameters))

	container, err := engine.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		panic(err)
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up Container. Reason:%s", err.Error()))
		panic(err)
	}
	return s
}
