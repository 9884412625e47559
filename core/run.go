package core

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/oklog/run"
	"github.com/qbridge-team/qbridge-engine/common"
	"go.uber.org/zap"
)

var runContext *RunContext

const (
	PERIODIC_TASKS       = "periodic_tasks"
	INTERNAL_JOB_SERVERS = "internal_job_servers"
	API_SERVERS          = "api_servers"
)

type PeriodicTaskImplMap map[string]PeriodicTaskImpl
type InternalJobServerImplMap map[string]InternalJobServerImpl
type APIServerImplMap map[string]APIServerImpl

type PeriodicTaskMap map[string]*PeriodicTask
type InternalJobServerMap map[string]*InternalJobServer
type APIServerMap map[string]*APIServer

// ImplMaps is what the daemon registers: every runner implementation it
// knows, keyed by the name the settings file refers to it by.
type ImplMaps struct {
	PeriodicTaskImplMap      PeriodicTaskImplMap
	InternalJobServerImplMap InternalJobServerImplMap
	APIServerImplMap         APIServerImplMap
}

type Runner interface {
	*PeriodicTask | *InternalJobServer | *APIServer
	GetParams() interface{}
}

type RunnerImpl interface {
	GetEmptyParams() interface{}
	SetParams(interface{}) error
	Setup() error
}

// RunContext owns the oklog/run group. Runners declared in the settings
// file are set up and added before Run is called.
type RunContext struct {
	*run.Group
	context.Context

	settingsPath string

	RunGroupMaps *RunGroupMaps `toml:"run_group,omitempty"`
}

// runGroupFile is the first-stage decode of the settings file: runner names
// only, so the impl maps can be consulted before the full decode.
type runGroupFile struct {
	Entries map[string]interface{} `toml:"run_group,omitempty"`
}

type RunGroupMaps struct {
	PeriodicTasks      PeriodicTaskMap      `toml:"periodic_tasks"`
	InternalJobServers InternalJobServerMap `toml:"internal_job_servers"`
	APIServers         APIServerMap         `toml:"api_servers"`
}

func parseRunGroupSettings(settings map[string]interface{}, im *ImplMaps) (*RunGroupMaps, error) {
	rgm := &RunGroupMaps{
		PeriodicTasks:      make(PeriodicTaskMap),
		InternalJobServers: make(InternalJobServerMap),
		APIServers:         make(APIServerMap),
	}
	for group, value := range settings {
		switch group {
		case PERIODIC_TASKS:
			ptm, err := parseRunnerSettings[*PeriodicTask, PeriodicTaskImpl](value.(map[string]interface{}), im.PeriodicTaskImplMap)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to parse periodic task settings/reason:%s", err))
				return nil, err
			}
			rgm.PeriodicTasks = ptm
		case INTERNAL_JOB_SERVERS:
			ijs, err := parseRunnerSettings[*InternalJobServer, InternalJobServerImpl](value.(map[string]interface{}), im.InternalJobServerImplMap)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to parse internal job server settings/reason:%s", err))
				return nil, err
			}
			rgm.InternalJobServers = ijs
		case API_SERVERS:
			asm, err := parseRunnerSettings[*APIServer, APIServerImpl](value.(map[string]interface{}), im.APIServerImplMap)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to parse api server settings/reason:%s", err))
				return nil, err
			}
			rgm.APIServers = asm
		default:
			msg := fmt.Sprintf("unknown run group type/group:%s/value:%v", group, value)
			zap.L().Error(msg)
			return nil, fmt.Errorf(msg)
		}
	}
	return rgm, nil
}

func parseRunnerSettings[R Runner, I RunnerImpl](settings map[string]interface{}, implMap map[string]I) (map[string]R, error) {
	runnerMap := make(map[string]R)
	for runnerName := range settings { // per-runner settings are decoded later
		impl, ok := implMap[runnerName]
		if !ok {
			msg := fmt.Sprintf("no implementation registered for runner:%s", runnerName)
			zap.L().Error(msg)
			return nil, fmt.Errorf(msg)
		}
		runner, err := newRunner[R, I](impl)
		if err != nil {
			msg := fmt.Sprintf("failed to wrap implementation/runner:%s/reason:%s", runnerName, err.Error())
			zap.L().Error(msg)
			return nil, fmt.Errorf(msg)
		}
		runnerMap[runnerName] = runner
	}
	return runnerMap, nil
}

func newRunner[R Runner, I RunnerImpl](runnerImpl I) (runner R, err error) {
	switch any(runner).(type) {
	case *PeriodicTask:
		i, ok := any(runnerImpl).(PeriodicTaskImpl)
		if !ok {
			err = fmt.Errorf("failed to cast to PeriodicTaskImpl/runner:%v", runner)
			return
		}
		runner = any(&PeriodicTask{PeriodicTaskImpl: i}).(R)
	case *InternalJobServer:
		i, ok := any(runnerImpl).(InternalJobServerImpl)
		if !ok {
			err = fmt.Errorf("failed to cast to InternalJobServerImpl/runner:%v", runner)
			return
		}
		runner = any(&InternalJobServer{InternalJobServerImpl: i}).(R)
	case *APIServer:
		i, ok := any(runnerImpl).(APIServerImpl)
		if !ok {
			err = fmt.Errorf("failed to cast to APIServerImpl/runner:%v", runner)
			return
		}
		runner = any(&APIServer{APIServerImpl: i}).(R)
	default:
		err = fmt.Errorf("unknown runner type:%v", runner)
	}
	return
}

// NewRunContextWithSettingPath builds a populated RunContext from the
// run_group table of the settings file. The TOML is decoded twice: once to
// learn which runners are declared, once to fill their params. Decoding
// over the runner structs clears their embedded impls, so the impls are
// stashed and restored around the second decode.
func NewRunContextWithSettingPath(settingsPath string, im *ImplMaps) (*RunContext, error) {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read settings file/reason:%s", err))
		return nil, err
	}
	s := &runGroupFile{Entries: make(map[string]interface{})}
	if metadata, err := toml.Decode(tomlString, s); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode settings file/reason:%s/metadata:%v",
			err, metadata))
		return nil, err
	}
	runGroupMaps, err := parseRunGroupSettings(s.Entries, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse run group settings/reason:%s", err))
		return nil, err
	}
	rc := &RunContext{
		Group:        &run.Group{},
		Context:      context.Background(),
		settingsPath: settingsPath,
		RunGroupMaps: runGroupMaps,
	}

	tmpPeriodicTaskImplMap := make(map[string]PeriodicTaskImpl)
	tmpInternalJobServerImplMap := make(map[string]InternalJobServerImpl)
	tmpAPIServerImplMap := make(map[string]APIServerImpl)
	for taskName, task := range rc.RunGroupMaps.PeriodicTasks {
		tmpPeriodicTaskImplMap[taskName] = task.PeriodicTaskImpl
	}
	for serverName, server := range rc.RunGroupMaps.InternalJobServers {
		tmpInternalJobServerImplMap[serverName] = server.InternalJobServerImpl
	}
	for serverName, server := range rc.RunGroupMaps.APIServers {
		tmpAPIServerImplMap[serverName] = server.APIServerImpl
	}
	if metadata, err := toml.Decode(tomlString, rc); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode settings file/reason:%s/metadata:%v",
			err, metadata))
		return nil, err
	}
	for taskName, task := range rc.RunGroupMaps.PeriodicTasks {
		task.PeriodicTaskImpl = tmpPeriodicTaskImplMap[taskName]
	}
	for serverName, server := range rc.RunGroupMaps.InternalJobServers {
		server.InternalJobServerImpl = tmpInternalJobServerImplMap[serverName]
	}
	for serverName, server := range rc.RunGroupMaps.APIServers {
		server.APIServerImpl = tmpAPIServerImplMap[serverName]
	}

	if err := setParametersToImpl[*PeriodicTask](rc.RunGroupMaps.PeriodicTasks); err != nil {
		zap.L().Error(fmt.Sprintf("failed to set parameters to PeriodicTask Impl/reason:%s", err.Error()))
		return nil, err
	}
	if err := setParametersToImpl[*InternalJobServer](rc.RunGroupMaps.InternalJobServers); err != nil {
		zap.L().Error(fmt.Sprintf("failed to set parameters to InternalJobServer Impl/reason:%s", err.Error()))
		return nil, err
	}
	if err := setParametersToImpl[*APIServer](rc.RunGroupMaps.APIServers); err != nil {
		zap.L().Error(fmt.Sprintf("failed to set parameters to APIServer Impl/reason:%s", err.Error()))
		return nil, err
	}

	if err := setupImplAndAddToRunContext[*PeriodicTask](rc.RunGroupMaps.PeriodicTasks, rc.AddPeriodicTask); err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup and add PeriodicTask/reason:%s", err.Error()))
		return nil, err
	}
	if err := setupImplAndAddToRunContext[*InternalJobServer](rc.RunGroupMaps.InternalJobServers, rc.AddInternalJobServer); err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup and add InternalJobServer/reason:%s", err.Error()))
		return nil, err
	}
	if err := setupImplAndAddToRunContext[*APIServer](rc.RunGroupMaps.APIServers, rc.AddAPIServer); err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup and add APIServer/reason:%s", err.Error()))
		return nil, err
	}

	zap.L().Info("initialized run context", zap.Any("RunGroupMaps", rc.RunGroupMaps))
	return rc, nil
}

func setParametersToImpl[R Runner](runners map[string]R) error {
	for name, runner := range runners {
		if err := any(runner).(RunnerImpl).SetParams(runner.GetParams()); err != nil {
			zap.L().Error(fmt.Sprintf("failed to set parameters/name:%s/reason:%s",
				name, err.Error()))
			return err
		}
	}
	return nil
}

func setupImplAndAddToRunContext[R Runner](
	runners map[string]R,
	addFunc func(R, string) error) error {
	for name, runner := range runners {
		if err := any(runner).(RunnerImpl).Setup(); err != nil {
			zap.L().Error(fmt.Sprintf("failed to setup/name:%s/reason:%s", name, err.Error()))
			return err
		}
		if err := addFunc(runner, name); err != nil {
			zap.L().Error(fmt.Sprintf("failed to add runner/name:%s/reason:%s", name, err))
			return err
		}
		zap.L().Info(fmt.Sprintf("successfully added runner/name:%s", name))
	}
	return nil
}

func GetRunContext() *RunContext {
	return runContext
}

func SetRunContext(rc *RunContext) {
	runContext = rc
}

// PeriodicTask fires its impl once at start, then on every tick. The impl
// may request a new period between ticks.
type PeriodicTask struct {
	Period time.Duration `toml:"period"`
	Params interface{}   `toml:"params,omitempty"`
	PeriodicTaskImpl
}

func (t *PeriodicTask) GetParams() interface{} {
	return t.Params
}

type PeriodicTaskImpl interface {
	RunnerImpl
	RequirePeriodUpdate() (ok bool, duration time.Duration)
	Task()
	Cleanup()
}

// DefaultTaskImpl is the no-op base a task impl embeds, overriding only
// what it needs.
type DefaultTaskImpl struct{}

func (v *DefaultTaskImpl) Setup() error {
	return nil
}

func (v *DefaultTaskImpl) GetEmptyParams() interface{} {
	return v
}

func (v *DefaultTaskImpl) SetParams(p interface{}) error {
	return nil
}

func (v *DefaultTaskImpl) RequirePeriodUpdate() (bool, time.Duration) {
	return false, 0
}

func (v *DefaultTaskImpl) Task() {}

func (v *DefaultTaskImpl) Cleanup() {}

func (rc *RunContext) AddPeriodicTask(t *PeriodicTask, taskName string) error {
	ctx, cancel := context.WithCancel(rc.Context)
	lastPeriod := t.Period
	rc.Group.Add(
		func() error {
			ticker := time.NewTicker(t.Period)
			zap.L().Info(fmt.Sprintf("[PeriodicTask/%s/Start]", taskName))
			t.PeriodicTaskImpl.Task()
			for {
				select {
				case <-ctx.Done():
					zap.L().Info(fmt.Sprintf("[PeriodicTask/%s/TearDown]cleaning up periodic task", taskName))
					ticker.Stop()
					t.PeriodicTaskImpl.Cleanup()
					zap.L().Info(fmt.Sprintf("[PeriodicTask/%s/TearDown]cleaned up periodic task", taskName))
					return ctx.Err()
				case <-ticker.C:
					t.PeriodicTaskImpl.Task()
					ok, newPeriod := t.RequirePeriodUpdate()
					if ok && newPeriod != lastPeriod {
						zap.L().Info(fmt.Sprintf("[PeriodicTask/%s/ResetPeriod]period %v to %v",
							taskName, lastPeriod, newPeriod))
						ticker.Reset(newPeriod)
						lastPeriod = newPeriod
					}
				}
			}
		},
		func(error) {
			zap.L().Info(fmt.Sprintf("[PeriodicTask/%s/TearDown]cancelling periodic task", taskName))
			cancel()
		},
	)
	return nil
}

// InternalJobServer runs a background impl with no outward surface, like
// the result writer draining the cache channel.
type InternalJobServer struct {
	Params interface{} `toml:"params,omitempty"`
	InternalJobServerImpl
}

func (s *InternalJobServer) GetParams() interface{} {
	return s.Params
}

type InternalJobServerImpl interface {
	RunnerImpl
	Start() error
	Cleanup()
}

func (rc *RunContext) AddInternalJobServer(s *InternalJobServer, serverName string) error {
	ctx, cancel := context.WithCancel(rc.Context)
	rc.Group.Add(
		func() error {
			zap.L().Info(fmt.Sprintf("[InternalJobServer/%s/Start]", serverName))
			err := s.Start()
			if err != nil {
				zap.L().Error(fmt.Sprintf("[InternalJobServer/%s/Error]failed to start internal job server/reason:%s",
					serverName, err))
				return err
			}
			zap.L().Info(fmt.Sprintf("[InternalJobServer/%s/Started]", serverName))
			<-ctx.Done()
			zap.L().Info(fmt.Sprintf("[InternalJobServer/%s/TearDown]cleaning up internal job server",
				serverName))
			s.Cleanup()
			zap.L().Info(fmt.Sprintf("[InternalJobServer/%s/TearDown]cleaned up internal job server",
				serverName))
			return nil
		},
		func(error) {
			zap.L().Info(fmt.Sprintf("[InternalJobServer/%s/TearDown]cancelling internal job server",
				serverName))
			cancel()
		},
	)
	return nil
}

// APIServer blocks in Serve until Shutdown is called by the run group
// interrupt.
type APIServer struct {
	Params interface{} `toml:"params,omitempty"`
	APIServerImpl
}

func (s *APIServer) GetParams() interface{} {
	return s.Params
}

type APIServerImpl interface {
	RunnerImpl
	Serve() error
	Shutdown()
}

func (rc *RunContext) AddAPIServer(s *APIServer, serverName string) error {
	rc.Group.Add(
		func() error {
			zap.L().Info(fmt.Sprintf("[APIServer/%s/Start]", serverName))
			if err := s.Serve(); err != nil {
				zap.L().Error(fmt.Sprintf("[APIServer/%s/Error]failed to start api server/reason:%s",
					serverName, err.Error()))
				return err
			}
			return nil
		},
		func(error) {
			zap.L().Info(fmt.Sprintf("[APIServer/%s/TearDown]shutting down api server", serverName))
			s.Shutdown()
			zap.L().Info(fmt.Sprintf("[APIServer/%s/TearDown]shut down api server", serverName))
		},
	)
	return nil
}
