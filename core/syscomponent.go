package core

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"
)

var systemComponents *SystemComponents

// CacheUpdate is a finished job travelling from a target worker to the
// cache writer.
type CacheUpdate struct {
	Handle ResultHandle
	Result *BackendResult
	Err    error
}

type CacheChan chan CacheUpdate

type Channels struct {
	CacheChan
	// when more channel is needed, add here
}

func NewChannels() *Channels {
	return &Channels{
		CacheChan: make(CacheChan),
	}
}

func (c *Channels) Close() {
	close(c.CacheChan)
}

func (c *Channels) Check() error {
	if c.CacheChan == nil {
		return fmt.Errorf("CacheChan is nil")
	}
	return nil
}

type SystemComponents struct {
	*dig.Container
	*Channels
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		con,
		NewChannels(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	zap.L().Debug("Setting up shot target")
	var err error
	err = s.Invoke(
		func(t ShotTarget) error {
			return t.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up state target")
	err = s.Invoke(
		func(t StateTarget) error {
			return t.Setup(conf)
		})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() {
	s.Channels.Close()
}

func (s *SystemComponents) GetTargetDescriptor() *TargetDescriptor {
	var desc *TargetDescriptor
	s.Invoke(
		func(t ShotTarget) error {
			desc = t.Describe()
			return nil
		})
	return desc
}
