package core

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/common"
)

var globalSetting *Setting

// TODO: Do not use interface{} for setting value. Use specific struct type for each setting.
type Setting struct {
	ComponentSetting map[string]interface{} `toml:"com,omitempty"`
}

func ResetSetting() {
	globalSetting = &Setting{
		ComponentSetting: make(map[string]interface{}),
	}
}

func RegisterSetting(settingName string, settingVal interface{}) {
	globalSetting.ComponentSetting[settingName] = settingVal
}

func ParseSettingFromPath(settingsPath string) error {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read setting file/reason:%s", err))
		return err
	}
	return globalSetting.parseSetting(tomlString)
}

func GetGlobalSetting() *Setting {
	return globalSetting
}

func GetComponentSetting(name string) (interface{}, bool) {
	if globalSetting == nil {
		zap.L().Error("Setting is not initialized")
		return nil, false
	}
	val, ok := globalSetting.ComponentSetting[name]
	return val, ok
}

func newSetting() *Setting {
	return &Setting{
		ComponentSetting: make(map[string]interface{}),
	}
}

func (s *Setting) registerSetting(settingName string, settingVal interface{}) {
	s.ComponentSetting[settingName] = settingVal
}

func (s *Setting) parseSetting(tomlString string) error {
	_, err := toml.Decode(tomlString, s)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse setting/reason:%s", err))
		return err
	}
	zap.L().Debug(fmt.Sprintf("Setting is %v", s.ComponentSetting))
	return nil
}
