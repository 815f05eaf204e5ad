package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
	"sockhello/internal/shared/types"
)

// LoadIni 将 sockhello.ini 覆盖到 cfg 上。
// 文件不存在或缺少某个键时，cfg 中已有的默认值保持不变。
func LoadIni(cfg *types.Config, fileName string) error {
	iniFile, err := ini.LooseLoad(fileName)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", fileName, err)
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return fmt.Errorf("failed to map %s: %w", fileName, err)
	}
	overrideFromEnvString(&cfg.ClientConf.Address, "SOCKHELLO_SERVER_ADDR")
	overrideFromEnvInt(&cfg.ClientConf.Port, "SOCKHELLO_PORT")
	overrideFromEnvInt(&cfg.ServerConf.Port, "SOCKHELLO_PORT")
	return Validate(cfg)
}

// Validate rejects values neither program can run with.
func Validate(cfg *types.Config) error {
	if cfg.CommonConf.BufferSize <= 0 {
		return fmt.Errorf("bufferSize must be positive, got %d", cfg.CommonConf.BufferSize)
	}
	switch strings.ToLower(cfg.CommonConf.Transport) {
	case types.TransportTCP, types.TransportWebSocket:
		cfg.CommonConf.Transport = strings.ToLower(cfg.CommonConf.Transport)
	default:
		return fmt.Errorf("unknown transport %q", cfg.CommonConf.Transport)
	}
	if cfg.ClientConf.Port < 0 || cfg.ClientConf.Port > 65535 {
		return fmt.Errorf("client port out of range: %d", cfg.ClientConf.Port)
	}
	if cfg.ServerConf.Port < 0 || cfg.ServerConf.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", cfg.ServerConf.Port)
	}
	if cfg.ServerConf.Backlog < 1 {
		cfg.ServerConf.Backlog = 1
	}
	return nil
}

func overrideFromEnvString(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}
