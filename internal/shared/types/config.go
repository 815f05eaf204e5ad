package types

import "time"

// Transport names accepted by CommonConf.Transport.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// CommonConf 包含 client 与 server 共有的配置
type CommonConf struct {
	BufferSize int    `ini:"bufferSize"`
	Transport  string `ini:"transport"` // "tcp" (默认) 或 "ws"
}

// ClientConf 包含 client 特有的配置
type ClientConf struct {
	Address     string        `ini:"address"`
	Port        int           `ini:"port"`
	Message     string        `ini:"message"`
	DialTimeout time.Duration `ini:"dial_timeout"` // 0 表示不设超时
	Proxy       string        `ini:"proxy"`        // e.g. socks5://127.0.0.1:1080
	WSPath      string        `ini:"ws_path"`
}

// ServerConf 包含 server 特有的配置
type ServerConf struct {
	ListenAddress string `ini:"listen_address"`
	Port          int    `ini:"port"`
	Backlog       int    `ini:"backlog"`
	LossyUTF8     bool   `ini:"lossy_utf8"`
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level string `ini:"level"`
}

// Config 是 client 与 server 的统一配置结构体
type Config struct {
	CommonConf `ini:"common"`
	ClientConf `ini:"client"`
	ServerConf `ini:"server"`
	LogConf    `ini:"log"`
}

// DefaultConfig returns the built-in values used when no ini file (or key)
// overrides them.
func DefaultConfig() *Config {
	return &Config{
		CommonConf: CommonConf{
			BufferSize: 1024,
			Transport:  TransportTCP,
		},
		ClientConf: ClientConf{
			Address: "172.18.0.2",
			Port:    9292,
			Message: "Hello, Server!",
			WSPath:  "/",
		},
		ServerConf: ServerConf{
			ListenAddress: "0.0.0.0",
			Port:          9292,
			Backlog:       1,
		},
		LogConf: LogConf{
			Level: "info",
		},
	}
}
