package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=100ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=1h"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=4096"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
