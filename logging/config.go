package logging

import (
	"os"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls Init. Values come from the environment so an embedding
// host can adjust logging without a rebuild.
type Config struct {
	// Level is the threshold for the console and file cores.
	Level string `env:"BRIDGE_LOG_LEVEL" envDefault:"info"`

	// File, when set, receives JSON-encoded entries in append mode.
	File string `env:"BRIDGE_LOG_FILE"`

	// ScriptLevel is the initial threshold for the script relay core.
	ScriptLevel string `env:"BRIDGE_SCRIPT_LOG_LEVEL" envDefault:"warn"`
}

// FromEnv reads Config from the environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Init builds the bridge logger: a console core on stderr, an optional
// file core, and, when relay is non-nil, the script relay core. The
// result is installed as the package logger and returned.
func Init(cfg Config, relay *RelayCore) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level))
	}

	if relay != nil {
		if cfg.ScriptLevel != "" {
			if err := relay.SetScriptLevel(cfg.ScriptLevel); err != nil {
				return nil, err
			}
		}
		cores = append(cores, relay)
	}

	l := zap.New(zapcore.NewTee(cores...))
	SetLogger(l)
	return l, nil
}
