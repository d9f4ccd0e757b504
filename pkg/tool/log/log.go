/*
Copyright 2023 The KodeRover Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var logger *zap.Logger

type Config struct {
	Level       string
	Filename    string
	SendToFile  bool
	Development bool
	MaxSize     int // megabytes
}

// Init initializes the global logger. It is expected to be called once in main
// before any logging happens.
func Init(cfg *Config) {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	syncers := []zapcore.WriteSyncer{zapcore.AddSync(stdout())}
	if cfg.SendToFile && cfg.Filename != "" {
		maxSize := cfg.MaxSize
		if maxSize == 0 {
			maxSize = 100
		}
		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename: cfg.Filename,
			MaxSize:  maxSize,
			Compress: true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	logger = zap.New(core, opts...)

	zap.ReplaceGlobals(logger)
}

func Logger() *zap.Logger {
	if logger == nil {
		return zap.L()
	}

	return logger
}

// SugaredLogger returns a sugared logger without the wrapper's caller skip,
// suitable for passing down into services.
func SugaredLogger() *zap.SugaredLogger {
	return Logger().WithOptions(zap.AddCallerSkip(-1)).Sugar()
}
