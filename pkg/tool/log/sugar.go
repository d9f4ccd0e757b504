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
	"os"

	"go.uber.org/zap"
)

func stdout() *os.File {
	return os.Stdout
}

func sugar() *zap.SugaredLogger {
	return Logger().Sugar()
}

func Debugf(format string, args ...interface{}) {
	sugar().Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	sugar().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	sugar().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	sugar().Errorf(format, args...)
}

func Panicf(format string, args ...interface{}) {
	sugar().Panicf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	sugar().Fatalf(format, args...)
}

func Debug(args ...interface{}) {
	sugar().Debug(args...)
}

func Info(args ...interface{}) {
	sugar().Info(args...)
}

func Warn(args ...interface{}) {
	sugar().Warn(args...)
}

func Error(args ...interface{}) {
	sugar().Error(args...)
}

func Panic(args ...interface{}) {
	sugar().Panic(args...)
}

func Fatal(args ...interface{}) {
	sugar().Fatal(args...)
}

func DPanic(args ...interface{}) {
	sugar().DPanic(args...)
}
