/*
 * Copyright (c) 2023 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package log

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/kardianos/service"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"time"
)

// Logger is the process wide logger; packages derive named loggers with Logger.WithName().
// It discards everything until Init is called.
var Logger = logr.Discard()

type Options struct {
	Verbose bool
	Debug   bool
	LogFile string
}

func Init(options Options) logr.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	interactive := service.Interactive()

	var w io.Writer = os.Stderr
	if options.LogFile != "" && !interactive {
		w = &lumberjack.Logger{
			Filename:   options.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	zl := zerolog.New(w)
	if interactive && options.LogFile == "" {
		zl = zl.Output(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		})
	}

	level := parseLevel(options)
	zerolog.SetGlobalLevel(level)
	zl = zl.Level(level).With().Timestamp().Logger()

	Logger = zerologr.New(&zl)
	Logger.V(1).Info("logger initialized", "level", level.String(), "interactive", interactive)
	return Logger
}

// default is info, warnings are logged as info messages prefixed with "WARNING:"
// --verbose shows V(1) messages, --debug also shows V(2)
func parseLevel(options Options) zerolog.Level {
	if options.Debug {
		return zerolog.TraceLevel
	}
	if options.Verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
