package logger

import (
	"os"

	"go.uber.org/zap"
)

// log is a no-op until Init runs, so packages can log from tests without setup.
var log = zap.NewNop().Sugar()

func Init() {
	var (
		l   *zap.Logger
		err error
	)
	if os.Getenv("APP_ENV") == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	log = l.Sugar()
}

func Sync() {
	_ = log.Sync()
}

func Debug(msg string, kv ...interface{}) {
	log.Debugw(msg, kv...)
}

func Info(msg string, kv ...interface{}) {
	log.Infow(msg, kv...)
}

func Warn(msg string, kv ...interface{}) {
	log.Warnw(msg, kv...)
}

func Error(msg string, kv ...interface{}) {
	log.Errorw(msg, kv...)
}
