package utilities

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.SugaredLogger]

func init() {
	logger.Store(zap.NewNop().Sugar())
}

// InitLogger inicializa o logger global. level aceita debug, info, warn ou error;
// development troca o encoder JSON pelo console colorido.
func InitLogger(level string, development bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger troca o logger global. Usado nos testes com zap.NewNop ou zaptest.
func SetLogger(l *zap.Logger) {
	logger.Store(l.Sugar())
}

// Logger devolve o logger global, para quem precisa de campos estruturados.
func Logger() *zap.SugaredLogger {
	return logger.Load()
}

// Sync descarrega o buffer do logger; chamar antes de sair.
func Sync() {
	_ = logger.Load().Sync()
}

// LogRequest registra informações sobre a requisição HTTP
func LogRequest(method, path, remoteAddr string, status int, duration time.Duration) {
	logger.Load().Infow("requisição HTTP",
		"method", method,
		"path", path,
		"remote_addr", remoteAddr,
		"status", status,
		"duration", duration,
	)
}

// LogError registra erros com o contexto em que aconteceram
func LogError(err error, context string) {
	logger.Load().Errorw(context, "error", err)
}

// LogDebug registra informações de debug
func LogDebug(format string, v ...interface{}) {
	logger.Load().Debugf(format, v...)
}

// LogInfo registra informações gerais
func LogInfo(format string, v ...interface{}) {
	logger.Load().Infof(format, v...)
}

// LogWarn registra situações inesperadas que não interrompem a requisição
func LogWarn(format string, v ...interface{}) {
	logger.Load().Warnf(format, v...)
}
