// internal/logger/logger.go

package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level 日志级别
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	OffLevel
)

// ParseLevel 解析日志级别字符串, 未知值回落到 info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "info", "":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "off", "none":
		return OffLevel
	}
	return InfoLevel
}

// 预定义带颜色的打印函数
var (
	debugPrintf = color.New(color.FgCyan).SprintfFunc()
	infoPrintf  = color.New(color.FgGreen).SprintfFunc()
	warnPrintf  = color.New(color.FgYellow).SprintfFunc()
	errorPrintf = color.New(color.FgRed).SprintfFunc()
)

type logSink struct {
	mu    sync.Mutex
	out   *log.Logger
	level Level
}

var std = &logSink{
	out:   log.New(os.Stdout, "", log.LstdFlags),
	level: InfoLevel,
}

func init() {
	color.NoColor = false
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		std.level = ParseLevel(v)
	}
}

// SetLevel 设置全局日志级别
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
}

// SetOutput 重定向日志输出
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.out = log.New(w, "", log.LstdFlags)

	// 输出不是终端时禁用颜色
	if f, ok := w.(*os.File); !ok || (f != os.Stdout && f != os.Stderr) {
		color.NoColor = true
	}
}

func (s *logSink) printf(lv Level, colorize func(string, ...interface{}) string, tag, format string, v ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.level > lv {
		return
	}
	s.out.Print(colorize(tag+format, v...))
}

func Debug(format string, v ...interface{}) {
	std.printf(DebugLevel, debugPrintf, "[DEBUG] ", format, v...)
}

func Info(format string, v ...interface{}) {
	std.printf(InfoLevel, infoPrintf, "[INFO] ", format, v...)
}

func Warn(format string, v ...interface{}) {
	std.printf(WarnLevel, warnPrintf, "[WARN] ", format, v...)
}

func Error(format string, v ...interface{}) {
	std.printf(ErrorLevel, errorPrintf, "[ERROR] ", format, v...)
}
