package database

import (
	"fmt"
	"os"
	"strings"

	"github.com/dtroode/userkeeper-server/internal/logger"
)

// GooseLogger routes goose output to the application logger.
type GooseLogger struct {
	logger *logger.Logger
}

// NewGooseLogger wraps l for use with Apply.
func NewGooseLogger(l *logger.Logger) *GooseLogger {
	return &GooseLogger{logger: l}
}

func (g *GooseLogger) Fatal(v ...interface{}) {
	g.logger.Error("Migrations: " + strings.TrimSpace(fmt.Sprint(v...)))
	os.Exit(1)
}

func (g *GooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Error("Migrations: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

func (g *GooseLogger) Print(v ...interface{}) {
	g.logger.Info("Migrations: " + strings.TrimSpace(fmt.Sprint(v...)))
}

func (g *GooseLogger) Println(v ...interface{}) {
	g.logger.Info("Migrations: " + strings.TrimSpace(fmt.Sprintln(v...)))
}

func (g *GooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Info("Migrations: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

type discardLogger struct{}

func (discardLogger) Fatal(v ...interface{})                 { os.Exit(1) }
func (discardLogger) Fatalf(format string, v ...interface{}) { os.Exit(1) }
func (discardLogger) Print(v ...interface{})                 {}
func (discardLogger) Println(v ...interface{})               {}
func (discardLogger) Printf(format string, v ...interface{}) {}
