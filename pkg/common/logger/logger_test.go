package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestComponentTagsEntries(t *testing.T) {
	hook := test.NewLocal(Log)
	defer hook.Reset()

	Component("artifacts").Info("loaded")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if got := entry.Data["component"]; got != "artifacts" {
		t.Fatalf("expected component artifacts, got %v", got)
	}
}

func TestInitFallsBackToInfo(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	Init("debug")
	if Log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", Log.GetLevel())
	}
	Init("verbose")
	if Log.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %v", Log.GetLevel())
	}
}
