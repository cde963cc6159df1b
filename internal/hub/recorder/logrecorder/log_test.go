package logrecorder_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/terminalhub/hub/internal/hub/recorder"
	"github.com/terminalhub/hub/internal/hub/recorder/logrecorder"
)

func TestRecordEmitsOneLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := logrecorder.New(logger)

	err := r.Record(context.Background(), recorder.Entry{
		Kind:          recorder.KindInstruct,
		SubmoduleName: "lamp",
		Detail:        "turn on",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "lamp") || !strings.Contains(out, "instruct") {
		t.Fatalf("log line missing expected fields: %s", out)
	}
}

func TestNewFallsBackToDefaultLogger(t *testing.T) {
	r := logrecorder.New(nil)
	if err := r.Record(context.Background(), recorder.Entry{Kind: recorder.KindManipulate}); err != nil {
		t.Fatalf("record: %v", err)
	}
}
