package localpipe_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/transport"
	"github.com/terminalhub/hub/internal/hub/transport/localpipe"
)

func TestServeDecodesModuleOperate(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := localpipe.New(dir)
	operateCh := make(chan domain.ModuleOperate, 1)
	inbox := transport.Inbox{
		SubmoduleOperate: operateCh,
		Instruct:         make(chan domain.InstructEntity, 1),
		Manipulate:       make(chan domain.ManipulateEntity, 1),
	}

	done := make(chan struct{})
	go func() {
		_ = srv.Serve(ctx, inbox)
		close(done)
	}()

	// Give the server a moment to mkfifo + open for read.
	time.Sleep(50 * time.Millisecond)

	payload, err := json.Marshal(map[string]any{
		"operate_type": 0,
		"name":         "lamp",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := writeFrame(dir+"/module", payload); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	select {
	case op := <-operateCh:
		if op.Name != "lamp" {
			t.Fatalf("expected lamp, got %+v", op)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for decoded operate")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func writeFrame(path string, payload []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(payload)))
	if _, err := f.Write(lenBuf); err != nil {
		return err
	}
	_, err = f.Write(payload)
	return err
}
