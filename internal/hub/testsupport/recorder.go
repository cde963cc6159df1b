package testsupport

import (
	"context"

	"github.com/terminalhub/hub/internal/hub/manager"
)

// Recorder is a fake recorder.Recorder that counts invocations and can
// be made to fail, to exercise the best-effort recording path.
type Recorder struct {
	CallRecorder
	RecordErr error
}

func (r *Recorder) Record(_ context.Context, e manager.RecordEntry) error {
	r.CallRecorder.Record("Record", e)
	return r.RecordErr
}
