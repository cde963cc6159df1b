// Package localpipe implements the POSIX named-pipe transport (spec
// §4.4), grounded on the teacher's golang.org/x/sys/unix usage for
// low-level POSIX syscalls (internal_legacy_do_not_read/infra/wireguard
// uses the same package for raw socket control; here it supplies
// Mkfifo). Framing: each read/write carries one JSON-encoded message
// prefixed with a big-endian uint32 length, capped at maxFrameBytes
// per spec §4.4.
package localpipe

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/transport"
)

const maxFrameBytes = 1024

const (
	moduleFIFO             = "module"
	instructReceiverFIFO   = "instruct_receiver"
	manipulateReceiverFIFO = "manipulate_receiver"
)

// Server serves the three FIFOs rooted at Dir: <Dir>/module,
// <Dir>/instruct_receiver, <Dir>/manipulate_receiver.
type Server struct {
	Dir string

	logger *slog.Logger
}

// New returns a Server rooted at dir.
func New(dir string) *Server {
	return &Server{Dir: dir, logger: slog.With("component", "localpipe-server", "dir", dir)}
}

func (s *Server) Serve(ctx context.Context, inbox transport.Inbox) error {
	modulePath := s.Dir + "/" + moduleFIFO
	instructPath := s.Dir + "/" + instructReceiverFIFO
	manipulatePath := s.Dir + "/" + manipulateReceiverFIFO

	for _, path := range []string{modulePath, instructPath, manipulatePath} {
		if err := ensureFIFO(path); err != nil {
			return fmt.Errorf("localpipe: %w", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.serveModule(ctx, modulePath, inbox) }()
	go func() { defer wg.Done(); s.serveInstruct(ctx, instructPath, inbox) }()
	go func() { defer wg.Done(); s.serveManipulate(ctx, manipulatePath, inbox) }()
	wg.Wait()
	return nil
}

func ensureFIFO(path string) error {
	err := unix.Mkfifo(path, 0o600)
	if err != nil && !os.IsExist(err) {
		return fmt.Errorf("mkfifo %s: %w", path, err)
	}
	return nil
}

func (s *Server) serveModule(ctx context.Context, path string, inbox transport.Inbox) {
	s.readLoop(ctx, path, func(frame []byte) {
		var req wireModuleOperate
		if err := json.Unmarshal(frame, &req); err != nil {
			s.logger.Error("decode module frame", "err", err)
			return
		}
		inbox.SubmoduleOperate <- req.toDomain()
	})
}

func (s *Server) serveInstruct(ctx context.Context, path string, inbox transport.Inbox) {
	s.readLoop(ctx, path, func(frame []byte) {
		var req wireInstructEntity
		if err := json.Unmarshal(frame, &req); err != nil {
			s.logger.Error("decode instruct frame", "err", err)
			return
		}
		inbox.Instruct <- req.toDomain()
	})
}

func (s *Server) serveManipulate(ctx context.Context, path string, inbox transport.Inbox) {
	s.readLoop(ctx, path, func(frame []byte) {
		var req wireManipulateEntity
		if err := json.Unmarshal(frame, &req); err != nil {
			s.logger.Error("decode manipulate frame", "err", err)
			return
		}
		inbox.Manipulate <- req.toDomain()
	})
}

// readLoop opens path for reading and dispatches one decode callback per
// framed message until ctx is cancelled or opening the FIFO fails. A
// peer disconnect (EOF or a zero length prefix) ends the current frame
// loop, and the FIFO is reopened for the next writer. Opening a FIFO for
// reading blocks until a writer attaches; that open runs in its own
// goroutine so ctx cancellation during the wait is still observed
// promptly.
func (s *Server) readLoop(ctx context.Context, path string, handle func(frame []byte)) {
	for {
		f, err := openForRead(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("open fifo", "path", path, "err", err)
			return
		}

		err = frameLoop(f, handle)
		_ = f.Close()
		if err != nil && err != io.EOF {
			s.logger.Error("frame loop", "path", path, "err", err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func openForRead(ctx context.Context, path string) (*os.File, error) {
	type result struct {
		f   *os.File
		err error
	}
	ch := make(chan result, 1)
	go func() {
		f, err := os.OpenFile(path, os.O_RDONLY, 0)
		ch <- result{f: f, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.f, r.err
	}
}

func frameLoop(r io.Reader, handle func(frame []byte)) error {
	lenBuf := make([]byte, 4)
	for {
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		n := binary.BigEndian.Uint32(lenBuf)
		if n == 0 {
			return nil
		}
		if n > maxFrameBytes {
			return fmt.Errorf("frame of %d bytes exceeds %d byte cap", n, maxFrameBytes)
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return err
		}
		handle(payload)
	}
}

// ClientFactory dials an outbound FIFO writer per direction.
type ClientFactory struct{}

func (ClientFactory) Dial(ctx context.Context, connConfig map[string]string) (domain.Client, error) {
	instructPath, ok := connConfig["instruct_pipe"]
	if !ok || instructPath == "" {
		return nil, domain.NewOutboundTransportError(fmt.Errorf("localpipe: conn_config missing instruct_pipe"))
	}
	manipulatePath, ok := connConfig["manipulate_pipe"]
	if !ok || manipulatePath == "" {
		return nil, domain.NewOutboundTransportError(fmt.Errorf("localpipe: conn_config missing manipulate_pipe"))
	}
	return &Client{instructPath: instructPath, manipulatePath: manipulatePath}, nil
}

// Client writes length-delimited frames to the submodule's receiver FIFOs.
type Client struct {
	mu             sync.Mutex
	instructPath   string
	manipulatePath string
}

func (c *Client) SendTextInstruct(_ context.Context, phrase string) (domain.ResponseCode, error) {
	frame, err := json.Marshal(wireInstructEntity{InstructType: 0, Instruct: phrase})
	if err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(err)
	}
	if err := c.writeFrame(c.instructPath, frame); err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(err)
	}
	return domain.ResponseSuccess, nil
}

func (c *Client) SendManipulate(_ context.Context, m domain.ManipulateEntity) (domain.ResponseCode, error) {
	frame, err := json.Marshal(wireManipulateEntity{
		ManipulateType: int(m.ManipulateType),
		UseModuleName:  m.UseModuleName,
		Text:           m.Text,
		Payload:        m.Payload,
	})
	if err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(err)
	}
	if err := c.writeFrame(c.manipulatePath, frame); err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(err)
	}
	return domain.ResponseSuccess, nil
}

func (c *Client) writeFrame(path string, payload []byte) error {
	if len(payload) > maxFrameBytes {
		return fmt.Errorf("localpipe: frame of %d bytes exceeds %d byte cap", len(payload), maxFrameBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("localpipe: open %s: %w", path, err)
	}
	defer f.Close()

	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(payload)))
	if _, err := f.Write(lenBuf); err != nil {
		return fmt.Errorf("localpipe: write length prefix: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		return fmt.Errorf("localpipe: write payload: %w", err)
	}
	return nil
}

func (c *Client) Close() error { return nil }
