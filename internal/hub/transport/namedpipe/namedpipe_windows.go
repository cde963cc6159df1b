//go:build windows

// Package namedpipe implements the OSNamedPipe transport (spec §4.4)
// on Windows via github.com/Microsoft/go-winio, a dependency the
// teacher carries indirectly through its Docker integration and which
// this component promotes to direct use — this is the one place that
// actually calls it.
package namedpipe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Microsoft/go-winio"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/transport"
)

const maxFrameBytes = 1024

// Server listens on three named-pipe endpoints, one per message kind,
// mirroring localpipe's FIFO layout (spec §4.4: "first-instance server
// per endpoint, one per message kind").
type Server struct {
	ModulePipe     string
	InstructPipe   string
	ManipulatePipe string

	logger *slog.Logger
}

// New returns a Server for the three named-pipe endpoints.
func New(modulePipe, instructPipe, manipulatePipe string) *Server {
	return &Server{
		ModulePipe:     modulePipe,
		InstructPipe:   instructPipe,
		ManipulatePipe: manipulatePipe,
		logger:         slog.With("component", "namedpipe-server"),
	}
}

func (s *Server) Serve(ctx context.Context, inbox transport.Inbox) error {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.acceptLoop(ctx, s.ModulePipe, func(f []byte) { decodeModule(f, inbox, s.logger) }) }()
	go func() { defer wg.Done(); s.acceptLoop(ctx, s.InstructPipe, func(f []byte) { decodeInstruct(f, inbox, s.logger) }) }()
	go func() { defer wg.Done(); s.acceptLoop(ctx, s.ManipulatePipe, func(f []byte) { decodeManipulate(f, inbox, s.logger) }) }()
	wg.Wait()
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, path string, handle func([]byte)) {
	ln, err := winio.ListenPipe(path, nil)
	if err != nil {
		s.logger.Error("listen pipe", "path", path, "err", err)
		return
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("accept pipe", "path", path, "err", err)
			return
		}
		go func() {
			defer conn.Close()
			_ = frameLoop(conn, handle)
		}()
	}
}

func frameLoop(r io.Reader, handle func([]byte)) error {
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		n := int(lenBuf[0])<<24 | int(lenBuf[1])<<16 | int(lenBuf[2])<<8 | int(lenBuf[3])
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

func decodeModule(frame []byte, inbox transport.Inbox, logger *slog.Logger) {
	var req struct {
		OperateType     int               `json:"operate_type"`
		Name            string            `json:"name"`
		DefaultInstruct []string          `json:"default_instruct"`
		ConnectionKind  int               `json:"connection_kind"`
		Capability      int               `json:"capability"`
		ConnParams      map[string]string `json:"conn_params"`
	}
	if err := json.Unmarshal(frame, &req); err != nil {
		logger.Error("decode module frame", "err", err)
		return
	}
	op := domain.ModuleOperate{OperateType: domain.OperateType(req.OperateType), Name: req.Name}
	if op.OperateType == domain.OperateRegister || op.OperateType == domain.OperateUpdate {
		op.Info = &domain.ModuleInfo{
			DefaultInstruct: req.DefaultInstruct,
			ConnectionKind:  domain.ConnectionKind(req.ConnectionKind),
			Capability:      domain.Capability(req.Capability),
			ConnConfig:      req.ConnParams,
		}
	}
	inbox.SubmoduleOperate <- op
}

func decodeInstruct(frame []byte, inbox transport.Inbox, logger *slog.Logger) {
	var req struct {
		InstructType               int    `json:"instruct_type"`
		Instruct                   string `json:"instruct"`
		ReceiveManipulateSubmodule string `json:"receive_manipulate_submodule"`
	}
	if err := json.Unmarshal(frame, &req); err != nil {
		logger.Error("decode instruct frame", "err", err)
		return
	}
	inbox.Instruct <- domain.InstructEntity{
		PayloadKind:                domain.InstructPayloadKind(req.InstructType),
		Text:                       req.Instruct,
		ReceiveManipulateSubmodule: req.ReceiveManipulateSubmodule,
	}
}

func decodeManipulate(frame []byte, inbox transport.Inbox, logger *slog.Logger) {
	var req struct {
		ManipulateType int               `json:"manipulate_type"`
		UseModuleName  string            `json:"use_module_name"`
		Text           string            `json:"text"`
		Payload        map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(frame, &req); err != nil {
		logger.Error("decode manipulate frame", "err", err)
		return
	}
	inbox.Manipulate <- domain.ManipulateEntity{
		ManipulateType: domain.ManipulateType(req.ManipulateType),
		UseModuleName:  req.UseModuleName,
		Text:           req.Text,
		Payload:        req.Payload,
	}
}

// ClientFactory dials outbound named pipes per direction (spec §6:
// instruct_windows_named_pipe, manipulate_windows_named_pipe).
type ClientFactory struct{}

func (ClientFactory) Dial(ctx context.Context, connConfig map[string]string) (domain.Client, error) {
	instructPipe, ok := connConfig["instruct_windows_named_pipe"]
	if !ok || instructPipe == "" {
		return nil, domain.NewOutboundTransportError(fmt.Errorf("namedpipe: conn_config missing instruct_windows_named_pipe"))
	}
	manipulatePipe, ok := connConfig["manipulate_windows_named_pipe"]
	if !ok || manipulatePipe == "" {
		return nil, domain.NewOutboundTransportError(fmt.Errorf("namedpipe: conn_config missing manipulate_windows_named_pipe"))
	}
	return &Client{instructPipe: instructPipe, manipulatePipe: manipulatePipe}, nil
}

// Client writes length-delimited JSON frames to a submodule's pipes.
type Client struct {
	mu             sync.Mutex
	instructPipe   string
	manipulatePipe string
}

func (c *Client) SendTextInstruct(ctx context.Context, phrase string) (domain.ResponseCode, error) {
	payload, err := json.Marshal(map[string]any{"instruct_type": 0, "instruct": phrase})
	if err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(err)
	}
	if err := c.writeFrame(ctx, c.instructPipe, payload); err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(err)
	}
	return domain.ResponseSuccess, nil
}

func (c *Client) SendManipulate(ctx context.Context, m domain.ManipulateEntity) (domain.ResponseCode, error) {
	payload, err := json.Marshal(map[string]any{
		"manipulate_type": int(m.ManipulateType),
		"use_module_name": m.UseModuleName,
		"text":            m.Text,
		"payload":         m.Payload,
	})
	if err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(err)
	}
	if err := c.writeFrame(ctx, c.manipulatePipe, payload); err != nil {
		return domain.ResponseUnknownError, domain.NewOutboundTransportError(err)
	}
	return domain.ResponseSuccess, nil
}

func (c *Client) writeFrame(ctx context.Context, path string, payload []byte) error {
	if len(payload) > maxFrameBytes {
		return fmt.Errorf("namedpipe: frame of %d bytes exceeds %d byte cap", len(payload), maxFrameBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := winio.DialPipeContext(ctx, path)
	if err != nil {
		return fmt.Errorf("namedpipe: dial %s: %w", path, err)
	}
	defer conn.Close()

	lenBuf := []byte{byte(len(payload) >> 24), byte(len(payload) >> 16), byte(len(payload) >> 8), byte(len(payload))}
	if _, err := conn.Write(lenBuf); err != nil {
		return fmt.Errorf("namedpipe: write length prefix: %w", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("namedpipe: write payload: %w", err)
	}
	return nil
}

func (c *Client) Close() error { return nil }
