package rpcx

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/terminalhub/hub/internal/hub/domain"
	"github.com/terminalhub/hub/internal/hub/transport"
)

// Server is the inbound gRPC transport (transport.Server). It binds a
// single listener and multiplexes the Submodule, Instruct, and
// Manipulate services onto one transport.Inbox, grounded on the
// teacher's grpc.NewServer / GracefulStop shutdown shape in
// internal/daemon/server/server.go.
type Server struct {
	Addr string

	inbox  transport.Inbox
	logger *slog.Logger
}

// New returns a Server that will listen on addr once Serve is called.
func New(addr string) *Server {
	return &Server{Addr: addr, logger: slog.With("component", "rpcx-server")}
}

func (s *Server) Serve(ctx context.Context, inbox transport.Inbox) error {
	s.inbox = inbox

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("rpcx: listen %s: %w", s.Addr, err)
	}

	grpcSrv := grpc.NewServer()
	grpcSrv.RegisterService(&submoduleServiceDesc, s)
	grpcSrv.RegisterService(&instructServiceDesc, s)
	grpcSrv.RegisterService(&manipulateServiceDesc, s)

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcSrv.Serve(ln) }()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down", "addr", s.Addr)
		grpcSrv.GracefulStop()
		return nil
	case err := <-serveErr:
		if err != nil {
			return domain.NewInboundTransportError(err)
		}
		return nil
	}
}

// --- Submodule service ---

func (s *Server) Register(_ context.Context, req *SubmoduleReq) (*Resp, error) {
	return s.pushOperate(domain.OperateRegister, req)
}

func (s *Server) Offline(_ context.Context, req *SubmoduleReq) (*Resp, error) {
	return s.pushOperate(domain.OperateOffline, req)
}

func (s *Server) Heartbeat(_ context.Context, req *SubmoduleReq) (*Resp, error) {
	return s.pushOperate(domain.OperateHeartbeat, req)
}

func (s *Server) Update(_ context.Context, req *SubmoduleReq) (*Resp, error) {
	return s.pushOperate(domain.OperateUpdate, req)
}

// pushOperate enqueues onto the submodule-operate channel. A send on a
// closed channel panics in Go; recoverChannelClosed turns that panic
// into an Unavailable error for this one RPC rather than take the whole
// server down (spec §7: inbound TransportError ends the per-peer loop,
// the facade keeps accepting new peers).
func (s *Server) pushOperate(kind domain.OperateType, req *SubmoduleReq) (resp *Resp, err error) {
	defer recoverChannelClosed(&err)
	s.inbox.SubmoduleOperate <- moduleOperateFromReq(kind, req)
	return respFromCode(domain.ResponseSuccess), nil
}

// --- Instruct service ---

func (s *Server) SendTextInstruct(_ context.Context, req *TextInstruct) (resp *Resp, err error) {
	defer recoverChannelClosed(&err)
	s.inbox.Instruct <- instructEntityFromWire(req)
	return respFromCode(domain.ResponseSuccess), nil
}

func (s *Server) SendMultipleTextInstruct(_ context.Context, _ *TextInstruct) (*Resp, error) {
	return nil, status.Error(codes.Unimplemented, domain.ErrNotSupported.Error())
}

// --- Manipulate service ---

func (s *Server) SendSimpleManipulate(_ context.Context, req *SimpleManipulate) (resp *Resp, err error) {
	defer recoverChannelClosed(&err)
	s.inbox.Manipulate <- manipulateEntityFromSimple(req)
	return respFromCode(domain.ResponseSuccess), nil
}

func (s *Server) SendTextDisplayManipulate(_ context.Context, req *TextDisplayManipulate) (resp *Resp, err error) {
	defer recoverChannelClosed(&err)
	s.inbox.Manipulate <- manipulateEntityFromTextDisplay(req)
	return respFromCode(domain.ResponseSuccess), nil
}

func recoverChannelClosed(err *error) {
	if r := recover(); r != nil {
		*err = status.Error(codes.Unavailable, domain.ErrChannelClosed.Error())
	}
}

func (s *Server) SendMultipleTextDisplayManipulate(_ context.Context, _ *TextDisplayManipulate) (*Resp, error) {
	return nil, status.Error(codes.Unimplemented, domain.ErrNotSupported.Error())
}

// --- hand-built service descriptors (no protoc; see codec.go) ---

var submoduleServiceDesc = grpc.ServiceDesc{
	ServiceName: "hub.Submodule",
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: submoduleRegisterHandler},
		{MethodName: "Offline", Handler: submoduleOfflineHandler},
		{MethodName: "Heartbeat", Handler: submoduleHeartbeatHandler},
		{MethodName: "Update", Handler: submoduleUpdateHandler},
	},
	Metadata: "rpcx",
}

var instructServiceDesc = grpc.ServiceDesc{
	ServiceName: "hub.Instruct",
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendTextInstruct", Handler: sendTextInstructHandler},
		{MethodName: "SendMultipleTextInstruct", Handler: sendMultipleTextInstructHandler},
	},
	Metadata: "rpcx",
}

var manipulateServiceDesc = grpc.ServiceDesc{
	ServiceName: "hub.Manipulate",
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendSimpleManipulate", Handler: sendSimpleManipulateHandler},
		{MethodName: "SendTextDisplayManipulate", Handler: sendTextDisplayManipulateHandler},
		{MethodName: "SendMultipleTextDisplayManipulate", Handler: sendMultipleTextDisplayManipulateHandler},
	},
	Metadata: "rpcx",
}

func submoduleRegisterHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SubmoduleReq)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).Register(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hub.Submodule/Register"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).Register(ctx, req.(*SubmoduleReq))
	}
	return interceptor(ctx, req, info, handler)
}

func submoduleOfflineHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SubmoduleReq)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).Offline(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hub.Submodule/Offline"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).Offline(ctx, req.(*SubmoduleReq))
	}
	return interceptor(ctx, req, info, handler)
}

func submoduleHeartbeatHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SubmoduleReq)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).Heartbeat(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hub.Submodule/Heartbeat"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).Heartbeat(ctx, req.(*SubmoduleReq))
	}
	return interceptor(ctx, req, info, handler)
}

func submoduleUpdateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SubmoduleReq)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).Update(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hub.Submodule/Update"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).Update(ctx, req.(*SubmoduleReq))
	}
	return interceptor(ctx, req, info, handler)
}

func sendTextInstructHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(TextInstruct)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).SendTextInstruct(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hub.Instruct/SendTextInstruct"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).SendTextInstruct(ctx, req.(*TextInstruct))
	}
	return interceptor(ctx, req, info, handler)
}

func sendMultipleTextInstructHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(TextInstruct)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*Server).SendMultipleTextInstruct(ctx, req)
}

func sendSimpleManipulateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SimpleManipulate)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).SendSimpleManipulate(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hub.Manipulate/SendSimpleManipulate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).SendSimpleManipulate(ctx, req.(*SimpleManipulate))
	}
	return interceptor(ctx, req, info, handler)
}

func sendTextDisplayManipulateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(TextDisplayManipulate)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).SendTextDisplayManipulate(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/hub.Manipulate/SendTextDisplayManipulate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).SendTextDisplayManipulate(ctx, req.(*TextDisplayManipulate))
	}
	return interceptor(ctx, req, info, handler)
}

func sendMultipleTextDisplayManipulateHandler(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(TextDisplayManipulate)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(*Server).SendMultipleTextDisplayManipulate(ctx, req)
}
