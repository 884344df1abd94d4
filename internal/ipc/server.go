package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"postpilot/internal/api"
	"postpilot/internal/daemon"
	"postpilot/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Postpilot", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun postpilot stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.logger.Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.logger.Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.logger.Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DBPath = status.DBPath
	resp.LockPath = status.LockFilePath
	resp.Scheduler = status.Scheduler.Running
	resp.LastPoll = status.Scheduler.LastPoll
	resp.LastError = status.Scheduler.LastErr
	resp.PostStats = status.PostStats
	resp.InboxActive = status.InboxActive
	resp.Recurring = status.Recurring
	return nil
}

func (s *service) PostSchedule(req PostScheduleRequest, resp *PostScheduleResponse) error {
	post, err := s.daemon.Posts().Create(s.ctx, req.Post)
	if err != nil {
		return err
	}
	resp.Post = post
	s.logger.Info("post scheduled via IPC",
		logging.String(logging.FieldEventType, "post_schedule"),
		logging.Int64(logging.FieldPostID, post.ID),
		logging.String(logging.FieldPlatform, post.Platform))
	return nil
}

func (s *service) PostList(req PostListRequest, resp *PostListResponse) error {
	posts, err := s.daemon.Posts().List(s.ctx, toListRequest(req))
	if err != nil {
		return err
	}
	resp.Posts = posts
	return nil
}

func (s *service) PostDescribe(req PostDescribeRequest, resp *PostDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid post id %d", req.ID)
	}
	detail, err := s.daemon.Posts().Describe(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Post = detail.Post
	resp.Results = detail.Results
	return nil
}

func (s *service) PostPromote(req PostPromoteRequest, resp *PostPromoteResponse) error {
	post, err := s.daemon.Posts().Schedule(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Post = post
	return nil
}

func (s *service) PostCancel(req PostCancelRequest, resp *PostCancelResponse) error {
	post, err := s.daemon.Posts().Cancel(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Post = post
	s.logger.Info("post canceled via IPC",
		logging.String(logging.FieldEventType, "post_cancel"),
		logging.Int64(logging.FieldPostID, post.ID))
	return nil
}

func (s *service) PostRetry(req PostRetryRequest, resp *PostRetryResponse) error {
	post, err := s.daemon.Posts().Retry(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Post = post
	s.logger.Info("post retried via IPC",
		logging.String(logging.FieldEventType, "post_retry"),
		logging.Int64(logging.FieldPostID, post.ID))
	return nil
}

func (s *service) PostRemove(req PostRemoveRequest, resp *PostRemoveResponse) error {
	removed, err := s.daemon.Posts().Remove(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) ClearDelivered(_ ClearDeliveredRequest, resp *ClearDeliveredResponse) error {
	removed, err := s.daemon.Posts().ClearDelivered(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.logger.Info("delivered posts cleared",
		logging.String(logging.FieldEventType, "posts_clear_delivered"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) Calendar(req CalendarRequest, resp *CalendarResponse) error {
	calendar, err := s.daemon.Views().Calendar(s.ctx, req.Year, req.Month)
	if err != nil {
		return err
	}
	*resp = calendar
	return nil
}

func (s *service) Analytics(req AnalyticsRequest, resp *AnalyticsResponse) error {
	analytics, err := s.daemon.Views().Analytics(s.ctx, req.Days, req.Comments)
	if err != nil {
		return err
	}
	*resp = analytics
	return nil
}

func (s *service) Export(req ExportRequest, resp *ExportResponse) error {
	count, err := s.daemon.Views().Export(s.ctx, req.Path)
	if err != nil {
		return err
	}
	resp.Count = count
	resp.Path = req.Path
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	*resp = health
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}

func toListRequest(req PostListRequest) api.ListPostsRequest {
	return api.ListPostsRequest{
		States:   req.States,
		Platform: req.Platform,
		Limit:    req.Limit,
	}
}
