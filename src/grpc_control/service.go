package grpc_control

import (
	"context"
	"sort"
	"sync"

	"sensor-dashboard/src/config"
	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements DashboardControlServer on top of the poll controller.
type ControlService struct {
	Config     *config.Config
	Controller interfaces.IDashboardController
	ConfigPath string
	Logger     *logger.Logger

	mu sync.Mutex
}

// NewControlService creates a new instance of ControlService.
// An empty cfgPath disables persisting the selected interval.
func NewControlService(
	cfg *config.Config,
	controller interfaces.IDashboardController,
	cfgPath string,
	log *logger.Logger,
) *ControlService {
	return &ControlService{
		Config:     cfg,
		Controller: controller,
		ConfigPath: cfgPath,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListIntervals(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	var list []interface{}
	for _, in := range s.Controller.ListIntervals() {
		list = append(list, map[string]interface{}{
			"name":            in.Name,
			"label":           in.Label,
			"bucket_seconds":  in.BucketSeconds,
			"refresh_seconds": in.RefreshSeconds,
		})
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"intervals": list,
		"selected":  s.Controller.Selected().Name,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode intervals: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// SelectInterval switches the dashboard interval and persists it as the
// default when a config path is known.
func (s *ControlService) SelectInterval(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	name := req.GetValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "interval name is required")
	}
	if err := s.Controller.Select(name); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	persisted := false
	if s.ConfigPath != "" {
		s.mu.Lock()
		s.Config.Dashboard.DefaultInterval = name
		err := config.SetDefaultInterval(s.ConfigPath, name)
		s.mu.Unlock()
		if err != nil {
			s.Logger.Error("gRPC: failed to persist interval %s: %v", name, err)
		} else {
			persisted = true
		}
	}

	s.Logger.Info("gRPC: interval changed to %s", name)
	out, err := structpb.NewStruct(map[string]interface{}{
		"selected":  name,
		"persisted": persisted,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Refresh(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.Controller.Refresh()
	return &emptypb.Empty{}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.Controller.Status()

	frames := s.Controller.Frames()
	names := make([]string, 0, len(frames))
	for name := range frames {
		names = append(names, name)
	}
	sort.Strings(names)

	charts := make(map[string]interface{}, len(frames))
	for _, name := range names {
		f := frames[name]
		charts[name] = map[string]interface{}{
			"heading": f.Heading,
			"version": float64(f.Version),
			"buckets": len(f.Candles),
			"lower":   f.Lower,
			"upper":   f.Upper,
		}
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"selected_interval": st.SelectedInterval,
		"polls":             st.Polls,
		"failures":          st.Failures,
		"stale_dropped":     st.StaleDropped,
		"last_success":      st.LastSuccess,
		"last_error":        st.LastError,
		"charts":            charts,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return out, nil
}
