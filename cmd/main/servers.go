package main

import (
	"fmt"
	"net"

	"sensor-dashboard/src/config"
	pb "sensor-dashboard/src/grpc_control"
	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/server"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startServers binds the dashboard and gRPC listeners and serves them in the
// background. The returned function stops the gRPC server.
func startServers(
	srv *server.DashboardServer,
	controller interfaces.IDashboardController,
	config *config.Config,
	configPath string,
	appLogger *logger.Logger,
) (func(), error) {

	// 1. Dashboard server. Bind first so the poller's first request finds it.
	ln, err := srv.Listen()
	if err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Serve(ln); err != nil {
			appLogger.Error("Dashboard server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	if config.GrpcPort == 0 {
		appLogger.Info("gRPC control disabled")
		return func() {}, nil
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", config.GrpcHost, config.GrpcPort))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for gRPC: %w", err)
	}
	grpcServer := grpc.NewServer()
	controlService := pb.NewControlService(config, controller, configPath, logger.NewLogger(config.MConfig, "ControlService"))
	pb.RegisterDashboardControlServer(grpcServer, controlService)

	go func() {
		appLogger.Info("Starting gRPC Control Server on %s", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("gRPC server failed: %v", err)
		}
	}()

	return grpcServer.GracefulStop, nil
}
