// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     console
// Description: Command executors for the interactive console
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package console

import (
	"context"

	"github.com/msto63/scenebridge/internal/bridge/server"
	"github.com/msto63/scenebridge/internal/bridge/service"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Executor runs one command line
type Executor interface {
	Execute(ctx context.Context, line string) (string, error)
	// Target describes where commands go, shown in the status bar
	Target() string
}

// localExecutor runs commands against an in-process service
type localExecutor struct {
	service   *service.Service
	transport string
}

// NewLocalExecutor executes commands in-process, journaled under transport
func NewLocalExecutor(svc *service.Service, transport string) Executor {
	return &localExecutor{service: svc, transport: transport}
}

func (e *localExecutor) Execute(ctx context.Context, line string) (string, error) {
	return e.service.Execute(ctx, service.Request{Line: line, Transport: e.transport}), nil
}

func (e *localExecutor) Target() string {
	return "lokal"
}

// remoteExecutor sends commands to a running bridge over gRPC
type remoteExecutor struct {
	client  server.BridgeClient
	address string
}

// NewRemoteExecutor executes commands through a bridge client
func NewRemoteExecutor(client server.BridgeClient, address string) Executor {
	return &remoteExecutor{client: client, address: address}
}

func (e *remoteExecutor) Execute(ctx context.Context, line string) (string, error) {
	resp, err := e.client.Execute(ctx, wrapperspb.String(line))
	if err != nil {
		return "", err
	}
	return resp.GetValue(), nil
}

func (e *remoteExecutor) Target() string {
	return e.address
}
