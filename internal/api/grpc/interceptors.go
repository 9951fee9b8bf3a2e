package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/metaschema/registry/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs requests and responses
func (s *Server) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	log := s.log.With().Str("method", info.FullMethod).Logger()
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 {
			ctx = logger.ContextWithRequestID(ctx, ids[0])
			log = log.With().Str("request_id", ids[0]).Logger()
		}
	}

	resp, err := handler(ctx, req)

	log = log.With().Dur("duration", time.Since(start)).Logger()
	if err != nil {
		log.Err(err).Msg("gRPC request failed")
	} else {
		log.Debug().Msg("gRPC request completed")
	}

	return resp, err
}

// recoveryInterceptor converts handler panics into Internal errors
func (s *Server) recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("error", r).
				Str("method", info.FullMethod).
				Bytes("stack", debug.Stack()).
				Msg("gRPC handler panic recovered")
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}
