package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	grpcctx "github.com/dtroode/userkeeper-server/internal/api/grpc/context"
	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestLogging_HandleGRPC(t *testing.T) {
	t.Parallel()

	lg := NewLogging(grpcctx.NewManager(), testutil.MakeNoopLogger())

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				time.Sleep(10 * time.Millisecond)
				return "ok", nil
			},
			wantCode: codes.OK,
		},
		{
			name: "grpc error propagates",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, status.Error(codes.InvalidArgument, "bad input")
			},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "non-grpc error becomes Internal",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}
			resp, err := lg.HandleGRPC(context.Background(), struct{}{}, info, tt.handler)

			if tt.wantCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "ok", resp)
				return
			}

			st, ok := status.FromError(err)
			gotCode := codes.Internal
			if ok {
				gotCode = st.Code()
			}
			assert.Equal(t, tt.wantCode, gotCode)
		})
	}
}

func TestLogging_HandleGRPC_RequestID(t *testing.T) {
	t.Parallel()

	mgr := grpcctx.NewManager()
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}

	t.Run("generated when absent", func(t *testing.T) {
		t.Parallel()

		lg := NewLogging(mgr, testutil.MakeNoopLogger())
		var seen uuid.UUID
		_, err := lg.HandleGRPC(context.Background(), nil, info, func(ctx context.Context, _ interface{}) (interface{}, error) {
			id, ok := mgr.GetRequestIDFromContext(ctx)
			require.True(t, ok)
			seen = id
			return nil, nil
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, seen)
	})

	t.Run("client id kept", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		lg := NewLogging(mgr, logger.NewWithWriter(&buf, 0))

		clientID := uuid.New()
		ctx := metadata.NewIncomingContext(context.Background(),
			metadata.Pairs(grpcctx.RequestIDKey, clientID.String()))

		_, err := lg.HandleGRPC(ctx, nil, info, func(ctx context.Context, _ interface{}) (interface{}, error) {
			id, ok := mgr.GetRequestIDFromContext(ctx)
			require.True(t, ok)
			assert.Equal(t, clientID, id)
			return nil, nil
		})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "request_id="+clientID.String())
	})
}
