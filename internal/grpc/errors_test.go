package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/parsascontentcorner/clubserver/internal/errs"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    codes.Code
		message string
	}{
		{name: "authorization", err: errs.Authorization("only the owner can do that"), code: codes.PermissionDenied, message: "only the owner can do that"},
		{name: "bad request", err: errs.BadRequest("tier name is required"), code: codes.InvalidArgument, message: "tier name is required"},
		{name: "not found", err: errs.NotFound("club"), code: codes.NotFound, message: "club not found"},
		{name: "wrapped not found", err: fmt.Errorf("failed to load: %w", errs.NotFound("club tier")), code: codes.NotFound},
		{name: "unauthenticated", err: fmt.Errorf("%w: sign in to continue", errs.ErrUnauthenticated), code: codes.Unauthenticated, message: "sign in to continue"},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), code: codes.DeadlineExceeded},
		{name: "cancelled", err: context.Canceled, code: codes.Canceled},
		{name: "unexpected", err: errors.New("pq: connection reset"), code: codes.Internal, message: "internal server error"},
		{name: "status passes through", err: status.Error(codes.Aborted, "retry"), code: codes.Aborted, message: "retry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := status.Convert(toStatus(zap.NewNop(), tt.err))

			assert.Equal(t, tt.code, st.Code())
			if tt.message != "" {
				assert.Equal(t, tt.message, st.Message())
			}
		})
	}

	assert.NoError(t, toStatus(zap.NewNop(), nil))
}

func TestToStatus_Capacity(t *testing.T) {
	err := fmt.Errorf("join: %w", &errs.CapacityError{TierID: 12, RemainingSpots: 0})

	st := status.Convert(toStatus(zap.NewNop(), err))

	assert.Equal(t, codes.ResourceExhausted, st.Code())
	info := errorInfo(t, st)
	assert.Equal(t, ReasonTierFull, info.Reason)
	assert.Equal(t, "club.v1", info.Domain)
	assert.Equal(t, "12", info.Metadata["club_tier_id"])
	assert.Equal(t, "0", info.Metadata["remaining_spots"])
}

func TestToStatus_InsufficientFunds(t *testing.T) {
	st := status.Convert(toStatus(zap.NewNop(), errs.InsufficientFunds(100, 500)))

	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Equal(t, "balance 100 is below the required 500", st.Message())
	assert.Equal(t, ReasonInsufficientFunds, errorInfo(t, st).Reason)
}

func errorInfo(t *testing.T, st *status.Status) *errdetails.ErrorInfo {
	t.Helper()
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info
		}
	}
	require.FailNow(t, "status has no ErrorInfo detail")
	return nil
}
