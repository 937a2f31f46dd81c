package grpc

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/parsascontentcorner/clubserver/internal/errs"
)

const errorDomain = "club.v1"

// Error reasons attached as ErrorInfo details
const (
	ReasonTierFull          = "TIER_FULL"
	ReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
)

// toStatus maps service errors onto gRPC status codes. Unexpected errors are
// logged here since their detail is hidden from the caller.
func toStatus(logger *zap.Logger, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var capacityErr *errs.CapacityError
	switch {
	case errors.As(err, &capacityErr):
		return withInfo(codes.ResourceExhausted, "this tier is full", ReasonTierFull, map[string]string{
			"club_tier_id":    strconv.FormatInt(capacityErr.TierID, 10),
			"remaining_spots": strconv.Itoa(capacityErr.RemainingSpots),
		})
	case errors.Is(err, errs.ErrInsufficientFunds):
		return withInfo(codes.FailedPrecondition, errs.Message(err), ReasonInsufficientFunds, nil)
	case errors.Is(err, errs.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, errs.Message(err))
	case errors.Is(err, errs.ErrAuthorization):
		return status.Error(codes.PermissionDenied, errs.Message(err))
	case errors.Is(err, errs.ErrBadRequest):
		return status.Error(codes.InvalidArgument, errs.Message(err))
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, errs.Message(err)+" not found")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	default:
		logger.Error("internal error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}

func withInfo(code codes.Code, msg, reason string, metadata map[string]string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   errorDomain,
		Metadata: metadata,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
