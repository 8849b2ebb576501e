package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/payroll-forensics/internal/core/audit"
	"github.com/ogurasousui/payroll-forensics/internal/core/mapping"
)

var errInvalidRequest = errors.New("handler: invalid request")

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, audit.ErrInvalidProfile),
		errors.Is(err, audit.ErrInvalidMinDays),
		errors.Is(err, audit.ErrInvalidThreshold),
		errors.Is(err, mapping.ErrUnknownKind),
		errors.Is(err, mapping.ErrUnknownField),
		errors.Is(err, mapping.ErrColumnNotFound):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, audit.ErrEmployeesRequired),
		errors.Is(err, audit.ErrPayrollRequired),
		errors.Is(err, audit.ErrSourceNotAvailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
