// Package testutil holds helpers shared by the database-backed and integration tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AssertGRPCCode checks that err is a gRPC status error with the given code.
func AssertGRPCCode(t *testing.T, err error, code codes.Code) {
	t.Helper()

	if !assert.Error(t, err, "expected %s", code) {
		return
	}
	st, ok := status.FromError(err)
	if !assert.True(t, ok, "error is not a gRPC status: %v", err) {
		return
	}
	assert.Equal(t, code, st.Code(), "unexpected status: %s", st.Message())
}

// AssertTimeAlmostEqual checks if two times are within a specified delta.
// Useful for timestamp comparisons where exact equality isn't expected.
func AssertTimeAlmostEqual(t *testing.T, expected, actual time.Time, delta time.Duration) {
	t.Helper()

	diff := expected.Sub(actual)
	if diff < 0 {
		diff = -diff
	}

	assert.True(t,
		diff <= delta,
		"Times should be within %v of each other. Expected: %v, Actual: %v, Diff: %v",
		delta, expected, actual, diff,
	)
}
