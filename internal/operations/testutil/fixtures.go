package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cryptocap/internal/operations"
)

// SnapshotCSV has five rows: two without a capitalization, one of which still
// carries both changes, and one with a capitalization but no 7d change.
const SnapshotCSV = `id,name,symbol,rank,price_usd,market_cap_usd,percent_change_24h,percent_change_7d
bitcoin,Bitcoin,BTC,1,13000,213049300000,7.33,17.45
ethereum,Ethereum,ETH,2,440,43529450000,-1.5,4.1
ghost,Ghost,GST,3,,,2.0,-3.0
ripple,Ripple,XRP,4,0.24,9116000000,0.5,
empty,Empty,EMP,5,,,,
`

// CreateSuccessfulStage creates a step that always succeeds
func CreateSuccessfulStage(id, name string, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
	}
}

// CreateFailingStage creates a step whose Execute returns err
func CreateFailingStage(id, name string, err error, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			return err
		},
	}
}

// CreateValidationFailingStage creates a step whose Validate returns err
func CreateValidationFailingStage(id, name string, err error, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
		ValidateFunc: func(state *operations.OperationState) error {
			return err
		},
	}
}

// CreateSlowStage creates a step that waits for d or context cancellation
func CreateSlowStage(id, name string, d time.Duration, deps ...string) *MockStage {
	return &MockStage{
		IDValue:           id,
		NameValue:         name,
		DependenciesValue: deps,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			select {
			case <-time.After(d):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// CreateTestFile writes content to name inside a temp dir and returns the path
func CreateTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
