package resolver

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockItemReader is a mock implementation of ports.ItemReader
type MockItemReader struct {
	mock.Mock
}

func (m *MockItemReader) ResolveItemKeys(ctx context.Context, hostID uint64, itemIDs []uint64) (map[uint64]uint64, error) {
	args := m.Called(ctx, hostID, itemIDs)
	if v := args.Get(0); v != nil {
		return v.(map[uint64]uint64), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestResolver_Resolve_Success(t *testing.T) {
	ctx := context.Background()
	reader := new(MockItemReader)
	reader.On("ResolveItemKeys", ctx, uint64(5), []uint64{100, 101, 102}).
		Return(map[uint64]uint64{100: 500, 102: 502}, nil).Once()

	m, err := New(reader).Resolve(ctx, 5, []uint64{102, 100, 0, 101, 100})
	require.NoError(t, err)
	assert.Equal(t, uint64(500), m.Lookup(100))
	assert.Zero(t, m.Lookup(101), "miss resolves to no reference")
	assert.Equal(t, uint64(502), m.Lookup(102))
	reader.AssertExpectations(t)
}

func TestResolver_Resolve_NothingToResolve(t *testing.T) {
	reader := new(MockItemReader)

	m, err := New(reader).Resolve(context.Background(), 5, []uint64{0})
	require.NoError(t, err)
	assert.Empty(t, m)
	reader.AssertNotCalled(t, "ResolveItemKeys", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolver_Resolve_Error(t *testing.T) {
	ctx := context.Background()
	reader := new(MockItemReader)
	reader.On("ResolveItemKeys", ctx, uint64(5), []uint64{1}).Return(nil, errors.New("timeout"))

	_, err := New(reader).Resolve(ctx, 5, []uint64{1})
	assert.ErrorContains(t, err, "timeout")
}
