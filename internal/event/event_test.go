package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "RunStarted", typ: RunStarted},
		{want: "BlockHashed", typ: BlockHashed},
		{want: "BlockFailed", typ: BlockFailed},
		{want: "BlockMismatch", typ: BlockMismatch},
		{want: "RunComplete", typ: RunComplete},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
}

func TestEventZeroValue(t *testing.T) {
	var e Event
	assert.Equal(t, Type(0), e.Type)
	assert.True(t, e.Timestamp.IsZero())
	assert.Empty(t, e.Path)
	assert.Zero(t, e.Block)
	assert.Zero(t, e.Size)
	assert.Zero(t, e.Total)
	require.NoError(t, e.Error)
}

func TestEmit(t *testing.T) {
	ch := make(chan Event, 1)
	Emit(ch, Event{Type: BlockHashed, Block: 4, Size: 4096})

	got := <-ch
	assert.Equal(t, BlockHashed, got.Type)
	assert.Equal(t, int64(4), got.Block)
	assert.False(t, got.Timestamp.IsZero())
}

func TestEmitDropsWhenFull(t *testing.T) {
	ch := make(chan Event, 1)
	Emit(ch, Event{Type: BlockHashed, Block: 0})
	Emit(ch, Event{Type: BlockHashed, Block: 1})

	got := <-ch
	assert.Equal(t, int64(0), got.Block)
	assert.Empty(t, ch)
}

func TestEmitNilChannel(t *testing.T) {
	assert.NotPanics(t, func() { Emit(nil, Event{Type: RunStarted}) })
}
