package scale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	require := require.New(t)

	t.Run("Initial State", func(t *testing.T) {
		mgr := newStateMgr(nil)
		require.Equal(DisconnectedState, mgr.State())
		require.True(mgr.State().IsDisconnected())
	})

	t.Run("Forward path", func(t *testing.T) {
		count := 0
		mgr := newStateMgr(nil, func(_ Driver, _ State, _ State) { count++ })

		require.ErrorIs(mgr.ToConnected(), ErrInvalidTransition, "cannot skip the linked stage")
		require.Equal(0, count)

		require.NoError(mgr.ToLinked())
		require.NoError(mgr.ToLinked(), "same state is a no-op")
		require.Equal(1, count)

		require.NoError(mgr.ToConnected())
		require.True(mgr.State().IsConnected())
		require.Equal(2, count)

		require.ErrorIs(mgr.ToLinked(), ErrInvalidTransition, "never moves backward through a successful stage")
	})

	t.Run("Failure paths", func(t *testing.T) {
		mgr := newStateMgr(nil)
		require.NoError(mgr.ToLinked())
		mgr.ToDisconnected()
		require.Equal(DisconnectedState, mgr.State())

		require.NoError(mgr.ToLinked())
		require.NoError(mgr.ToConnected())
		require.NoError(mgr.ToReconnectPending())
		require.True(mgr.State().IsReconnectPending())

		mgr.ToDisconnected()
		require.NoError(mgr.ToLinked())
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		mgr := newStateMgr(nil)
		require.False(mgr.CompareAndSwap(ConnectedState, ReconnectPendingState))
		require.Equal(DisconnectedState, mgr.State())

		require.NoError(mgr.ToLinked())
		require.NoError(mgr.ToConnected())
		require.True(mgr.CompareAndSwap(ConnectedState, ReconnectPendingState))
		require.False(mgr.CompareAndSwap(ConnectedState, ReconnectPendingState))
	})

	t.Run("String", func(t *testing.T) {
		require.Equal("disconnected", DisconnectedState.String())
		require.Equal("linked", LinkedState.String())
		require.Equal("connected", ConnectedState.String())
		require.Equal("reconnect-pending", ReconnectPendingState.String())
		require.Equal("unknown", State(42).String())
	})
}
