package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_JoinLeave(t *testing.T) {
	req := require.New(t)
	s := NewSession("s1")

	req.True(s.JoinRoom("room-a"))
	req.False(s.JoinRoom("room-a"))
	req.True(s.JoinRoom("room-b"))
	req.ElementsMatch([]string{"room-a", "room-b"}, s.Rooms())

	req.True(s.LeaveRoom("room-a"))
	req.False(s.LeaveRoom("room-a"))
	req.False(s.InRoom("room-a"))
	req.True(s.InRoom("room-b"))
}

func TestSession_LeaveNeverJoined(t *testing.T) {
	req := require.New(t)
	s := NewSession("s1")

	req.False(s.LeaveRoom("room-x"))
	req.Empty(s.Rooms())
}
