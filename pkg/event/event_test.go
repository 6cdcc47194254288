package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type removeSelf struct {
	n int
}

func (r *removeSelf) OnEvent(sender *Sender, event any) {
	r.n++
	sender.RemoveListener(r)
}

func TestSender(t *testing.T) {
	s := &Sender{}
	a := &Recorder{}
	b := &Recorder{}
	s.AddListener(a)
	s.AddListener(a)
	s.AddListener(b)
	s.SendEvent(1)
	require.Equal(t, []any{1}, a.Events)
	require.Equal(t, []any{1}, b.Events)

	s.RemoveListener(b)
	s.SendEvent("two")
	require.Equal(t, []any{1, "two"}, a.Events)
	require.Equal(t, []any{1}, b.Events)

	r := &removeSelf{}
	s.AddListener(r)
	s.SendEvent(3)
	s.SendEvent(4)
	require.Equal(t, 1, r.n)
	require.Equal(t, []any{1, "two", 3, 4}, a.Events)
}

func TestMute(t *testing.T) {
	s := &Sender{}
	a := &Recorder{}
	s.AddListener(a)
	unmute1 := s.Mute()
	unmute2 := s.Mute()
	s.SendEvent(1)
	unmute2()
	s.SendEvent(2)
	unmute1()
	s.SendEvent(3)
	require.Equal(t, []any{3}, a.Events)
}
