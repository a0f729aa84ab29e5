package recall

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type panickingModel struct{ fakeModel }

func (*panickingModel) Train(context.Context, []TrainingSample) error {
	panic("fit exploded")
}

func TestTrainer_RejectsDuplicateWhilePending(t *testing.T) {
	release := make(chan struct{})
	tr := NewTrainer(func() Model { return &fakeModel{release: release, fn: constant(1)} }, 2, quietLogger())
	defer tr.Close()

	var got []Model
	done := func(m Model) { got = append(got, m) }

	require.True(t, tr.Schedule("u1", nil, done))
	assert.True(t, tr.Pending("u1"))
	assert.False(t, tr.Schedule("u1", nil, done))

	close(release)
	tr.Wait()
	assert.False(t, tr.Pending("u1"))
	assert.Len(t, got, 1)

	require.True(t, tr.Schedule("u1", nil, done), "schedulable again once finished")
	tr.Wait()
	assert.Len(t, got, 2)
}

func TestTrainer_FailureSkipsDone(t *testing.T) {
	m := &fakeModel{trainErr: ErrModelUnavailable}
	tr := NewTrainer(func() Model { return m }, 1, quietLogger())
	defer tr.Close()

	called := false
	require.True(t, tr.Schedule("u1", nil, func(Model) { called = true }))
	tr.Wait()

	assert.False(t, called)
	assert.True(t, m.disposed.Load())
	assert.False(t, tr.Pending("u1"))
}

func TestTrainer_RecoversFromPanic(t *testing.T) {
	m := &panickingModel{}
	tr := NewTrainer(func() Model { return m }, 1, quietLogger())
	defer tr.Close()

	called := false
	require.True(t, tr.Schedule("u1", nil, func(Model) { called = true }))
	tr.Wait()

	assert.False(t, called)
	assert.True(t, m.disposed.Load())
}

func TestTrainer_CloseRejectsNewRuns(t *testing.T) {
	tr := NewTrainer(nil, 1, quietLogger())
	tr.Close()
	tr.Close()
	assert.False(t, tr.Schedule("u1", nil, func(Model) {}))
}

func TestTrainer_CloseDrainsQueue(t *testing.T) {
	tr := NewTrainer(func() Model { return &fakeModel{fn: constant(1)} }, 1, quietLogger())

	done := make(chan string, 3)
	for _, u := range []string{"a", "b", "c"} {
		require.True(t, tr.Schedule(u, nil, func(Model) { done <- u }))
	}
	tr.Close()
	close(done)

	var users []string
	for u := range done {
		users = append(users, u)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, users)
}
