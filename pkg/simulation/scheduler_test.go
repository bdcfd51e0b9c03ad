package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsDueTasksInOrder(t *testing.T) {
	s := NewScheduler(nil)
	var got []string
	record := func(name string) func() { return func() { got = append(got, name) } }

	s.At(2, "late", record("late"))
	s.At(1, "first", record("first"))
	s.At(1, "second", record("second"))
	s.At(5, "future", record("future"))

	assert.Equal(t, 0, s.RunDue(0.5))
	assert.Equal(t, 3, s.RunDue(2))
	assert.Equal(t, []string{"first", "second", "late"}, got)
	assert.Equal(t, 1, s.Len())

	s.At(3, "nil", nil)
	assert.Equal(t, 1, s.Len(), "nil callbacks are not queued")
}

func TestScheduler_ChainedTasks(t *testing.T) {
	s := NewScheduler(nil)
	var got []float64
	s.At(1, "a", func() {
		got = append(got, 1)
		s.At(1, "b", func() { got = append(got, 1.5) })
		s.At(4, "c", func() { got = append(got, 4) })
	})

	assert.Equal(t, 2, s.RunDue(1), "a task already due runs in the same call")
	assert.Equal(t, []float64{1, 1.5}, got)
	assert.Equal(t, 1, s.RunDue(10))
	assert.Equal(t, []float64{1, 1.5, 4}, got)
}

func TestHealth(t *testing.T) {
	h := NewHealth(100, 100, 10)
	assert.True(t, h.Full())
	assert.False(t, h.Heal(1), "a full pool has nothing to restore")

	assert.False(t, h.TakeDamage(40))
	assert.InDelta(t, 0.6, h.Percentage(), 1e-9)
	assert.False(t, h.Heal(2))
	assert.InDelta(t, 80, h.Current(), 1e-9)
	assert.True(t, h.Heal(5))
	assert.Equal(t, 100.0, h.Current())

	assert.False(t, h.TakeDamage(100), "reaching exactly zero is not death")
	assert.True(t, h.TakeDamage(1))
	assert.Zero(t, h.Current())

	capped := NewHealth(150, 100, 1)
	assert.Equal(t, 100.0, capped.Current())
}
