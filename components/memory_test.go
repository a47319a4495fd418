package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bububa/uxcrew/schema"
)

func TestMemoryOverflow(t *testing.T) {
	mem := NewMemory(3)
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		mem.NewMessage(UserRole, schema.NewString(v))
	}
	assert.Equal(t, 3, mem.MessageCount())
	history := mem.History()
	got := make([]string, 0, len(history))
	for _, msg := range history {
		got = append(got, msg.Text())
	}
	assert.Equal(t, []string{"c", "d", "e"}, got)
}

func TestMemoryTurns(t *testing.T) {
	mem := NewMemory(0)
	first := mem.NewTurn()
	mem.NewMessage(UserRole, schema.NewString("question"))
	mem.NewMessage(AssistantRole, schema.NewString("answer"))
	second := mem.NewTurn()
	assert.NotEqual(t, first, second)
	mem.NewMessage(UserRole, schema.NewString("again"))

	assert.Len(t, mem.Turn(first), 2)
	assert.Len(t, mem.Turn(second), 1)

	last, ok := mem.Last(AssistantRole)
	assert.True(t, ok)
	assert.Equal(t, "answer", last.Text())
	_, ok = mem.Last(SystemRole)
	assert.False(t, ok)

	mem.Reset()
	assert.Equal(t, 0, mem.MessageCount())
	assert.Equal(t, "", mem.TurnID())
}
