package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStateTransitions(t *testing.T) {
	m := NewManager()

	assert.Equal(t, StateNone, m.GetState(1001))

	m.SetState(1001, StateRegName)
	assert.Equal(t, StateRegName, m.GetState(1001))

	m.SetState(1001, StateRegRoll)
	assert.Equal(t, StateRegRoll, m.GetState(1001))

	// Other users are unaffected.
	assert.Equal(t, StateNone, m.GetState(1002))

	// StateNone drops the entry entirely.
	m.SetState(1001, StateNone)
	assert.Equal(t, StateNone, m.GetState(1001))
	_, ok := m.GetData(1001, "name")
	assert.False(t, ok)
}

func TestManagerDialogData(t *testing.T) {
	m := NewManager()

	m.SetState(1001, StateRegName)
	m.SetData(1001, "name", "Ananya Nair")
	m.SetData(1001, "roll_no", "B21ME1042")

	v, ok := m.GetData(1001, "name")
	require.True(t, ok)
	assert.Equal(t, "Ananya Nair", v)

	_, ok = m.GetData(1001, "phone")
	assert.False(t, ok)

	all := m.GetAllData(1001)
	assert.Len(t, all, 2)

	// The copy must not alias the stored map.
	all["name"] = "tampered"
	v, _ = m.GetData(1001, "name")
	assert.Equal(t, "Ananya Nair", v)

	m.ClearState(1001)
	assert.Equal(t, StateNone, m.GetState(1001))
	assert.Nil(t, m.GetAllData(1001))
}

func TestManagerSetDataWithoutState(t *testing.T) {
	m := NewManager()

	// Data before any state: the entry is created on demand.
	m.SetData(1001, "key", 7)
	v, ok := m.GetData(1001, "key")
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetState(id, StateRegName)
			m.SetData(id, "name", "x")
			m.GetState(id)
			m.GetAllData(id)
			m.ClearState(id)
		}(int64(i))
	}
	wg.Wait()
}
