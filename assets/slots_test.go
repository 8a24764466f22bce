package assets_test

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/plus3/emotesky/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotGet(t *testing.T) {
	pending := assets.Slot[string]{}
	_, ok := pending.Get()
	assert.False(t, ok)

	failed := assets.Slot[string]{State: assets.Failed, Value: "ignored"}
	_, ok = failed.Get()
	assert.False(t, ok)

	loaded := assets.Slot[string]{State: assets.Loaded, Value: "cloud"}
	v, ok := loaded.Get()
	assert.True(t, ok)
	assert.Equal(t, "cloud", v)
}

func TestSlotsReadinessGate(t *testing.T) {
	slots := assets.NewSlots[string](3)

	assert.False(t, slots.AllSettled())
	assert.Empty(t, slots.Loaded())

	_, _, ok := slots.Sample(rand.New(rand.NewPCG(1, 2)))
	assert.False(t, ok, "nothing should be sampled before a slot loads")

	assert.True(t, slots.Set(1, "b"))
	assert.False(t, slots.Set(1, "again"), "first settle wins")
	assert.Equal(t, []int{1}, slots.Loaded())

	idx, v, ok := slots.Sample(rand.New(rand.NewPCG(1, 2)))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "b", v)

	select {
	case <-slots.Ready():
		t.Fatal("ready closed too early")
	default:
	}

	slots.Fail(0)
	slots.Set(2, "c")

	assert.True(t, slots.AllSettled())
	assert.Equal(t, []int{1, 2}, slots.Loaded())
	assert.Equal(t, assets.Failed, slots.State(0))

	select {
	case <-slots.Ready():
	default:
		t.Fatal("ready should be closed once all slots settle")
	}
}

func TestSlotsEmpty(t *testing.T) {
	slots := assets.NewSlots[int](0)
	assert.True(t, slots.AllSettled())
	<-slots.Ready()
}

func TestSlotsGetOutOfRange(t *testing.T) {
	slots := assets.NewSlots[int](1)
	_, ok := slots.Get(-1)
	assert.False(t, ok)
	_, ok = slots.Get(5)
	assert.False(t, ok)
}

func TestSlotsConcurrentSet(t *testing.T) {
	const n = 64
	slots := assets.NewSlots[int](n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots.Set(i, i*i)
		}()
	}
	wg.Wait()

	<-slots.Ready()
	assert.Len(t, slots.Loaded(), n)
	v, ok := slots.Get(7)
	assert.True(t, ok)
	assert.Equal(t, 49, v)
}

func TestSlotStateString(t *testing.T) {
	assert.Equal(t, "pending", assets.Pending.String())
	assert.Equal(t, "loaded", assets.Loaded.String())
	assert.Equal(t, "failed", assets.Failed.String())
}
