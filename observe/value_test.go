package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_GetReturnsCurrentSnapshot(t *testing.T) {
	v := NewValue(10)
	assert.Equal(t, 10, v.Get())

	v.Set(20)
	assert.Equal(t, 20, v.Get())
}

func TestValue_SubscribersSeeEveryUpdate(t *testing.T) {
	v := NewValue(0)

	var seen []int
	cancel := v.Subscribe(func(n int) { seen = append(seen, n) })
	defer cancel()

	v.Set(1)
	v.Set(2)

	assert.Equal(t, []int{1, 2}, seen)
}

func TestValue_CancelStopsNotifications(t *testing.T) {
	v := NewValue(0)

	var seen []int
	cancel := v.Subscribe(func(n int) { seen = append(seen, n) })

	v.Set(1)
	cancel()
	v.Set(2)

	assert.Equal(t, []int{1}, seen)
}

func TestValue_SetAtDiscardsOlderVersions(t *testing.T) {
	v := NewValue(0)

	assert.True(t, v.SetAt(2, 20))
	assert.Equal(t, 20, v.Get())

	// a writer that stamped its value earlier but publishes later loses
	assert.False(t, v.SetAt(1, 10))
	assert.Equal(t, 20, v.Get())

	assert.False(t, v.SetAt(2, 99), "equal version is also stale")
	assert.Equal(t, 20, v.Get())

	assert.True(t, v.SetAt(3, 30))
	assert.Equal(t, 30, v.Get())
}

func TestValue_SetAtDiscardedPublicationNotifiesNobody(t *testing.T) {
	v := NewValue(0)

	var seen []int
	cancel := v.Subscribe(func(n int) { seen = append(seen, n) })
	defer cancel()

	v.SetAt(5, 50)
	v.SetAt(4, 40)

	assert.Equal(t, []int{50}, seen)
}

func TestValue_MultipleSubscribers(t *testing.T) {
	v := NewValue("")

	var a, b string
	cancelA := v.Subscribe(func(s string) { a = s })
	cancelB := v.Subscribe(func(s string) { b = s })
	defer cancelA()
	defer cancelB()

	v.Set("hello")

	assert.Equal(t, "hello", a)
	assert.Equal(t, "hello", b)
}
