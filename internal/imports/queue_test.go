package imports

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_PushDrain(t *testing.T) {
	var q Queue
	q.Push("a.md", "", "b.txt")
	q.Push("c.markdown")

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []string{"a.md", "b.txt", "c.markdown"}, q.Drain())
	assert.Empty(t, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Concurrent(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push("x.md")
		}()
	}
	wg.Wait()
	assert.Len(t, q.Drain(), 50)
}
