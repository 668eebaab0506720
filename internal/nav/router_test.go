package nav

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter(t *testing.T) {
	r := NewRouter("dashboard.html")
	assert.Equal(t, "dashboard.html", r.CurrentPath())

	_, ok := r.Redirected()
	assert.False(t, ok)

	r.Navigate("index.html")
	target, ok := r.Redirected()
	assert.True(t, ok)
	assert.Equal(t, "index.html", target)
	assert.Equal(t, "dashboard.html", r.CurrentPath(), "navigation does not move the current page")

	r.SetCurrent("skills.html")
	_, ok = r.Redirected()
	assert.False(t, ok)
	assert.Equal(t, []string{"index.html"}, r.History())
}

func TestRouterConcurrentUse(t *testing.T) {
	r := NewRouter("test.html")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Navigate("index.html")
			_ = r.CurrentPath()
		}()
	}
	wg.Wait()
	assert.Len(t, r.History(), 50)
}
