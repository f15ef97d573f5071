// ABOUTME: Browser user agent pool shared by feed and page fetches
// ABOUTME: Sites that block bot agents still serve pages to these strings

package useragent

import (
	"math/rand"
	"sync"
	"time"
)

// Browsers is the rotation pool
var Browsers = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 Edg/91.0.864.59",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
}

// Picker hands out user agents from the pool. Safe for concurrent use.
type Picker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPicker creates a picker; a nil source seeds from the clock
func NewPicker(rnd *rand.Rand) *Picker {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{rnd: rnd}
}

// Random returns any agent from the pool
func (p *Picker) Random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Browsers[p.rnd.Intn(len(Browsers))]
}

// Other returns an agent different from current
func (p *Picker) Other(current string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		ua := Browsers[p.rnd.Intn(len(Browsers))]
		if ua != current {
			return ua
		}
	}
}

// Float64 exposes the picker's source for header jitter (DNT, delays)
func (p *Picker) Float64() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Float64()
}
