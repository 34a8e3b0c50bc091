package mirror

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// nodePool is a round-robin pool of mirror node base URLs. Nodes that fail their
// liveness probe are parked and periodically retested in the background.
type nodePool struct {
	mu        sync.Mutex
	idx       int
	alive     []string
	dead      []string
	testFunc  func(baseURL string) bool
	retestInt time.Duration
	closeCh   chan struct{}
	closeOnce sync.Once
}

var ErrNoMirrorNodes = errors.New("no live mirror nodes available")

func newNodePool(baseURLs []string, testFunc func(string) bool, retestInterval time.Duration) *nodePool {
	pool := &nodePool{
		alive:     append([]string(nil), baseURLs...),
		testFunc:  testFunc,
		retestInt: retestInterval,
		closeCh:   make(chan struct{}),
	}

	if retestInterval > 0 {
		go pool.startDeadNodeTester()
	}

	return pool
}

func (p *nodePool) get() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.alive) == 0 {
		return "", ErrNoMirrorNodes
	}

	p.idx++
	if p.idx >= len(p.alive) {
		p.idx = 0
	}

	return p.alive[p.idx], nil
}

// markDead parks a node after a failed request so subsequent calls rotate past it.
func (p *nodePool) markDead(baseURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, node := range p.alive {
		if node == baseURL {
			p.alive = append(p.alive[:i], p.alive[i+1:]...)
			p.dead = append(p.dead, node)
			return
		}
	}
}

func (p *nodePool) startDeadNodeTester() {
	ticker := time.NewTicker(p.retestInt)
	defer ticker.Stop()

	for {
		select {
		case <-p.closeCh:
			return
		case <-ticker.C:
			p.mu.Lock()
			dead := append([]string(nil), p.dead...)
			p.mu.Unlock()

			var revived []string
			for _, node := range dead {
				if p.testFunc(node) {
					revived = append(revived, node)
				}
			}

			if len(revived) == 0 {
				continue
			}

			p.mu.Lock()
			for _, node := range revived {
				for i, d := range p.dead {
					if d == node {
						p.dead = append(p.dead[:i], p.dead[i+1:]...)
						break
					}
				}
				p.alive = append(p.alive, node)
			}
			p.mu.Unlock()
		}
	}
}

func (p *nodePool) close() {
	p.closeOnce.Do(func() {
		close(p.closeCh)
	})
}

// defaultLivenessTest probes the mirror node's network endpoint with a short deadline.
func defaultLivenessTest(client *http.Client) func(baseURL string) bool {
	return func(baseURL string) bool {
		ctx, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFunc()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/network/nodes?limit=1", nil)
		if err != nil {
			return false
		}

		res, err := client.Do(req)
		if err != nil {
			return false
		}
		defer res.Body.Close()

		return res.StatusCode >= 200 && res.StatusCode < 300
	}
}
