package ids

import "testing"

func TestNewGeneratorRejectsBadNode(t *testing.T) {
	for _, node := range []int64{-1, 1024} {
		if _, err := NewGenerator(node); err == nil {
			t.Errorf("NewGenerator(%d) expected error, got nil", node)
		}
	}
}

func TestNextStrictlyIncreasing(t *testing.T) {
	gen, err := NewGenerator(0)
	if err != nil {
		t.Fatalf("NewGenerator(0) unexpected error: %v", err)
	}

	prev := gen.Next()
	for i := 0; i < 10000; i++ {
		id := gen.Next()
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestNextUniqueAcrossGoroutines(t *testing.T) {
	gen, err := NewGenerator(1)
	if err != nil {
		t.Fatalf("NewGenerator(1) unexpected error: %v", err)
	}

	const perWorker = 2000
	const workers = 4

	results := make(chan int64, perWorker*workers)
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			for i := 0; i < perWorker; i++ {
				results <- gen.Next()
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}
	close(results)

	seen := make(map[int64]bool, perWorker*workers)
	for id := range results {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
