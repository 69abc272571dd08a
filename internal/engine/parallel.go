package engine

import "sync"

// forEachActive applies fn to every non-refractory neuron. With
// workers configured and enough neurons it fans out across fixed
// chunks; fn must only touch the neuron it is handed.
func (s *Stepper) forEachActive(now float64, fn func(*neuronState)) {
	neurons := s.net.neurons
	workers := s.cfg.Workers
	if workers <= 1 || len(neurons) < 2*workers {
		for _, n := range neurons {
			if n.active(now) {
				fn(n)
			}
		}
		return
	}

	chunk := (len(neurons) + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < len(neurons); lo += chunk {
		hi := lo + chunk
		if hi > len(neurons) {
			hi = len(neurons)
		}
		wg.Add(1)
		go func(part []*neuronState) {
			defer wg.Done()
			for _, n := range part {
				if n.active(now) {
					fn(n)
				}
			}
		}(neurons[lo:hi])
	}
	wg.Wait()
}
