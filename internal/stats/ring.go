package stats

// ring is a fixed window of the newest ringSize samples.
type ring struct {
	samples [ringSize]int64
	next    int // slot the next push writes
	n       int // samples held, at most ringSize
}

func (r *ring) push(v int64) {
	r.samples[r.next] = v
	r.next = (r.next + 1) % ringSize
	r.n = min(r.n+1, ringSize)
}

// at returns the i-th newest sample; at(0) is the latest push.
func (r *ring) at(i int) int64 {
	return r.samples[(r.next-1-i+ringSize)%ringSize]
}

func (r *ring) mean(n int) float64 {
	n = min(n, r.n)
	if n <= 0 {
		return 0
	}
	var sum int64
	for i := range n {
		sum += r.at(i)
	}
	return float64(sum) / float64(n)
}

// recent returns up to n samples, oldest first.
func (r *ring) recent(n int) []float64 {
	n = max(min(n, r.n), 0)
	out := make([]float64, n)
	for i := range n {
		out[n-1-i] = float64(r.at(i))
	}
	return out
}
