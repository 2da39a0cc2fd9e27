package swing

// counter counts true values over a fixed trailing window in O(1) per push
type counter struct {
	buf    []bool
	pos    int
	filled int
	count  int
}

func newCounter(size int) *counter {
	return &counter{buf: make([]bool, size)}
}

func (c *counter) push(v bool) {
	if c.filled == len(c.buf) {
		if c.buf[c.pos] {
			c.count--
		}
	} else {
		c.filled++
	}
	c.buf[c.pos] = v
	if v {
		c.count++
	}
	c.pos = (c.pos + 1) % len(c.buf)
}

// atLeast is false until the window has filled
func (c *counter) atLeast(k int) bool {
	return c.filled == len(c.buf) && c.count >= k
}
