package sample

type Counter struct{ n int }

func (c *Counter) Add(x int) int {
	total := c.n + x
	c.n = total
	return total
}

func Unchanged(a int) int {
	return a * 2
}

func Scale(v []int, k int) {
	for i := range v {
		v[i] = v[i] * k
	}
}

func Removed() {}
