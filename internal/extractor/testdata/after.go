package sample

type Counter struct{ n int }

func (c *Counter) Add(x int) int {
	total := c.n + x
	if total > 100 {
		total = 100
	}
	c.n = total
	return total
}

func Unchanged(a int) int {
	return   a *
		2
}

func Scale(v []int, k int) {
	for i := range v {
		v[i] *= k
	}
}

func Added() {
	fmt.Println("added")
}
