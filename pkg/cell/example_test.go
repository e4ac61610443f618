package cell_test

import (
	"fmt"

	"github.com/mesh-intelligence/cellref/pkg/cell"
)

func Example() {
	c1 := cell.New[uint8](2)
	c1.Update(func(x *uint8) { *x += 3 })
	fmt.Println(c1.Get())

	c2 := cell.New([]int{1, 2, 3})
	c2.Update(func(v *[]int) { *v = append(*v, 4) })
	fmt.Println(cell.With(c2, func(v []int) int { return len(v) }))
	fmt.Println(cell.CloneSlice(c2))
	// Output:
	// 5
	// 4
	// [1 2 3 4]
}

func ExampleTryWith() {
	c := cell.New(1)
	c.Inspect(func(int) {
		_, err := cell.TryWith(c, func(v int) int { return v })
		fmt.Println(err)
	})
	// Output:
	// cell: With: cell is already borrowed
}

func ExampleCell_Swap() {
	a, b := cell.New("a"), cell.New("b")
	a.Swap(b)
	fmt.Println(a, b)
	// Output:
	// Cell{b} Cell{a}
}
