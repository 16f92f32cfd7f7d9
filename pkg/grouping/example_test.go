package grouping_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/gridkit/pkg/grouping"
)

func employees() []*grouping.Row {
	return []*grouping.Row{
		grouping.NewRow("ada", map[string]any{"dept": "Eng", "team": "core"}),
		grouping.NewRow("bob", map[string]any{"dept": "Eng", "team": "web"}),
		grouping.NewRow("cyd", map[string]any{"dept": "Ops", "team": "core"}),
	}
}

func printItems(items []grouping.Item) {
	for _, it := range items {
		indent := strings.Repeat("  ", it.Level)
		switch it.Kind {
		case grouping.KindHeader:
			fmt.Println(indent + it.Header)
		case grouping.KindRow:
			fmt.Println(indent + "  - " + it.Row.ID)
		}
	}
}

func ExampleTree_basic() {
	// Group by department, then by team
	tree, _ := grouping.New(grouping.Config{
		Levels: []grouping.Level{grouping.ByField("dept"), grouping.ByField("team")},
	})
	tree.Rebuild(employees())

	printItems(tree.Flatten())
	// Output:
	// Eng (2 items)
	//   core (1 item)
	//     - ada
	//   web (1 item)
	//     - bob
	// Ops (1 item)
	//   core (1 item)
	//     - cyd
}

func ExampleTree_Update() {
	tree, _ := grouping.New(grouping.Config{
		Levels: []grouping.Level{grouping.ByField("dept")},
	})
	rows := employees()
	tree.Rebuild(rows)

	// Moving cyd to Eng empties Ops, which is removed
	moved := tree.Update(rows[2], map[string]any{"dept": "Eng"})
	fmt.Println("Moved:", moved)
	fmt.Println("Groups:", tree.GroupCount())
	printItems(tree.Flatten())
	// Output:
	// Moved: true
	// Groups: 1
	// Eng (3 items)
	//   - ada
	//   - bob
	//   - cyd
}

func ExampleTree_Toggle() {
	tree, _ := grouping.New(grouping.Config{
		Levels: []grouping.Level{grouping.ByField("dept")},
		Headers: []grouping.HeaderFunc{func(key any, count int, _ []*grouping.Row) string {
			return fmt.Sprintf("[%v] %d", key, count)
		}},
	})
	tree.Rebuild(employees())

	_ = tree.Toggle("Eng")
	printItems(tree.Flatten())
	// Output:
	// [Eng] 2
	// [Ops] 1
	//   - cyd
}

func ExampleComputed() {
	// Only groups with more than one row start open
	tree, _ := grouping.New(grouping.Config{
		Levels: []grouping.Level{grouping.ByField("team")},
		StartOpen: []grouping.Visibility{grouping.Computed(func(_ any, count int, _ []*grouping.Row) bool {
			return count > 1
		})},
	})
	tree.Rebuild(employees())

	for _, g := range tree.Groups() {
		fmt.Println(g.Key(), g.Visible())
	}
	// Output:
	// core true
	// web false
}
