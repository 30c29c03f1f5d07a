package skillgraph_test

import (
	"context"
	"fmt"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/pkg/dsl"
	"github.com/aretw0/skillgraph/pkg/nodes"
)

func Example() {
	eng := skillgraph.New()

	b := dsl.New(eng.Registry()).ID("example").Param("Greeting", "string", "")
	b.Add("start", nodes.TypeEntry).Then("hold")
	b.Add("hold", nodes.TypeWait).Field("frames", 3).Then("store")
	b.Add("text", nodes.TypeConstant).
		Field("value_type", "string").
		Field("value", "hello").
		Pipe(nodes.ConstantValueField, "store", nodes.SetVariableValueField)
	b.Add("store", nodes.TypeSetVariable).Param("Greeting")

	g, err := b.Build()
	if err != nil {
		fmt.Println("build:", err)
		return
	}

	skill, err := eng.Run(context.Background(), g, skillgraph.RunOptions{MaxTicks: 10})
	if err != nil {
		fmt.Println("run:", err)
		return
	}

	greeting, _ := g.ParameterValue("Greeting")
	fmt.Println(skill.State(), skill.Frame(), greeting)
	// Output: finished 3 hello
}
