package props_test

import (
	"fmt"

	"github.com/aretw0/props"
)

func Example() {
	inner := props.MustDeclare("Inner", props.MustField("a", props.Integer()))
	outer := props.MustDeclare("Outer", props.MustField("inst", props.InstanceOf(inner)))

	inst := outer.MustNew(map[string]any{
		"inst": inner.MustNew(map[string]any{"a": 10}),
	})

	tagged, _ := inst.Serialize()
	fmt.Println(tagged)

	plain, _ := inst.Serialize(props.WithoutClass())
	fmt.Println(plain)

	// Untrusted input never selects a concrete model.
	obj, _ := props.Deserialize(tagged)
	fmt.Printf("%T\n", obj)

	obj, _ = props.Deserialize(tagged, props.Trusted())
	fmt.Println(obj)

	// The caller may always name the model explicitly.
	back, _ := outer.Deserialize(plain)
	fmt.Println(back.Equal(inst))

	// Output:
	// map[__class__:Outer inst:map[__class__:Inner a:10]]
	// map[inst:map[a:10]]
	// *props.Unresolved
	// Outer(inst=Inner(a=10))
	// true
}

func ExampleWarningRecorder() {
	var rec props.WarningRecorder
	codec := props.NewCodec(
		props.WithRegistry(props.NewRegistry()),
		props.WithWarningHandler(rec.Record),
	)

	_, _ = codec.Deserialize(map[string]any{"__class__": "Secret", "x": 1})
	_, _ = codec.Deserialize(map[string]any{"__class__": "Secret"}, props.Trusted())

	for _, w := range rec.Warnings() {
		fmt.Println(w.Reason, w)
	}

	// Output:
	// untrusted class "Secret" ignored for untrusted input; deserializing generically
	// unknown_class class "Secret" is not registered; deserializing generically
}

func ExampleWithSerializer() {
	reg := props.NewRegistry()
	reverse := func(s string) string {
		r := []rune(s)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return string(r)
	}

	m, _ := props.DeclareIn(reg, "Secret",
		props.MustField("word", props.String(),
			props.WithSerializer(reverse),
			props.WithDeserializer(reverse),
		),
	)
	codec := props.NewCodec(props.WithRegistry(reg))

	data, _ := codec.Serialize(m.MustNew(map[string]any{"word": "abcd"}), props.WithoutClass())
	fmt.Println(data)

	inst, _ := codec.DeserializeAs(m, data)
	fmt.Println(inst)

	// Output:
	// map[word:dcba]
	// Secret(word=abcd)
}
