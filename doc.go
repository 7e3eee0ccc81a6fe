/*
Package props defines typed, nested data models whose instances convert losslessly to and from plain mappings (map[string]any holding strings, numbers, booleans, nested mappings and sequences).

# Concept

A Model is a named, ordered list of Fields. Each Field has a Type that knows how to validate a single value and how to convert it to and from its plain form. The Codec only orchestrates those calls: it walks an instance graph field by field, lets per-field hooks override the default conversion, and decides which concrete model to reconstruct when reading data back.

# Trust Boundary

Serialized mappings carry the registered model name under the reserved "__class__" key, at every nesting level. That tag is untrusted input. Generic deserialization only honours it when the caller passes Trusted() and the name is registered; in every other case the result is an *Unresolved holding the raw fields, and exactly one Warning is emitted. Deserializing through a specific model (Model.Deserialize, Codec.DeserializeAs) ignores the tag altogether.

# Key Features

  - Recursive conversion across nested models, lists and unions.
  - Unset fields are omitted from the output, never written as null.
  - Serializer/deserializer hooks, checked for callability when the field is defined.
  - Registries that can be isolated per codec.
  - Lifecycle hooks for metrics and structured logging through log/slog.

# Usage

	inner := props.MustDeclare("Inner", props.MustField("a", props.Integer()))
	outer := props.MustDeclare("Outer", props.MustField("inst", props.InstanceOf(inner)))

	inst := outer.MustNew(map[string]any{
		"inst": inner.MustNew(map[string]any{"a": 10}),
	})

	data, _ := inst.Serialize()
	// map[__class__:Outer inst:map[__class__:Inner a:10]]

	obj, _ := props.Deserialize(data)                  // *props.Unresolved + warning
	obj, _ = props.Deserialize(data, props.Trusted()) // *props.Instance of Outer
	back, _ := outer.Deserialize(data)                 // always Outer
*/
package props
