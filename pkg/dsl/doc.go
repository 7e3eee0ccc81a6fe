/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically writing props model definitions.

It builds the same definitions as a YAML or JSON definition file, using a fluent builder
instead of an external file. This is particularly useful for generated definitions,
unit testing, and leveraging IDE autocompletion.

Example usage:

	b := dsl.New()

	b.Model("Inner").
		Doc("The inner model.").
		Field("a", "int", dsl.Required())

	b.Model("Outer").
		Field("inst", "Inner").
		Field("tags", "[string]", dsl.Default([]any{}))

	models, err := b.Declare(reg)

Build returns the definitions as an in-memory ports.DefinitionLoader instead.
*/
package dsl
