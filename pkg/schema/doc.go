// Package schema declares props models from definition documents and
// describes declared models back.
//
// Definitions can be written in YAML or JSON (comments and trailing commas
// allowed):
//
//	models:
//	  - name: Inner
//	    fields:
//	      - {name: a, type: int, required: true}
//	  - name: Outer
//	    fields:
//	      - {name: inst, type: Inner}
//	      - {name: tags, type: "[string]"}
//	      - {name: either, type: "Inner|string"}
//
// and declared into a registry:
//
//	doc, err := schema.LoadFile("models.yaml")
//	if err != nil {
//	    // Handle error
//	}
//	models, err := schema.Declare(reg, doc)
//
// Type expressions are parsed by ParseType. Model names refer to other models
// of the same document or to models already present in the registry.
//
// Describe and DescribeRegistry go the other way, and OpenAPI renders a
// registry as OpenAPI component schemas.
package schema
