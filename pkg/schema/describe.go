package schema

import (
	"github.com/aretw0/props"
)

// Describe renders a model back into its definition. Inherited fields that the
// model does not redefine are left to the parent.
func Describe(m *props.Model) ModelDef {
	def := ModelDef{Name: m.Name(), Fields: []FieldDef{}}

	parent := m.Parent()
	if parent != nil {
		def.Extends = parent.Name()
	}

	for _, f := range m.Fields() {
		if parent != nil {
			if pf, ok := parent.Field(f.Name()); ok && pf == f {
				continue
			}
		}
		fd := FieldDef{
			Name:     f.Name(),
			Type:     f.Type().Name(),
			Required: f.IsRequired(),
			Doc:      f.Doc(),
		}
		if v, ok := f.Default(); ok {
			fd.Default = v
		}
		def.Fields = append(def.Fields, fd)
	}
	return def
}

// DescribeRegistry describes every model registered in reg, sorted by name.
func DescribeRegistry(reg *props.ModelRegistry) *Document {
	doc := &Document{Models: []ModelDef{}}
	for _, name := range reg.Names() {
		m, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		doc.Models = append(doc.Models, Describe(m))
	}
	return doc
}
