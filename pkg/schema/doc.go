// Package schema is the runtime type-tag system for ports and parameters.
//
// Every port and every parameter carries a Type. Types name themselves
// ("string", "int", "float", "bool", "vector2", "vector3", "[T]", "any",
// "control"), validate values, and supply the default a port is reset to when
// its last edge is removed. Ports connect only when their type names are
// identical:
//
//	schema.Identical(schema.Int(), schema.Int())   // true
//	schema.Identical(schema.Int(), schema.Float()) // false, no widening
//
// Values decoded from JSON or YAML are normalized with Coerce so that a saved
// and reloaded graph holds the same Go values it started with.
//
// A Schema maps field names to types and validates the persisted fields of a
// node record:
//
//	s, _ := schema.ParseTypeMap(map[string]string{"frames": "int"})
//	err := schema.Validate(s, map[string]any{"frames": 3})
package schema
