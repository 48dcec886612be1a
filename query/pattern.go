package query

import (
	"trible.dev/space/id"
	"trible.dev/space/tribleset"
)

// AttributePattern is one `attr: ?v` (or `attr: value`) clause inside an
// EntityPattern.
type AttributePattern struct {
	Attribute id.Id
	Value     Field
}

// EntityPattern is one `{ ?e @ attr1: ?v1, attr2: ?v2 }` clause of a
// pattern: an entity field plus the attribute/value clauses that must
// hold of it.
type EntityPattern struct {
	Entity     Field
	Attributes []AttributePattern
}

func flattenClauses(entities []EntityPattern) []TriplePattern {
	var out []TriplePattern
	for _, ep := range entities {
		for _, ap := range ep.Attributes {
			out = append(out, TriplePattern{E: ep.Entity, A: ConstID(ap.Attribute), V: ap.Value})
		}
	}
	return out
}

// Pattern lowers entities into a conjunction of trible-pattern
// constraints over set's indexes, binding each entity field to an
// entity id and each attribute's value field to that attribute's value.
func Pattern(set tribleset.Set, entities []EntityPattern) Constraint {
	clauses := flattenClauses(entities)
	members := make([]Constraint, len(clauses))
	for i, c := range clauses {
		c.Set = set
		members[i] = c
	}
	return And{Members: members}
}

// PatternChanges lowers entities the same way Pattern does, but
// requires that at least one of the pattern's triples came from delta
// rather than merely being present in current, so only results that
// exist because of the new tribles are returned. Implemented as a union
// with one disjunct per triple position: that triple is matched against
// delta while every other triple in the same disjunct is matched
// against current. Every disjunct shares the same clause shape and
// hence the same variable set, satisfying Or's requirement that all
// members constrain the same variables.
func PatternChanges(current, delta tribleset.Set, entities []EntityPattern) Constraint {
	clauses := flattenClauses(entities)
	if len(clauses) == 0 {
		return And{}
	}
	variants := make([]Constraint, len(clauses))
	for i := range clauses {
		members := make([]Constraint, len(clauses))
		for j, c := range clauses {
			if j == i {
				c.Set = delta
			} else {
				c.Set = current
			}
			members[j] = c
		}
		variants[i] = And{Members: members}
	}
	return Or{Members: variants}
}
