package camguard

import "time"

// Op is the closed set of filter operators the stores understand. Each store
// compiles an Op through an explicit dispatch table; unknown fields or
// operators are rejected rather than passed through.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	// OpLike is a case-insensitive substring match on text fields.
	OpLike
	// OpIn matches set membership of a scalar field.
	OpIn
	OpIsNull
	OpNotNull
	// OpContains matches array fields containing every listed element.
	OpContains
)

// FieldRef names a filterable or sortable field. Via names a single
// relationship hop when the field lives one join away from the base entity
// (for example incidents filtered by the owning camera's cam_server_id);
// each store resolves the hop explicitly.
type FieldRef struct {
	Name string
	Via  string
}

// Key is the stable lookup form of the reference, "via.name" or "name".
func (f FieldRef) Key() string {
	if f.Via != "" {
		return f.Via + "." + f.Name
	}
	return f.Name
}

// Filter is one predicate of a list query.
type Filter struct {
	Field FieldRef
	Op    Op
	Value any
}

// Order is one order-by expression.
type Order struct {
	Field FieldRef
	Desc  bool
}

// ListQuery bounds and filters a collection read. The stores always exclude
// soft-deleted rows unless IncludeDeleted is set. UpdatedBefore matches rows
// updated at or before the cursor; UpdatedAfter matches rows updated strictly
// after it — the pair drives the incremental feed protocol.
type ListQuery struct {
	Limit          int
	Offset         int
	OrderBy        []Order
	Filters        []Filter
	UpdatedBefore  *time.Time
	UpdatedAfter   *time.Time
	IncludeDeleted bool
}
