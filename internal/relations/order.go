package relations

import (
	"fmt"

	"github.com/etresoft/libosmium/internal/model"
)

// OrderError reports an input stream that did not respect the ordering
// guarantee: objects grouped by kind, ascending id within each kind. It
// is returned, not panicked, so the driver can decide whether to abort.
type OrderError struct {
	Kind, PrevKind model.ItemKind
	ID, PrevID     int64
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("relations: out-of-order input: %s %d follows %s %d",
		e.Kind, e.ID, e.PrevKind, e.PrevID)
}

// OrderCheck wraps an object stream and rejects it the moment it isn't
// grouped by kind and ascending id within kind (mirroring
// SecondPassHandlerWithCheckOrder). It holds no reference to any decoder
// so it works identically whether fed from PBF, OSC, or a synthetic test
// stream. The zero value is ready to use.
type OrderCheck struct {
	have bool
	kind model.ItemKind
	id   int64
}

// Check verifies that (kind, id) may legally follow whatever was last
// checked. On success it records (kind, id) as the new high-water mark.
func (o *OrderCheck) Check(kind model.ItemKind, id int64) error {
	if o.have {
		if kind < o.kind || (kind == o.kind && id <= o.id) {
			return &OrderError{Kind: kind, PrevKind: o.kind, ID: id, PrevID: o.id}
		}
	}
	o.kind, o.id, o.have = kind, id, true
	return nil
}

// Reset clears the high-water mark, e.g. between independent passes.
func (o *OrderCheck) Reset() {
	*o = OrderCheck{}
}
