package osc

import (
	"github.com/etresoft/libosmium/internal/middle"
	"github.com/etresoft/libosmium/internal/model"
	"github.com/etresoft/libosmium/internal/nodeindex"
)

// ToModelNode converts an OSC-decoded node to model.Node. RawNode's Lat/Lon
// are already scaled by middle.ScaleCoord, the same degrees*1e7 convention
// model.Location uses, so no rescaling is needed.
func ToModelNode(n *middle.RawNode) model.Node {
	return model.Node{
		ID:       n.ID,
		Location: model.Location{X: int64(n.Lon), Y: int64(n.Lat)},
		Tags:     n.Tags,
		Meta: model.Meta{
			Version:   n.Version,
			Changeset: n.Changeset,
			Timestamp: n.Timestamp,
			User:      n.User,
			UID:       n.UID,
			Visible:   true,
		},
	}
}

// ToModelWay converts an OSC-decoded way to model.Way, resolving each node
// reference's coordinates against idx — the persistent node index that
// earlier replication updates filled and this update has just refreshed
// with its own node creates/modifies. A reference idx has no entry for (a node outside
// the replication window, never indexed) is left with a zero Location,
// matching the PBF source's convention for unresolved node refs.
func ToModelWay(w *middle.RawWay, idx *nodeindex.MmapIndex) model.Way {
	nodes := make([]model.NodeRef, len(w.Nodes))
	for i, ref := range w.Nodes {
		nr := model.NodeRef{Ref: ref}
		if lat, lon, ok := idx.Get(ref); ok {
			nr.Location = model.Location{X: int64(lon * 1e7), Y: int64(lat * 1e7)}
		}
		nodes[i] = nr
	}
	return model.Way{
		ID:    w.ID,
		Nodes: nodes,
		Tags:  w.Tags,
		Meta: model.Meta{
			Version:   w.Version,
			Changeset: w.Changeset,
			Timestamp: w.Timestamp,
			User:      w.User,
			UID:       w.UID,
			Visible:   true,
		},
	}
}

// ToModelRelation converts an OSC-decoded relation to model.Relation.
func ToModelRelation(r *middle.RawRelation) model.Relation {
	members := make([]model.Member, len(r.Members))
	for i, m := range r.Members {
		var kind model.ItemKind
		switch m.Type {
		case "n":
			kind = model.KindNode
		case "w":
			kind = model.KindWay
		case "r":
			kind = model.KindRelation
		}
		members[i] = model.Member{Kind: kind, Ref: m.Ref, Role: m.Role}
	}
	return model.Relation{
		ID:      r.ID,
		Members: members,
		Tags:    r.Tags,
		Meta: model.Meta{
			Version:   r.Version,
			Changeset: r.Changeset,
			Timestamp: r.Timestamp,
			User:      r.User,
			UID:       r.UID,
			Visible:   true,
		},
	}
}
