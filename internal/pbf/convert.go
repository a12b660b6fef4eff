package pbf

import (
	"github.com/paulmach/osm"

	"github.com/etresoft/libosmium/internal/model"
)

// coordScale is the fixed-point scale model.Location expects (degrees *
// 1e7), matching middle.ScaleCoord.
const coordScale = 1e7

func scaleCoord(deg float64) int64 {
	return int64(deg * coordScale)
}

func tagsToMap(tags osm.Tags) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		m[tag.Key] = tag.Value
	}
	return m
}

func nodeMeta(n *osm.Node) model.Meta {
	return model.Meta{
		Version:   int32(n.Version),
		Changeset: int64(n.ChangesetID),
		Timestamp: n.Timestamp,
		User:      n.User,
		UID:       int32(n.UserID),
		Visible:   n.Visible,
	}
}

func wayMeta(w *osm.Way) model.Meta {
	return model.Meta{
		Version:   int32(w.Version),
		Changeset: int64(w.ChangesetID),
		Timestamp: w.Timestamp,
		User:      w.User,
		UID:       int32(w.UserID),
		Visible:   w.Visible,
	}
}

func relationMeta(r *osm.Relation) model.Meta {
	return model.Meta{
		Version:   int32(r.Version),
		Changeset: int64(r.ChangesetID),
		Timestamp: r.Timestamp,
		User:      r.User,
		UID:       int32(r.UserID),
		Visible:   r.Visible,
	}
}

func toModelNode(n *osm.Node, lat, lon float64) model.Node {
	return model.Node{
		ID:       int64(n.ID),
		Location: model.Location{X: scaleCoord(lon), Y: scaleCoord(lat)},
		Tags:     tagsToMap(n.Tags),
		Meta:     nodeMeta(n),
	}
}

func toModelRelation(r *osm.Relation) model.Relation {
	members := make([]model.Member, len(r.Members))
	for i, m := range r.Members {
		var kind model.ItemKind
		switch m.Type {
		case osm.TypeNode:
			kind = model.KindNode
		case osm.TypeWay:
			kind = model.KindWay
		case osm.TypeRelation:
			kind = model.KindRelation
		}
		members[i] = model.Member{Kind: kind, Ref: int64(m.Ref), Role: m.Role}
	}
	return model.Relation{
		ID:      int64(r.ID),
		Members: members,
		Tags:    tagsToMap(r.Tags),
		Meta:    relationMeta(r),
	}
}
