package normalize

import (
	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

// ExtractRecords pulls row-like records out of a legacy (non-sectioned) response.
//
// Lists are unwrapped item by item, including n8n {"json": ...} envelopes and
// their "sources" payloads. Objects are unwrapped through sources, data and
// results, then through any list-of-objects or map-of-objects member. An object
// matching none of these is returned as a single record. Null yields nothing.
func ExtractRecords(v jsonval.Value) []jsonval.Value {
	switch v.Kind() {
	case jsonval.Null:
		return nil
	case jsonval.Array:
		return recordsFromList(v)
	case jsonval.Object:
		return recordsFromObject(v)
	}
	return []jsonval.Value{v}
}

func recordsFromList(v jsonval.Value) []jsonval.Value {
	var records []jsonval.Value
	for _, item := range v.Items() {
		switch {
		case item.IsObject():
			inner, ok := item.Get("json")
			if !ok {
				records = append(records, item)
				continue
			}
			switch {
			case inner.IsArray():
				records = append(records, inner.Items()...)
			case inner.IsObject() && inner.Has("sources"):
				sources, _ := inner.Get("sources")
				records = append(records, unwrap(sources)...)
			case !inner.IsNull():
				records = append(records, inner)
			}
		case item.IsArray():
			records = append(records, item.Items()...)
		case !item.IsNull():
			records = append(records, item)
		}
	}
	return records
}

func recordsFromObject(v jsonval.Value) []jsonval.Value {
	for _, key := range []string{"sources", "data", "results"} {
		if inner, ok := v.Get(key); ok {
			return unwrap(inner)
		}
	}

	var records []jsonval.Value
	for _, m := range v.Members() {
		switch {
		case m.Value.IsArray() && allObjects(m.Value.Items()):
			records = append(records, m.Value.Items()...)
		case m.Value.IsObject() && allObjects(memberValues(m.Value)):
			records = append(records, memberValues(m.Value)...)
		}
	}
	if len(records) == 0 {
		return []jsonval.Value{v}
	}
	return records
}

// unwrap returns list items, or object values in key order (an index->row
// map), or the scalar itself.
func unwrap(v jsonval.Value) []jsonval.Value {
	switch v.Kind() {
	case jsonval.Null:
		return nil
	case jsonval.Array:
		return v.Items()
	case jsonval.Object:
		return memberValues(v)
	}
	return []jsonval.Value{v}
}

func memberValues(v jsonval.Value) []jsonval.Value {
	members := v.Members()
	values := make([]jsonval.Value, 0, len(members))
	for _, m := range members {
		values = append(values, m.Value)
	}
	return values
}

func allObjects(items []jsonval.Value) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.IsObject() {
			return false
		}
	}
	return true
}
