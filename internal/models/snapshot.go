package models

import (
	"encoding/json"
)

// Warehouse is the snapshot view merging the warehouse_counts setting with
// the inventory family into one object.
type Warehouse struct {
	OpenCellSets   FlexFloat         `json:"openCellSets"`
	ClosedCellSets FlexFloat         `json:"closedCellSets"`
	Items          []json.RawMessage `json:"items"`
}

// Snapshot is the complete serialized state of one tenant used for
// bidirectional sync. On the wire, opaque settings are spread at the top
// level next to the named sections; the codec folds them back apart.
//
// A nil collection slice means the family was absent from the document and
// must be skipped on push; an empty non-nil slice is a present, empty family
// and wipes the tenant-side records.
type Snapshot struct {
	Settings       map[string]json.RawMessage
	Warehouse      *Warehouse
	LifetimeUsage  *LifetimeUsage
	Equipment      []json.RawMessage
	SavedEstimates []json.RawMessage
	Customers      []json.RawMessage
	MaterialLogs   []json.RawMessage
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Settings)+6)
	for k, v := range s.Settings {
		out[k] = v
	}
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}
	if s.Warehouse != nil {
		if err := put("warehouse", s.Warehouse); err != nil {
			return nil, err
		}
	}
	if s.LifetimeUsage != nil {
		if err := put("lifetimeUsage", s.LifetimeUsage); err != nil {
			return nil, err
		}
	}
	if s.Equipment != nil {
		if err := put("equipment", s.Equipment); err != nil {
			return nil, err
		}
	}
	if s.SavedEstimates != nil {
		if err := put("savedEstimates", s.SavedEstimates); err != nil {
			return nil, err
		}
	}
	if s.Customers != nil {
		if err := put("customers", s.Customers); err != nil {
			return nil, err
		}
	}
	if s.MaterialLogs != nil {
		if err := put("materialLogs", s.MaterialLogs); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*s = Snapshot{Settings: make(map[string]json.RawMessage)}
	for key, raw := range m {
		switch key {
		case "warehouse":
			var w Warehouse
			if err := json.Unmarshal(raw, &w); err == nil {
				s.Warehouse = &w
			}
		case "lifetimeUsage":
			var u LifetimeUsage
			if err := json.Unmarshal(raw, &u); err == nil {
				s.LifetimeUsage = &u
			}
		case "equipment":
			_ = json.Unmarshal(raw, &s.Equipment)
		case "savedEstimates":
			_ = json.Unmarshal(raw, &s.SavedEstimates)
		case "customers":
			_ = json.Unmarshal(raw, &s.Customers)
		case "materialLogs":
			_ = json.Unmarshal(raw, &s.MaterialLogs)
		default:
			s.Settings[key] = raw
		}
	}
	return nil
}
