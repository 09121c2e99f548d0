package surface

import (
	"encoding/json"
	"fmt"
)

// Snapshot is an opaque serialized surface state. Background pixels are not
// included; they are referenced by key.
type Snapshot []byte

const snapshotVersion = 1

type document struct {
	Version    int         `json:"version"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Background *Background `json:"background,omitempty"`
	Objects    []entry     `json:"objects"`
}

type entry struct {
	Type   Kind            `json:"type"`
	Object json.RawMessage `json:"object"`
}

// Serialize captures background placement and objects in paint order.
func (s *Surface) Serialize() (Snapshot, error) {
	doc := document{
		Version:    snapshotVersion,
		Width:      s.width,
		Height:     s.height,
		Background: s.background,
		Objects:    make([]entry, 0, len(s.objects)),
	}
	for _, o := range s.objects {
		raw, err := json.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", o.ObjectID(), err)
		}
		doc.Objects = append(doc.Objects, entry{Type: o.Kind(), Object: raw})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return Snapshot(data), nil
}

// BackgroundKey returns the asset key the snapshot's background refers to.
// It reports false for a snapshot without a background.
func (snap Snapshot) BackgroundKey() (string, bool) {
	var doc struct {
		Background *struct {
			Key string `json:"key"`
		} `json:"background"`
	}
	if err := json.Unmarshal(snap, &doc); err != nil || doc.Background == nil {
		return "", false
	}
	return doc.Background.Key, true
}

// Restore replaces the surface content with snap. The selection is cleared.
// On error the surface is unchanged.
func (s *Surface) Restore(snap Snapshot) error {
	var doc document
	if err := json.Unmarshal(snap, &doc); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if doc.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}
	if doc.Width != s.width || doc.Height != s.height {
		return fmt.Errorf("snapshot is %dx%d, surface is %dx%d", doc.Width, doc.Height, s.width, s.height)
	}
	if doc.Background != nil {
		if _, ok := s.assets[doc.Background.Key]; !ok {
			return fmt.Errorf("background %s: %w", doc.Background.Key, ErrUnknownBackground)
		}
	}
	objects := make([]Object, 0, len(doc.Objects))
	for i, e := range doc.Objects {
		obj, err := decodeObject(e)
		if err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
		objects = append(objects, obj)
	}
	s.background = doc.Background
	s.objects = objects
	s.selected = nil
	return nil
}

func decodeObject(e entry) (Object, error) {
	var obj Object
	switch e.Type {
	case KindRect:
		obj = &Rect{}
	case KindCircle:
		obj = &Circle{}
	case KindLine:
		obj = &Line{}
	case KindArrow:
		obj = &Arrow{}
	case KindText:
		obj = &Text{}
	default:
		return nil, fmt.Errorf("unknown object type %q", e.Type)
	}
	if err := json.Unmarshal(e.Object, obj); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", e.Type, err)
	}
	return obj, nil
}
