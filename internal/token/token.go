package token

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a token identifier as it arrives on the wire: a JSON number or a
// JSON string. Identity is strict — the number 1 and the string "1" are
// different IDs. The zero ID means "no id was present".
type ID struct {
	str   string
	num   json.Number
	isStr bool
}

func StringID(s string) ID { return ID{str: s, isStr: true} }

func NumberID(n int64) ID { return ID{num: json.Number(strconv.FormatInt(n, 10))} }

// NewID mints a creator-side id from the current wall clock, millisecond
// resolution. Two tokens created in the same millisecond by the same client
// would collide, which the store's duplicate check turns into a no-op.
func NewID() ID {
	return NumberID(time.Now().UnixMilli())
}

// Defined reports whether an id was present at all. An empty string id
// counts as defined.
func (id ID) Defined() bool { return id.isStr || id.num != "" }

func (id ID) String() string {
	if id.isStr {
		return id.str
	}
	return id.num.String()
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.isStr {
		return json.Marshal(id.str)
	}
	if id.num == "" {
		return []byte("null"), nil
	}
	return []byte(id.num), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("token id: empty input")
	}
	if string(data) == "null" {
		*id = ID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{str: s, isStr: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("token id must be a number or string: %w", err)
	}
	*id = ID{num: n}
	return nil
}

// Token is the unit of synchronized battle-map state: a positioned, sized
// image reference. Position and size are map-space pixels. Fields beyond
// the known set are carried opaquely so newer clients can round-trip
// attributes this server does not understand.
type Token struct {
	ID     ID      `json:"id"`
	Src    string  `json:"src"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	extra map[string]json.RawMessage
}

// Valid is the admission predicate for the store: an id must be present and
// src must be a non-empty string. Numeric fields are deliberately not
// checked; absent ones ride through as zero.
func (t Token) Valid() bool {
	return t.ID.Defined() && t.Src != ""
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Token{}
	for key, val := range raw {
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(val, &t.ID)
		case "src":
			err = json.Unmarshal(val, &t.Src)
		case "x":
			err = json.Unmarshal(val, &t.X)
		case "y":
			err = json.Unmarshal(val, &t.Y)
		case "width":
			err = json.Unmarshal(val, &t.Width)
		case "height":
			err = json.Unmarshal(val, &t.Height)
		default:
			if t.extra == nil {
				t.extra = make(map[string]json.RawMessage)
			}
			t.extra[key] = val
		}
		if err != nil {
			return fmt.Errorf("token field %q: %w", key, err)
		}
	}
	return nil
}

func (t Token) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.extra)+6)
	for key, val := range t.extra {
		out[key] = val
	}
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = b
		return nil
	}
	if err := put("id", t.ID); err != nil {
		return nil, err
	}
	if err := put("src", t.Src); err != nil {
		return nil, err
	}
	for key, v := range map[string]float64{"x": t.X, "y": t.Y, "width": t.Width, "height": t.Height} {
		if err := put(key, v); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}
