package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// MetaPrefix marks record metadata keys in serialized profiles. Field keys
// may not start with it.
const MetaPrefix = "_"

// Field is a single provenance-tagged attribute of a profile.
type Field struct {
	Key       string `json:"-"`
	Value     string `json:"value"`
	SourceURL string `json:"sourceUrl"`
	Tier      Tier   `json:"sourceTier"`
}

// FieldBag is an insertion-ordered set of fields keyed by display label.
// Once a key is present it is never replaced.
type FieldBag struct {
	keys   []string
	fields map[string]Field
}

// NewFieldBag creates an empty FieldBag.
func NewFieldBag() *FieldBag {
	return &FieldBag{fields: make(map[string]Field)}
}

// SetIfAbsent inserts f unless its key is already present, empty, or
// reserved. It reports whether the field was written.
func (b *FieldBag) SetIfAbsent(f Field) bool {
	if f.Key == "" || strings.HasPrefix(f.Key, MetaPrefix) {
		return false
	}
	if b.fields == nil {
		b.fields = make(map[string]Field)
	}
	if _, ok := b.fields[f.Key]; ok {
		return false
	}
	b.keys = append(b.keys, f.Key)
	b.fields[f.Key] = f
	return true
}

// Get returns the field stored under key.
func (b *FieldBag) Get(key string) (Field, bool) {
	if b == nil {
		return Field{}, false
	}
	f, ok := b.fields[key]
	return f, ok
}

// Value returns the value stored under key, or "".
func (b *FieldBag) Value(key string) string {
	f, _ := b.Get(key)
	return f.Value
}

// Has reports whether key is present.
func (b *FieldBag) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Len returns the number of fields.
func (b *FieldBag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Keys returns field keys in insertion order.
func (b *FieldBag) Keys() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

// Fields returns all fields in insertion order.
func (b *FieldBag) Fields() []Field {
	if b == nil {
		return nil
	}
	out := make([]Field, 0, len(b.keys))
	for _, k := range b.keys {
		out = append(out, b.fields[k])
	}
	return out
}

// CountTier returns how many fields came from tier t.
func (b *FieldBag) CountTier(t Tier) int {
	n := 0
	for _, f := range b.Fields() {
		if f.Tier == t {
			n++
		}
	}
	return n
}

// Missing returns the keys from want that are not present, in want order.
func (b *FieldBag) Missing(want []string) []string {
	var missing []string
	for _, k := range want {
		if !b.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// MarshalJSON writes the bag as an ordered object of key → field.
func (b *FieldBag) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := b.writeMembers(&buf, false); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeMembers writes "key":{...} pairs without braces so ProfileRecord can
// inline them next to its metadata keys.
func (b *FieldBag) writeMembers(buf *bytes.Buffer, leadingComma bool) error {
	for i, f := range b.Fields() {
		if i > 0 || leadingComma {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return eris.Wrapf(err, "model: marshal field key %s", f.Key)
		}
		v, err := json.Marshal(f)
		if err != nil {
			return eris.Wrapf(err, "model: marshal field %s", f.Key)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	return nil
}

// UnmarshalJSON reads an object of key → field, keeping document order.
func (b *FieldBag) UnmarshalJSON(data []byte) error {
	*b = FieldBag{fields: make(map[string]Field)}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		var f Field
		if err := json.Unmarshal(raw, &f); err != nil {
			return eris.Wrapf(err, "model: unmarshal field %s", key)
		}
		f.Key = key
		b.SetIfAbsent(f)
		return nil
	})
}

// decodeObject walks a JSON object in document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "model: read object start")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return eris.New("model: expected JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "model: read object key")
		}
		key, ok := tok.(string)
		if !ok {
			return eris.New("model: expected string key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return eris.Wrapf(err, "model: read value for %s", key)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	return nil
}
