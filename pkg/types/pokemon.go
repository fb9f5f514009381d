package types

import (
	"encoding/json"
	"math"
)

// Pokemon numbers are 32-bit signed integers on the wire.
const (
	MinNumber = math.MinInt32
	MaxNumber = math.MaxInt32
)

// ValidNumber reports whether n fits the wire range of a pokemon number.
func ValidNumber(n int) bool {
	return n >= MinNumber && n <= MaxNumber
}

// Pokemon is the public record shape returned by every endpoint.
type Pokemon struct {
	Name     string `json:"name"`
	NickName string `json:"nick_name"`
	Number   int    `json:"number"`
	Type     string `json:"type"`
}

// PokemonList is the payload for GET /pokemon.
type PokemonList struct {
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
	Pokemons []Pokemon `json:"pokemons"`
}

// PokemonPatch is the request body for POST and PATCH /pokemon. Every field
// records whether the client sent it, so a create can reject missing fields
// and an update can leave absent fields unchanged.
type PokemonPatch struct {
	Name     Optional[string] `json:"name"`
	NickName Optional[string] `json:"nick_name"`
	Number   Optional[int]    `json:"number"`
	Type     Optional[string] `json:"type"`
}

// Missing returns the JSON names of the fields that carry no value.
func (p PokemonPatch) Missing() []string {
	var out []string
	if !p.Name.Set {
		out = append(out, "name")
	}
	if !p.NickName.Set {
		out = append(out, "nick_name")
	}
	if !p.Number.Set {
		out = append(out, "number")
	}
	if !p.Type.Set {
		out = append(out, "type")
	}
	return out
}

// Optional is a value that may be absent from a JSON document.
//
// Set is true when the document carried a non-null value. Null is true when
// the field was present with an explicit JSON null; both are false when the
// field was omitted.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Or returns the held value, or fallback when none was set.
func (o Optional[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional[T]{Null: true}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Optional[T]{Value: v, Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler. Unset values encode as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
