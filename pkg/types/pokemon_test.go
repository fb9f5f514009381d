package types

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestOptional_Absent(t *testing.T) {
	var p PokemonPatch
	if err := json.Unmarshal([]byte(`{"name":"Ivysaur"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Name.Set || p.Name.Value != "Ivysaur" {
		t.Errorf("name: got %+v, want set Ivysaur", p.Name)
	}
	if p.NickName.Set || p.NickName.Null {
		t.Errorf("nick_name: got %+v, want absent", p.NickName)
	}
	if p.Number.Set {
		t.Errorf("number: got %+v, want absent", p.Number)
	}
}

func TestOptional_ExplicitNull(t *testing.T) {
	var p PokemonPatch
	if err := json.Unmarshal([]byte(`{"type":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Type.Set {
		t.Error("type: null must not count as a value")
	}
	if !p.Type.Null {
		t.Error("type: expected Null flag for explicit null")
	}
}

func TestOptional_WrongType(t *testing.T) {
	var p PokemonPatch
	err := json.Unmarshal([]byte(`{"number":"seven"}`), &p)
	if err == nil {
		t.Fatal("expected error for string number, got nil")
	}
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		t.Errorf("error: got %T, want *json.UnmarshalTypeError", err)
	}
}

func TestOptional_Or(t *testing.T) {
	if got := Some(4).Or(1); got != 4 {
		t.Errorf("Some(4).Or(1): got %d, want 4", got)
	}
	var none Optional[int]
	if got := none.Or(1); got != 1 {
		t.Errorf("none.Or(1): got %d, want 1", got)
	}
}

func TestOptional_MarshalJSON(t *testing.T) {
	p := PokemonPatch{Name: Some("Pikachu")}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"Pikachu","nick_name":null,"number":null,"type":null}`
	if string(b) != want {
		t.Errorf("marshal: got %s, want %s", b, want)
	}
}

func TestPokemonPatch_Missing(t *testing.T) {
	tests := []struct {
		body string
		want []string
	}{
		{`{"name":"a","nick_name":"b","number":1,"type":"c"}`, nil},
		{`{"name":"a","number":1}`, []string{"nick_name", "type"}},
		{`{"name":"a","nick_name":null,"number":1,"type":"c"}`, []string{"nick_name"}},
		{`{}`, []string{"name", "nick_name", "number", "type"}},
	}
	for _, tc := range tests {
		var p PokemonPatch
		if err := json.Unmarshal([]byte(tc.body), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.body, err)
		}
		if got := p.Missing(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Missing(%s): got %v, want %v", tc.body, got, tc.want)
		}
	}
}

func TestValidNumber(t *testing.T) {
	tests := map[int]bool{
		0:              true,
		151:            true,
		-1:             true,
		MaxNumber:      true,
		MinNumber:      true,
		MaxNumber + 1:  false,
		MinNumber - 1:  false,
		3_000_000_000:  false,
		-3_000_000_000: false,
	}
	for n, want := range tests {
		if got := ValidNumber(n); got != want {
			t.Errorf("ValidNumber(%d): got %v, want %v", n, got, want)
		}
	}
}
