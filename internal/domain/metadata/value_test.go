package metadata

import "testing"

func TestFromAny(t *testing.T) {
	tests := []struct {
		in   any
		want Value
	}{
		{"base de datos", String("base de datos")},
		{true, Bool(true)},
		{3.5, Number(3.5)},
		{7, Number(7)},
		{int64(-2), Number(-2)},
	}
	for _, tt := range tests {
		got, err := FromAny(tt.in)
		if err != nil {
			t.Fatalf("FromAny(%v): unexpected error: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("FromAny(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromAny_Unsupported(t *testing.T) {
	if _, err := FromAny([]string{"a"}); err == nil {
		t.Fatal("expected error for slice value")
	}
	if _, err := FromAny(nil); err == nil {
		t.Fatal("expected error for nil value")
	}
}

func TestParseScalar(t *testing.T) {
	if v := ParseScalar("true"); v.Kind() != KindBool || !v.Boolean() {
		t.Errorf("ParseScalar(true) = %v", v)
	}
	if v := ParseScalar("42"); v.Kind() != KindNumber || v.Num() != 42 {
		t.Errorf("ParseScalar(42) = %v", v)
	}
	if v := ParseScalar("IA"); v.Kind() != KindString || v.Str() != "IA" {
		t.Errorf("ParseScalar(IA) = %v", v)
	}
	for _, raw := range []string{"nan", "NaN", "inf", "Inf", "-Inf", "+infinity", "INFINITY"} {
		if v := ParseScalar(raw); v.Kind() != KindString || v.Str() != raw {
			t.Errorf("ParseScalar(%q) = %v, want string", raw, v)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, v := range []Value{String("a:b"), String(""), Number(0.25), Bool(false)} {
		got, err := Decode(v.Encode())
		if err != nil {
			t.Fatalf("Decode(%q): unexpected error: %v", v.Encode(), err)
		}
		if !got.Equal(v) {
			t.Errorf("Decode(Encode(%v)) = %v", v, got)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	for _, raw := range []string{"plain", "x:1", "n:abc", "b:maybe"} {
		if _, err := Decode(raw); err == nil {
			t.Errorf("Decode(%q): expected error", raw)
		}
	}
}

func TestToken_DistinguishesTypes(t *testing.T) {
	if Token("k", String("true")) == Token("k", Bool(true)) {
		t.Error("string and bool tokens must differ")
	}
	if Token("a", String("x")) == Token("b", String("x")) {
		t.Error("tokens for different keys must differ")
	}
	if Token("k", Number(1)) != Token("k", Number(1.0)) {
		t.Error("equal numbers must hash to the same token")
	}
	if len(Token("k", String("v"))) != 32 {
		t.Errorf("token length = %d, want 32", len(Token("k", String("v"))))
	}
}
