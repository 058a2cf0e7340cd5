package record

import (
	"errors"
	"testing"
	"time"
)

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"valid", Record{TenantID: "u1", ID: "r1"}, false},
		{"no tenant", Record{ID: "r1"}, true},
		{"no id", Record{TenantID: "u1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	in := Record{
		TenantID:  "u1",
		ID:        "rem-1",
		Kind:      KindReminder,
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Body:      []byte(`{"medication":"aspirin"}`),
	}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if out.TenantID != in.TenantID || out.ID != in.ID || out.Kind != in.Kind {
		t.Errorf("Unmarshal() = %+v, want %+v", out, in)
	}
	if !out.UpdatedAt.Equal(in.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", out.UpdatedAt, in.UpdatedAt)
	}
	if string(out.Body) != string(in.Body) {
		t.Errorf("Body = %s, want %s", out.Body, in.Body)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	if _, err := Unmarshal([]byte("{")); err == nil {
		t.Error("Unmarshal() should fail on truncated JSON")
	}
}

func TestRecord_Clone(t *testing.T) {
	r := Record{TenantID: "u1", ID: "r1", Body: []byte(`{"a":1}`)}
	c := r.Clone()
	c.Body[2] = 'b'
	if string(r.Body) != `{"a":1}` {
		t.Errorf("Clone() aliases body: %s", r.Body)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("reminder"); err != nil || k != KindReminder {
		t.Errorf("ParseKind(reminder) = %q, %v", k, err)
	}
	if _, err := ParseKind("pizza"); err == nil {
		t.Error("ParseKind(pizza) should fail")
	}
}
