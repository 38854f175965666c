package synth

import "testing"

func TestControllerBankSet(t *testing.T) {
	tests := []struct {
		name  string
		index int
		raw   uint8
		ok    bool
		want  float64
	}{
		{name: "max", index: 1, raw: 127, ok: true, want: 1},
		{name: "zero", index: 2, raw: 0, ok: true, want: 0},
		{name: "mid", index: 3, raw: 64, ok: true, want: 64.0 / 127.0},
		{name: "last", index: 4, raw: 1, ok: true, want: 1.0 / 127.0},
		{name: "index zero", index: 0, raw: 10, ok: false},
		{name: "fifth", index: 5, raw: 10, ok: false},
		{name: "negative", index: -1, raw: 10, ok: false},
		{name: "raw above 127 unclamped", index: 1, raw: 254, ok: true, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b ControllerBank
			if got := b.Set(tt.index, tt.raw); got != tt.ok {
				t.Fatalf("Set() = %v, want %v", got, tt.ok)
			}
			if !tt.ok {
				if b.Values() != [ControllerCount]float64{} {
					t.Fatalf("rejected Set mutated bank: %v", b.Values())
				}
				return
			}
			if got := b.Get(tt.index); got != tt.want {
				t.Fatalf("Get(%d) = %v, want %v", tt.index, got, tt.want)
			}
		})
	}
}

func TestControllerBankIndependent(t *testing.T) {
	var b ControllerBank
	b.Set(1, 127)
	b.Set(4, 0)
	b.Set(2, 127)
	b.Set(2, 0)

	want := [ControllerCount]float64{1, 0, 0, 0}
	if got := b.Values(); got != want {
		t.Fatalf("Values() = %v, want %v", got, want)
	}

	if b.Get(7) != 0 {
		t.Fatal("unknown index should read as 0")
	}
}
