package stego

import (
	"errors"
	"testing"
)

func TestRequiredCarrierBytes(t *testing.T) {
	// "#*" + ".txt" + "hi": 3 prefixes of 32 plus 8 per content byte
	if got, want := RequiredCarrierBytes(2, 4, 2), int64(96+8*8); got != want {
		t.Errorf("RequiredCarrierBytes() = %d, want %d", got, want)
	}
	if got := RequiredCarrierBytes(0, 0, 0); got != 96 {
		t.Errorf("RequiredCarrierBytes(0, 0, 0) = %d, want 96", got)
	}
}

func TestCheckCapacity_Boundary(t *testing.T) {
	const header = 54
	required := RequiredCarrierBytes(2, 4, 10)

	tests := []struct {
		name    string
		size    int64
		wantErr bool
	}{
		{name: "exact fit", size: header + required, wantErr: false},
		{name: "one byte short", size: header + required - 1, wantErr: true},
		{name: "one byte spare", size: header + required + 1, wantErr: false},
		{name: "header only", size: header, wantErr: true},
		{name: "smaller than header", size: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCapacity(tt.size, header, 2, 4, 10)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckCapacity() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInsufficientCapacity) {
				t.Errorf("error should unwrap to ErrInsufficientCapacity, got %v", err)
			}
			var ce *CapacityError
			if !errors.As(err, &ce) {
				t.Fatalf("error should be a *CapacityError, got %T", err)
			}
			if ce.Required != required {
				t.Errorf("Required = %d, want %d", ce.Required, required)
			}
		})
	}
}

func TestCheckCapacity_CountsLengthPrefixes(t *testing.T) {
	// 8*(2+4+10) = 128 carrier bytes would have passed the content-only estimate.
	err := CheckCapacity(54+128, 54, 2, 4, 10)
	if !errors.Is(err, ErrInsufficientCapacity) {
		t.Errorf("CheckCapacity() = %v, want ErrInsufficientCapacity", err)
	}
}

func TestMaxSecretBytes(t *testing.T) {
	size := int64(54 + 96 + 8*(2+4) + 8*100 + 7)
	if got := MaxSecretBytes(size, 54, 2, 4); got != 100 {
		t.Errorf("MaxSecretBytes() = %d, want 100", got)
	}
	if got := MaxSecretBytes(54+96, 54, 2, 4); got != 0 {
		t.Errorf("MaxSecretBytes() = %d, want 0", got)
	}
	if got := MaxSecretBytes(0, 54, 0, 0); got != 0 {
		t.Errorf("MaxSecretBytes() = %d, want 0", got)
	}
}
