package wire

import (
	"encoding/binary"
	"fmt"
	"testing"
)

func TestIDPaddingAndString(t *testing.T) {
	id := NewID("EC")
	if id != (ID{'E', 'C', 0, 0}) {
		t.Fatalf("unexpected padding: %v", id)
	}
	if id.String() != "EC" {
		t.Fatalf("unexpected string: %q", id.String())
	}
	spaced := ID{'E', 'C', 'U', ' '}
	if spaced.String() != "ECU" {
		t.Fatalf("expected trailing space trimmed, got %q", spaced.String())
	}
	if NewID("TOOLONG") != (ID{'T', 'O', 'O', 'L'}) {
		t.Fatalf("expected truncation to 4 bytes")
	}
	if !(ID{}).IsZero() || id.IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}

func TestByteOrderSelection(t *testing.T) {
	if Endian(true) != Order(binary.BigEndian) {
		t.Fatalf("expected big endian")
	}
	if Endian(false) != Order(binary.LittleEndian) {
		t.Fatalf("expected little endian")
	}
	if got := Endian(true).AppendUint16(nil, 0x0102); got[0] != 0x01 {
		t.Fatalf("unexpected big endian append: % x", got)
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(fmt.Errorf("header: %w", ErrIncomplete)) {
		t.Fatalf("wrapped incomplete should be recoverable")
	}
	if IsRecoverable(ErrMalformed) {
		t.Fatalf("malformed must not be recoverable")
	}
}
