package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestCompactUintBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{
			name:  "zero",
			value: 0,
			want:  []byte{0x00},
		},
		{
			name:  "largest single byte",
			value: 0xfc,
			want:  []byte{0xfc},
		},
		{
			name:  "first two byte form",
			value: 0xfd,
			want:  []byte{0xfd, 0xfd, 0x00},
		},
		{
			name:  "largest two byte form",
			value: 0xffff,
			want:  []byte{0xfd, 0xff, 0xff},
		},
		{
			name:  "first four byte form",
			value: 0x10000,
			want:  []byte{0xfe, 0x00, 0x00, 0x01, 0x00},
		},
		{
			name:  "largest four byte form",
			value: 0xffffffff,
			want:  []byte{0xfe, 0xff, 0xff, 0xff, 0xff},
		},
		{
			name:  "first eight byte form",
			value: 0x100000000,
			want:  []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteCompactUint(&buf, tt.value); err != nil {
				t.Fatalf("WriteCompactUint() error = %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Fatalf("WriteCompactUint() = %x, want %x", buf.Bytes(), tt.want)
			}

			got, err := ReadCompactUint(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("ReadCompactUint() error = %v", err)
			}
			if got != tt.value {
				t.Fatalf("ReadCompactUint() = %d, want %d", got, tt.value)
			}
		})
	}
}

func TestReadCompactUintTruncated(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		wantErr error
	}{
		{
			name:    "empty stream",
			buf:     nil,
			wantErr: io.EOF,
		},
		{
			name:    "marker without two byte value",
			buf:     []byte{0xfd},
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "marker with partial four byte value",
			buf:     []byte{0xfe, 0x01, 0x02},
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "marker with partial eight byte value",
			buf:     []byte{0xff, 0x01, 0x02, 0x03, 0x04},
			wantErr: io.ErrUnexpectedEOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCompactUint(bytes.NewReader(tt.buf))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadCompactUint() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
