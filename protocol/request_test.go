package protocol

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    []byte
		wantErr bool
		errMsg  string
	}{
		{
			name: "fixed obj 2 at 3A",
			req:  Request{Kind: KindFixed, ObjPos: 2, MaxCurrent: 300, OpCurrent: 300},
			want: []byte{0x2C, 0xB1, 0x04, 0x20},
		},
		{
			name: "pps obj 3 at 9V 3A",
			req:  Request{Kind: KindProgrammable, ObjPos: 3, OpCurrent: 60, Voltage: 450},
			want: []byte{0x3C, 0x84, 0x03, 0x30},
		},
		{
			name: "pps obj 3 at 11V 3A",
			req:  Request{Kind: KindProgrammable, ObjPos: 3, OpCurrent: 60, Voltage: 550},
			want: []byte{0x3C, 0x4C, 0x04, 0x30},
		},
		{
			name: "obj pos 7",
			req:  Request{Kind: KindFixed, ObjPos: 7},
			want: []byte{0x00, 0x00, 0x00, 0x70},
		},
		{
			name:    "obj pos zero",
			req:     Request{Kind: KindFixed, ObjPos: 0, MaxCurrent: 100},
			wantErr: true,
			errMsg:  "object position",
		},
		{
			name:    "obj pos eight",
			req:     Request{Kind: KindFixed, ObjPos: 8},
			wantErr: true,
			errMsg:  "object position",
		},
		{
			name:    "fixed op current overflow",
			req:     Request{Kind: KindFixed, ObjPos: 1, OpCurrent: 1024},
			wantErr: true,
			errMsg:  "10-bit",
		},
		{
			name:    "pps op current overflow",
			req:     Request{Kind: KindProgrammable, ObjPos: 1, OpCurrent: 128},
			wantErr: true,
			errMsg:  "7-bit",
		},
		{
			name:    "pps voltage overflow",
			req:     Request{Kind: KindProgrammable, ObjPos: 1, Voltage: 2048},
			wantErr: true,
			errMsg:  "11-bit",
		},
		{
			name:    "unrecognized kind",
			req:     Request{Kind: KindUnrecognized, ObjPos: 1},
			wantErr: true,
			errMsg:  "cannot request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRequest(tt.req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeRequest() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestRequestFieldPositions(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want uint32
	}{
		{"fixed max current bits 0-9", Request{Kind: KindFixed, ObjPos: 1, MaxCurrent: 0x3FF}, 0x100003FF},
		{"fixed op current bits 10-19", Request{Kind: KindFixed, ObjPos: 1, OpCurrent: 0x3FF}, 0x100FFC00},
		{"pps op current bits 0-6", Request{Kind: KindProgrammable, ObjPos: 1, OpCurrent: 0x7F}, 0x1000007F},
		{"pps voltage bits 9-19", Request{Kind: KindProgrammable, ObjPos: 1, Voltage: 0x7FF}, 0x100FFE00},
		{"obj pos bits 28-30", Request{Kind: KindProgrammable, ObjPos: 7}, 0x70000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := EncodeRequest(tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := binary.LittleEndian.Uint32(b)
			if got != tt.want {
				t.Errorf("raw = 0x%08X, want 0x%08X", got, tt.want)
			}
			if got&(1<<31) != 0 {
				t.Error("bit 31 must be zero")
			}
		})
	}
}

func TestRequestRoundTrip(t *testing.T) {
	reqs := []Request{
		{Kind: KindFixed, ObjPos: 1, MaxCurrent: 300, OpCurrent: 150},
		{Kind: KindFixed, ObjPos: 7, MaxCurrent: 1023, OpCurrent: 1023},
		{Kind: KindProgrammable, ObjPos: 3, OpCurrent: 60, Voltage: 450},
		{Kind: KindProgrammable, ObjPos: 5, OpCurrent: 127, Voltage: 2047},
	}

	for _, r := range reqs {
		b, err := EncodeRequest(r)
		if err != nil {
			t.Fatalf("encode %v: %v", r, err)
		}
		got, err := DecodeRequest(b, r.Kind)
		if err != nil {
			t.Fatalf("decode %v: %v", r, err)
		}
		if got != r {
			t.Errorf("round trip = %+v, want %+v", got, r)
		}
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		record []byte
		kind   Kind
	}{
		{"short", []byte{0x00, 0x00, 0x00}, KindFixed},
		{"zero obj pos", []byte{0x2C, 0x01, 0x00, 0x00}, KindFixed},
		{"fixed reserved bits", []byte{0x00, 0x00, 0x10, 0x10}, KindFixed},
		{"pps reserved bits", []byte{0x80, 0x00, 0x00, 0x10}, KindProgrammable},
		{"bit 31", []byte{0x00, 0x00, 0x00, 0x90}, KindFixed},
		{"unrecognized kind", []byte{0x00, 0x00, 0x00, 0x10}, KindUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest(tt.record, tt.kind)
			if !IsDecodeError(err) {
				t.Errorf("expected DecodeError, got %v", err)
			}
		})
	}
}

func TestRequestUnits(t *testing.T) {
	pps := Request{Kind: KindProgrammable, ObjPos: 3, OpCurrent: 60, Voltage: 450}
	if pps.VoltageMV() != 9000 {
		t.Errorf("VoltageMV() = %d, want 9000", pps.VoltageMV())
	}
	if pps.OpCurrentMA() != 3000 {
		t.Errorf("OpCurrentMA() = %d, want 3000", pps.OpCurrentMA())
	}
	if pps.Index() != 2 {
		t.Errorf("Index() = %d, want 2", pps.Index())
	}

	fixed := Request{Kind: KindFixed, ObjPos: 1, MaxCurrent: 300, OpCurrent: 150}
	if fixed.OpCurrentMA() != 1500 || fixed.MaxCurrentMA() != 3000 {
		t.Errorf("fixed currents = %d/%d, want 1500/3000", fixed.OpCurrentMA(), fixed.MaxCurrentMA())
	}
	if fixed.VoltageMV() != 0 {
		t.Errorf("fixed VoltageMV() = %d, want 0", fixed.VoltageMV())
	}
}

func TestResetRequest(t *testing.T) {
	if !bytes.Equal(ResetRequest(), []byte{0, 0, 0, 0}) {
		t.Errorf("ResetRequest() = % X", ResetRequest())
	}
}
