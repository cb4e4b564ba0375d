package ipc

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		op   Opcode
		args []uint32
		want []byte
	}{
		{"terminate", OpTerminate, nil, []byte{0, 0, 0, 0}},
		{"keepalive", OpKeepalive, nil, []byte{0, 0, 0, 1}},
		{"use display", OpUseDisplay, []uint32{1}, []byte{0, 0, 0, 2, 0, 0, 0, 1}},
		{"set dimensions", OpSetDimensions, []uint32{1280, 720}, []byte{
			0, 0, 0, 3,
			0, 0, 0x05, 0x00,
			0, 0, 0x02, 0xD0,
		}},
		{"reload", OpReloadRenders, nil, []byte{0, 0, 0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.op, tt.args...)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("Encode() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	if _, err := Encode(OpSetDimensions, 1); err == nil {
		t.Fatal("expected arity error")
	}
	if _, err := Encode(OpTerminate, 1); err == nil {
		t.Fatal("expected arity error for extra argument")
	}
	_, err := Encode(Opcode(9))
	if !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("Encode(9) error = %v, want ErrUnknownOpcode", err)
	}
}

func TestDecodeSequence(t *testing.T) {
	sent := []Request{
		{Opcode: OpUseDisplay, Args: []uint32{1}},
		{Opcode: OpSetDimensions, Args: []uint32{1280, 720}},
		{Opcode: OpKeepalive},
		{Opcode: OpReloadRenders},
		{Opcode: OpTerminate},
	}
	var buf bytes.Buffer
	for _, req := range sent {
		if err := WriteRequest(&buf, req); err != nil {
			t.Fatalf("WriteRequest(%v) error: %v", req.Opcode, err)
		}
	}
	if buf.Len() != 4*(1+1+1+2+1+1+1) {
		t.Fatalf("stream length = %d", buf.Len())
	}

	dec := NewDecoder(&buf)
	for i, want := range sent {
		got, err := dec.Decode()
		if err != nil {
			t.Fatalf("request %d: Decode() error: %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("request %d = %+v, want %+v", i, got, want)
		}
	}
	if _, err := dec.Decode(); err != io.EOF {
		t.Fatalf("Decode() at end = %v, want io.EOF", err)
	}
}

func TestDecode_UnknownOpcode(t *testing.T) {
	_, err := ReadRequest(bytes.NewReader([]byte{0, 0, 0, 7}))
	var opErr *UnknownOpcodeError
	if !errors.As(err, &opErr) {
		t.Fatalf("error = %v, want *UnknownOpcodeError", err)
	}
	if opErr.Opcode != 7 {
		t.Fatalf("Opcode = %d, want 7", opErr.Opcode)
	}
	if !errors.Is(err, ErrUnknownOpcode) {
		t.Fatal("UnknownOpcodeError does not wrap ErrUnknownOpcode")
	}
}

func TestDecode_TruncatedRequest(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"partial opcode", []byte{0, 0}},
		{"missing argument", []byte{0, 0, 0, 2}},
		{"missing second argument", []byte{0, 0, 0, 3, 0, 0, 1, 0}},
		{"partial argument", []byte{0, 0, 0, 3, 0, 0, 1, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRequest(bytes.NewReader(tt.data))
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Fatalf("error = %v, want io.ErrUnexpectedEOF", err)
			}
		})
	}
}

func TestDecode_BlocksUntilComplete(t *testing.T) {
	pr, pw := io.Pipe()
	defer pr.Close()

	type result struct {
		req Request
		err error
	}
	done := make(chan result, 1)
	go func() {
		req, err := ReadRequest(pr)
		done <- result{req, err}
	}()

	// Opcode and first argument only.
	go func() {
		_, _ = pw.Write([]byte{0, 0, 0, 3, 0, 0, 0, 100})
	}()

	select {
	case r := <-done:
		t.Fatalf("Decode returned early: %+v, %v", r.req, r.err)
	case <-time.After(50 * time.Millisecond):
	}

	go func() {
		_, _ = pw.Write([]byte{0, 0, 0, 50})
	}()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("Decode() error: %v", r.err)
		}
		want := Request{Opcode: OpSetDimensions, Args: []uint32{100, 50}}
		if !reflect.DeepEqual(r.req, want) {
			t.Fatalf("Decode() = %+v, want %+v", r.req, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Decode did not return after the request completed")
	}
}

func TestOpcodeString(t *testing.T) {
	if got := OpSetDimensions.String(); got != "SET_DIMENSIONS" {
		t.Fatalf("String() = %q", got)
	}
	if got := Opcode(42).String(); got != "OPCODE(42)" {
		t.Fatalf("String() = %q", got)
	}
	if Opcode(42).Valid() || Opcode(42).Arity() != -1 {
		t.Fatal("opcode 42 should be invalid")
	}
}
