package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Opcode identifies a request on the wire.
type Opcode uint32

// Opcode values are fixed by the wire format; never renumber them.
const (
	OpTerminate     Opcode = 0
	OpKeepalive     Opcode = 1
	OpUseDisplay    Opcode = 2
	OpSetDimensions Opcode = 3
	OpReloadRenders Opcode = 4
)

// WordSize is the width of every field on the wire.
const WordSize = 4

var opcodeNames = map[Opcode]string{
	OpTerminate:     "TERMINATE",
	OpKeepalive:     "KEEPALIVE",
	OpUseDisplay:    "USE_DISPLAY",
	OpSetDimensions: "SET_DIMENSIONS",
	OpReloadRenders: "RELOAD_RENDERS",
}

var opcodeArity = map[Opcode]int{
	OpTerminate:     0,
	OpKeepalive:     0,
	OpUseDisplay:    1,
	OpSetDimensions: 2,
	OpReloadRenders: 0,
}

// ErrUnknownOpcode is wrapped by every UnknownOpcodeError.
var ErrUnknownOpcode = errors.New("unknown opcode")

// UnknownOpcodeError reports an opcode outside the known set. The stream
// cannot be resynchronized after one is read.
type UnknownOpcodeError struct {
	Opcode Opcode
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %d", uint32(e.Opcode))
}

func (e *UnknownOpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// Valid reports whether op is part of the protocol.
func (op Opcode) Valid() bool {
	_, ok := opcodeArity[op]
	return ok
}

// Arity returns the number of uint32 arguments that follow op, or -1 for an
// unknown opcode.
func (op Opcode) Arity() int {
	n, ok := opcodeArity[op]
	if !ok {
		return -1
	}
	return n
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OPCODE(%d)", uint32(op))
}

// Request is one decoded command.
type Request struct {
	Opcode Opcode
	Args   []uint32
}

// Size returns the encoded length of the request in bytes.
func (r Request) Size() int {
	return WordSize * (1 + len(r.Args))
}

// Encode serializes op and args as consecutive big-endian uint32 words. The
// argument count must match the opcode's arity exactly.
func Encode(op Opcode, args ...uint32) ([]byte, error) {
	arity := op.Arity()
	if arity < 0 {
		return nil, &UnknownOpcodeError{Opcode: op}
	}
	if len(args) != arity {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", op, arity, len(args))
	}

	buf := make([]byte, 0, WordSize*(1+arity))
	buf = binary.BigEndian.AppendUint32(buf, uint32(op))
	for _, arg := range args {
		buf = binary.BigEndian.AppendUint32(buf, arg)
	}
	return buf, nil
}

// WriteRequest encodes req and writes it with a single Write call.
func WriteRequest(w io.Writer, req Request) error {
	buf, err := Encode(req.Opcode, req.Args...)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Decoder reads requests from a byte stream.
type Decoder struct {
	r    io.Reader
	word [WordSize]byte
}

// NewDecoder returns a decoder reading from r. r should not be buffered by
// the caller beyond what it already is; the decoder reads exactly the bytes
// of each request and nothing more.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode blocks until a full request is available.
//
// io.EOF is returned only when the stream ends cleanly between requests. A
// stream that ends inside a request yields io.ErrUnexpectedEOF.
func (d *Decoder) Decode() (Request, error) {
	first, err := d.readWord()
	if err != nil {
		return Request{}, err
	}

	op := Opcode(first)
	arity := op.Arity()
	if arity < 0 {
		return Request{}, &UnknownOpcodeError{Opcode: op}
	}

	req := Request{Opcode: op}
	if arity > 0 {
		req.Args = make([]uint32, arity)
	}
	for i := range req.Args {
		v, err := d.readWord()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return Request{}, fmt.Errorf("reading %s argument %d: %w", op, i, err)
		}
		req.Args[i] = v
	}
	return req, nil
}

func (d *Decoder) readWord() (uint32, error) {
	if _, err := io.ReadFull(d.r, d.word[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d.word[:]), nil
}

// ReadRequest decodes a single request from r.
func ReadRequest(r io.Reader) (Request, error) {
	return NewDecoder(r).Decode()
}
