package cmdseq

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/nanaian/bgm/bgmio"
)

func roundTrip(t *testing.T, data []byte) *CommandSeq {
	t.Helper()
	seq, err := Decode(bgmio.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	w := bgmio.NewWriter()
	if err := seq.Encode(w); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(w.Bytes(), data) {
		t.Fatalf("round trip mismatch:\n got %x\nwant %x", w.Bytes(), data)
	}
	return seq
}

func TestOpcodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Command
	}{
		{"delay-short-min", []byte{0x01, 0x00}, CmdDelayShort{Ticks: 0x01}},
		{"delay-short-max", []byte{0x7F, 0x00}, CmdDelayShort{Ticks: 0x7F}},
		{"delay-long", []byte{0x80, 0x12, 0x34, 0x00}, CmdDelayLong{Ticks: 0x1234}},
		{"note-on", []byte{0x81, 0x3C, 0x7F, 0x10, 0x00}, CmdNoteOn{Pitch: 0x3C, Velocity: 0x7F, Length: 0x10}},
		{"jump-to-end", []byte{0x82, 0x00, 0x03, 0x00}, nil},
		{"call-to-end", []byte{0x83, 0x00, 0x03, 0x00}, nil},
		{"loop-start-to-end", []byte{0x84, 0x00, 0x04, 0x05, 0x00}, nil},
		{"loop-end-to-end", []byte{0x85, 0x00, 0x03, 0x00}, nil},
		{"set-volume", []byte{0x90, 0x7F, 0x00}, CmdSetParam{Param: ParamVolume, Operand: []byte{0x7F}}},
		{"set-pan", []byte{0x91, 0x40, 0x00}, CmdSetParam{Param: ParamPan, Operand: []byte{0x40}}},
		{"set-pitch", []byte{0x92, 0x01, 0x00, 0x00}, CmdSetParam{Param: ParamPitch, Operand: []byte{0x01, 0x00}}},
		{"set-reverb", []byte{0x93, 0x20, 0x00}, CmdSetParam{Param: ParamReverb, Operand: []byte{0x20}}},
		{"set-tempo", []byte{0x94, 0x00, 0x78, 0x00}, CmdSetParam{Param: ParamTempo, Operand: []byte{0x00, 0x78}}},
		{"set-master-volume", []byte{0x95, 0x01, 0x02, 0x03, 0x00}, CmdSetParam{Param: ParamMasterVolume, Operand: []byte{0x01, 0x02, 0x03}}},
		{"unknown-opcode", []byte{0xAA, 0x00}, CmdUnknown{Opcode: 0xAA}},
		{"unknown-opcode-reserved-range", []byte{0x86, 0x00}, CmdUnknown{Opcode: 0x86}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seq := roundTrip(t, tc.data)
			if len(seq.Commands) != 2 {
				t.Fatalf("got %d commands, want 2 (one opcode + End)", len(seq.Commands))
			}
			if _, ok := seq.Commands[1].(CmdEnd); !ok {
				t.Fatalf("second command: got %T, want CmdEnd", seq.Commands[1])
			}
			if tc.want != nil && !reflect.DeepEqual(seq.Commands[0], tc.want) {
				t.Fatalf("first command: got %#v, want %#v", seq.Commands[0], tc.want)
			}
		})
	}
}

func TestEndOnlySequence(t *testing.T) {
	seq := roundTrip(t, []byte{0x00})
	if len(seq.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(seq.Commands))
	}
	if _, ok := seq.Commands[0].(CmdEnd); !ok {
		t.Fatalf("got %T, want CmdEnd", seq.Commands[0])
	}
}

// TestLabelScenarios exercises a forward jump to the first byte of a
// multi-byte command, a backward reference into the last byte of a
// multi-byte command, and a backward jump to an already-visited command
// boundary, all within one sequence, matching it byte for byte on re-encode.
func TestLabelScenarios(t *testing.T) {
	data := []byte{
		0x82, 0x00, 0x04, // 0: Jump -> 4 (forward, to NoteOn's first byte)
		0x05,             // 3: DelayShort(5)
		0x81, 0x3C, 0x7F, 0x10, // 4: NoteOn
		0x85, 0x00, 0x07, // 8: LoopEnd -> 7 (backward, into NoteOn's last byte)
		0x83, 0x00, 0x03, // 11: Call -> 3 (backward, to DelayShort's start)
		0x00, // 14: End
	}

	seq := roundTrip(t, data)
	if len(seq.Commands) != 6 {
		t.Fatalf("got %d commands, want 6", len(seq.Commands))
	}

	jump, ok := seq.Commands[0].(CmdJump)
	if !ok {
		t.Fatalf("command 0: got %T, want CmdJump", seq.Commands[0])
	}
	loopEnd, ok := seq.Commands[3].(CmdLoopEnd)
	if !ok {
		t.Fatalf("command 3: got %T, want CmdLoopEnd", seq.Commands[3])
	}
	call, ok := seq.Commands[4].(CmdCall)
	if !ok {
		t.Fatalf("command 4: got %T, want CmdCall", seq.Commands[4])
	}

	// The forward jump (to NoteOn's first byte) and the backward call (to
	// DelayShort's start) land on different commands, so they must resolve
	// to distinct labels.
	if jump.Target == call.Target {
		t.Fatalf("jump and call resolved to the same label, want distinct offsets")
	}
	// The backward reference into NoteOn's last byte is a different offset
	// than the forward jump to NoteOn's first byte, so it must be a
	// distinct label even though both point inside the same command.
	if loopEnd.Target == jump.Target {
		t.Fatalf("backward label into NoteOn's last byte must differ from the forward label to NoteOn's first byte")
	}

	// Re-encoding must place the Call's target back at DelayShort's start
	// and the LoopEnd's target back at NoteOn's last byte; the surest check
	// is that roundTrip already reproduced the exact input bytes above, so
	// here we only need to confirm the decoded labels are internally
	// self-consistent, not aliased to the wrong offset.
	if call.Target == loopEnd.Target {
		t.Fatalf("call and loopEnd resolved to the same label, want distinct offsets")
	}
}

func TestTruncatedOperand(t *testing.T) {
	_, err := Decode(bgmio.NewReader([]byte{0x80, 0x12}))
	var decErr *bgmio.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("got err %v, want *bgmio.DecodeError", err)
	}
	if decErr.Kind != bgmio.KindTruncated {
		t.Fatalf("got kind %v, want KindTruncated", decErr.Kind)
	}
}

func TestUnresolvedLabelFailsEncode(t *testing.T) {
	seq := NewCommandSeq()
	label := seq.NewLabel()
	seq.Commands = append(seq.Commands, CmdJump{Target: label}, CmdEnd{})
	// label deliberately left unattached.

	if err := seq.Encode(bgmio.NewWriter()); err == nil {
		t.Fatalf("Encode with unattached label: got nil error, want failure")
	}
}

func TestHandBuiltSequenceEncodesAndDecodesBack(t *testing.T) {
	seq := NewCommandSeq()
	top := seq.NewLabel()
	seq.Commands = append(seq.Commands, CmdDelayShort{Ticks: 10}, CmdLoopEnd{Target: top}, CmdEnd{})
	seq.AttachLabel(top, 0)

	w := bgmio.NewWriter()
	if err := seq.Encode(w); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(bgmio.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Commands) != 3 {
		t.Fatalf("got %d commands, want 3", len(decoded.Commands))
	}
	if _, ok := decoded.Commands[1].(CmdLoopEnd); !ok {
		t.Fatalf("command 1: got %T, want CmdLoopEnd", decoded.Commands[1])
	}

	w2 := bgmio.NewWriter()
	if err := decoded.Encode(w2); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(w2.Bytes(), w.Bytes()) {
		t.Fatalf("decode-then-encode mismatch:\n got %x\nwant %x", w2.Bytes(), w.Bytes())
	}
}
