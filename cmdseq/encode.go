package cmdseq

import (
	"fmt"

	"github.com/nanaian/bgm/bgmio"
)

// jumpFixup records a reserved operand placeholder in the scratch buffer
// that still needs the real position of target written into it.
type jumpFixup struct {
	placeholder bgmio.Placeholder
	target      Label
}

// Encode writes the sequence to w. It runs in two passes over an internal
// scratch buffer: the first emits every command, reserving a zeroed
// placeholder wherever a jump-class operand's real value isn't known yet;
// the second backpatches those placeholders once every Label's final
// position has been computed from the widths of the commands that precede
// it. Only then is the finished scratch buffer copied into w.
func (seq *CommandSeq) Encode(w *bgmio.Writer) error {
	scratch := bgmio.NewWriter()
	starts := make([]uint32, len(seq.Commands)+1)
	var fixups []jumpFixup

	for i, cmd := range seq.Commands {
		starts[i] = scratch.Pos()
		fx, err := encodeOne(scratch, cmd)
		if err != nil {
			return bgmio.NewEncodeError(bgmio.KindInvariant, err)
		}
		fixups = append(fixups, fx...)
	}
	starts[len(seq.Commands)] = scratch.Pos()

	labelPos := make(map[Label]uint32, len(seq.labelSites))
	for _, site := range seq.labelSites {
		if site.commandIndex < 0 || site.commandIndex >= len(starts) {
			return bgmio.NewEncodeError(bgmio.KindInvariant, fmt.Errorf("label %v: command index %d out of range", site.label, site.commandIndex))
		}
		labelPos[site.label] = starts[site.commandIndex] + uint32(site.byteOffset)
	}

	for _, fx := range fixups {
		pos, ok := labelPos[fx.target]
		if !ok {
			return bgmio.NewEncodeError(bgmio.KindInvariant, fmt.Errorf("label %v has no attached position", fx.target))
		}
		scratch.Backpatch(fx.placeholder, pos)
	}

	w.WriteBytes(scratch.Bytes())
	return nil
}

func encodeOne(w *bgmio.Writer, cmd Command) ([]jumpFixup, error) {
	switch c := cmd.(type) {
	case CmdEnd:
		w.WriteU8(opcodeEnd)
		return nil, nil

	case CmdDelayShort:
		if !isDelayShort(c.Ticks) {
			return nil, fmt.Errorf("cmdseq: delay-short ticks %d out of range 1..127", c.Ticks)
		}
		w.WriteU8(c.Ticks)
		return nil, nil

	case CmdDelayLong:
		w.WriteU8(opcodeDelayLong)
		w.WriteU16(c.Ticks)
		return nil, nil

	case CmdNoteOn:
		w.WriteU8(opcodeNoteOn)
		w.WriteU8(c.Pitch)
		w.WriteU8(c.Velocity)
		w.WriteU8(c.Length)
		return nil, nil

	case CmdJump:
		w.WriteU8(opcodeJump)
		ph := w.Reserve(bgmio.Width16)
		return []jumpFixup{{placeholder: ph, target: c.Target}}, nil

	case CmdCall:
		w.WriteU8(opcodeCall)
		ph := w.Reserve(bgmio.Width16)
		return []jumpFixup{{placeholder: ph, target: c.Target}}, nil

	case CmdLoopStart:
		w.WriteU8(opcodeLoopStart)
		ph := w.Reserve(bgmio.Width16)
		w.WriteU8(c.Count)
		return []jumpFixup{{placeholder: ph, target: c.Target}}, nil

	case CmdLoopEnd:
		w.WriteU8(opcodeLoopEnd)
		ph := w.Reserve(bgmio.Width16)
		return []jumpFixup{{placeholder: ph, target: c.Target}}, nil

	case CmdSetParam:
		opcode, ok := paramOpcode[c.Param]
		if !ok {
			return nil, fmt.Errorf("cmdseq: unknown param kind %v", c.Param)
		}
		if want := paramWidth[c.Param]; len(c.Operand) != want {
			return nil, fmt.Errorf("cmdseq: param %v operand is %d bytes, want %d", c.Param, len(c.Operand), want)
		}
		w.WriteU8(opcode)
		w.WriteBytes(c.Operand)
		return nil, nil

	case CmdUnknown:
		w.WriteU8(c.Opcode)
		w.WriteBytes(c.Raw)
		return nil, nil

	default:
		return nil, fmt.Errorf("cmdseq: unencodable command type %T", cmd)
	}
}
