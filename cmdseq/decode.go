package cmdseq

import (
	"sort"

	"github.com/nanaian/bgm/bgmio"
)

// CommandSeq is the decoded form of a command-sequence byte stream: an
// ordered list of commands plus the bookkeeping needed to re-resolve every
// Label back to a byte offset on Encode.
type CommandSeq struct {
	Commands []Command

	labelSites  []labelSite
	nextLabelID int
}

// NewCommandSeq returns an empty sequence, ready to have commands appended
// to it by hand.
func NewCommandSeq() *CommandSeq {
	return &CommandSeq{}
}

// NewLabel allocates a fresh Label not yet bound to any position. Callers
// building a CommandSeq by hand must bind it with AttachLabel before
// Encode, or encoding fails.
func (seq *CommandSeq) NewLabel() Label {
	l := Label{id: seq.nextLabelID}
	seq.nextLabelID++
	return l
}

// AttachLabel records that label resolves to the start of the command at
// commandIndex (commandIndex == len(seq.Commands) marks the position
// immediately following the last command).
func (seq *CommandSeq) AttachLabel(label Label, commandIndex int) {
	seq.labelSites = append(seq.labelSites, labelSite{label: label, commandIndex: commandIndex})
}

// Decode reads a command sequence from cur, starting at its current
// position, and leaves cur positioned just past the last byte consumed.
func Decode(cur *bgmio.Reader) (*CommandSeq, error) {
	labelByOffset := map[uint32]Label{}
	nextID := 0
	getLabel := func(offset uint32) Label {
		if l, ok := labelByOffset[offset]; ok {
			return l
		}
		l := Label{id: nextID}
		nextID++
		labelByOffset[offset] = l
		return l
	}

	referencedTargets := map[uint32]bool{}
	resolveTarget := func(offset uint32) Label {
		referencedTargets[offset] = true
		return getLabel(offset)
	}

	var commands []Command
	var starts []uint32

	for {
		startOffset := cur.Pos()
		getLabel(startOffset)
		starts = append(starts, startOffset)

		opcode, err := cur.ReadU8()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, startOffset, err)
		}

		cmd, err := decodeOne(cur, startOffset, opcode, resolveTarget)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)

		if _, isEnd := cmd.(CmdEnd); isEnd {
			pos := cur.Pos()
			pending := false
			for off := range referencedTargets {
				if off >= pos {
					pending = true
					break
				}
			}
			if !pending {
				break
			}
		}
	}
	starts = append(starts, cur.Pos())

	seq := &CommandSeq{Commands: commands, nextLabelID: nextID}
	seq.buildLabelSites(labelByOffset, starts)
	return seq, nil
}

func (seq *CommandSeq) buildLabelSites(labelByOffset map[uint32]Label, starts []uint32) {
	sites := make([]labelSite, 0, len(labelByOffset))
	for offset, label := range labelByOffset {
		n := len(starts) - 1
		idx := sort.Search(n, func(i int) bool { return starts[i+1] > offset })
		sites = append(sites, labelSite{
			label:        label,
			commandIndex: idx,
			byteOffset:   int(offset - starts[idx]),
		})
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].label.id < sites[j].label.id })
	seq.labelSites = sites
}

func decodeOne(cur *bgmio.Reader, startOffset uint32, opcode uint8, resolveTarget func(uint32) Label) (Command, error) {
	switch {
	case opcode == opcodeEnd:
		return CmdEnd{}, nil

	case isDelayShort(opcode):
		return CmdDelayShort{Ticks: opcode}, nil

	case opcode == opcodeDelayLong:
		ticks, err := cur.ReadU16()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, startOffset, err)
		}
		return CmdDelayLong{Ticks: ticks}, nil

	case opcode == opcodeNoteOn:
		operand, err := cur.ReadBytes(3)
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, startOffset, err)
		}
		return CmdNoteOn{Pitch: operand[0], Velocity: operand[1], Length: operand[2]}, nil

	case opcode == opcodeJump:
		target, err := cur.ReadU16()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, startOffset, err)
		}
		return CmdJump{Target: resolveTarget(uint32(target))}, nil

	case opcode == opcodeCall:
		target, err := cur.ReadU16()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, startOffset, err)
		}
		return CmdCall{Target: resolveTarget(uint32(target))}, nil

	case opcode == opcodeLoopStart:
		target, err := cur.ReadU16()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, startOffset, err)
		}
		count, err := cur.ReadU8()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, startOffset, err)
		}
		return CmdLoopStart{Target: resolveTarget(uint32(target)), Count: count}, nil

	case opcode == opcodeLoopEnd:
		target, err := cur.ReadU16()
		if err != nil {
			return nil, bgmio.NewDecodeError(bgmio.KindTruncated, startOffset, err)
		}
		return CmdLoopEnd{Target: resolveTarget(uint32(target))}, nil

	default:
		if param, ok := opcodeParam[opcode]; ok {
			width := paramWidth[param]
			operand, err := cur.ReadBytes(width)
			if err != nil {
				return nil, bgmio.NewDecodeError(bgmio.KindMalformedOperand, startOffset, err)
			}
			raw := append([]byte(nil), operand...)
			return CmdSetParam{Param: param, Operand: raw}, nil
		}
		return CmdUnknown{Opcode: opcode}, nil
	}
}
