package cmdseq

const (
	opcodeEnd       uint8 = 0x00
	opcodeDelayLong uint8 = 0x80
	opcodeNoteOn    uint8 = 0x81
	opcodeJump      uint8 = 0x82
	opcodeCall      uint8 = 0x83
	opcodeLoopStart uint8 = 0x84
	opcodeLoopEnd   uint8 = 0x85
)

// paramOpcode maps a ParamKind to the single opcode byte that sets it.
var paramOpcode = map[ParamKind]uint8{
	ParamVolume:       0x90,
	ParamPan:          0x91,
	ParamPitch:        0x92,
	ParamReverb:       0x93,
	ParamTempo:        0x94,
	ParamMasterVolume: 0x95,
}

// paramWidth is the operand width, in bytes, that paramOpcode's opcode
// carries.
var paramWidth = map[ParamKind]int{
	ParamVolume:       1,
	ParamPan:          1,
	ParamPitch:        2,
	ParamReverb:       1,
	ParamTempo:        2,
	ParamMasterVolume: 3,
}

var opcodeParam = func() map[uint8]ParamKind {
	m := make(map[uint8]ParamKind, len(paramOpcode))
	for k, v := range paramOpcode {
		m[v] = k
	}
	return m
}()

// isDelayShort reports whether opcode is a packed short-delay opcode: any
// byte in 0x01..0x7F, with the opcode value itself being the tick count.
func isDelayShort(opcode uint8) bool {
	return opcode >= 0x01 && opcode <= 0x7F
}
