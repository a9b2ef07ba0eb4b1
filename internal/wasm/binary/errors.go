package binary

import "errors"

// Sentinel error kinds, matched with errors.Is by callers that want to
// distinguish classes of decode failure without parsing message text.
var (
	ErrNotEnoughBytes                = errors.New("not enough bytes")
	ErrBadLeb128                     = errors.New("malformed LEB128")
	ErrBadMagic                      = errors.New("invalid magic number")
	ErrBadVersion                    = errors.New("invalid version header")
	ErrUnknownOpcode                 = errors.New("unknown opcode")
	ErrBadValueType                  = errors.New("invalid value type")
	ErrBadExternalKind               = errors.New("invalid external kind")
	ErrBadMutability                 = errors.New("invalid mutability")
	ErrBadString                     = errors.New("malformed UTF-8 string")
	ErrBadSection                    = errors.New("invalid section")
	ErrCountMismatch                 = errors.New("count mismatch")
	ErrIllegalInstructionInConstExpr = errors.New("illegal instruction in const expr")
	ErrAlignOutOfRange               = errors.New("alignment out of range")
	ErrFeatureDisabled               = errors.New("feature disabled")
)
