package guandan

import "errors"

// 错误定义，均为可恢复的玩家操作错误，调用方据此重新提示
var (
	ErrInvalidShape  = errors.New("cards do not form a combination")
	ErrInvalidCards  = errors.New("cards not in hand")
	ErrTooWeak       = errors.New("combination does not beat last play")
	ErrWrongTurn     = errors.New("not your turn")
	ErrTributeRule   = errors.New("tribute rule violation")
	ErrOutOfSequence = errors.New("out of sequence")
	ErrRoundState    = errors.New("round not in required state")
	ErrMatchOver     = errors.New("match already won")
)

// 编程错误，直接 panic
var (
	ErrUnevenDeal      = errors.New("deck size not divisible by player count")
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// Reason 校验失败的原因码
type Reason uint8

const (
	ReasonOK Reason = iota
	ReasonInvalidShape
	ReasonInvalidCards
	ReasonTooWeak
	ReasonWrongTurn
	ReasonTributeRuleViolation
	ReasonOutOfSequence
	ReasonUnknown
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "OK"
	case ReasonInvalidShape:
		return "InvalidShape"
	case ReasonInvalidCards:
		return "InvalidCards"
	case ReasonTooWeak:
		return "TooWeak"
	case ReasonWrongTurn:
		return "WrongTurn"
	case ReasonTributeRuleViolation:
		return "TributeRuleViolation"
	case ReasonOutOfSequence:
		return "OutOfSequence"
	}
	return "Unknown"
}

// ReasonOf 把错误映射为原因码，nil 返回 ReasonOK
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, ErrInvalidShape):
		return ReasonInvalidShape
	case errors.Is(err, ErrInvalidCards):
		return ReasonInvalidCards
	case errors.Is(err, ErrTooWeak):
		return ReasonTooWeak
	case errors.Is(err, ErrWrongTurn):
		return ReasonWrongTurn
	case errors.Is(err, ErrTributeRule):
		return ReasonTributeRuleViolation
	case errors.Is(err, ErrOutOfSequence), errors.Is(err, ErrRoundState):
		return ReasonOutOfSequence
	}
	return ReasonUnknown
}
