package guandan

import "fmt"

// Verdict 出牌校验结果，校验失败不会 panic，调用方根据 Reason 重新提示
type Verdict struct {
	Reason      Reason      `json:"reason"`
	Combination Combination `json:"combination"`
	err         error
}

// OK 是否校验通过
func (v Verdict) OK() bool {
	return v.Reason == ReasonOK
}

// Err 校验失败时返回对应的哨兵错误（已包装上下文）
func (v Verdict) Err() error {
	return v.err
}

func reject(err error) Verdict {
	return Verdict{Reason: ReasonOf(err), err: err}
}

// ValidatePlay 校验一次出牌
// cards 必须都在 hand 中；必须成牌型；last 为空（首出）时任意牌型都可以，否则必须压过 last
func ValidatePlay(cards Cards, last *Combination, hand Cards, wild Rank) Verdict {
	if len(cards) == 0 {
		return reject(fmt.Errorf("%w: empty play", ErrInvalidShape))
	}
	if !hand.Contains(cards) {
		return reject(fmt.Errorf("%w: %s", ErrInvalidCards, cards))
	}

	c := Classify(cards, wild)
	if !c.IsValid() {
		return reject(fmt.Errorf("%w: %s", ErrInvalidShape, cards))
	}
	if last != nil && last.IsValid() && !c.Beats(*last) {
		return reject(fmt.Errorf("%w: %s", ErrTooWeak, cards))
	}
	return Verdict{Reason: ReasonOK, Combination: c}
}
