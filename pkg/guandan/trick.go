package guandan

// Move 一轮中的一次动作，出牌或过牌
type Move struct {
	Seat        Seat         `json:"seat"`
	Combination *Combination `json:"combination,omitempty"` // 过牌时为空
}

// IsPass 是否为过牌
func (m Move) IsPass() bool {
	return m.Combination == nil
}

// Trick 一轮出牌，从首出开始直到其余玩家全部过牌
type Trick struct {
	Lead     Seat         `json:"lead"`
	LastSeat Seat         `json:"lastSeat"`
	LastPlay *Combination `json:"lastPlay,omitempty"`
	Passed   SeatSet      `json:"passed"`
	Moves    []Move       `json:"moves,omitempty"`
}

// NewTrick 由 lead 首出的新一轮
func NewTrick(lead Seat) Trick {
	return Trick{Lead: lead, LastSeat: SeatNone}
}

// IsOpen 本轮还没有人出过牌
func (t *Trick) IsOpen() bool {
	return t.LastPlay == nil
}

func (t *Trick) play(seat Seat, c Combination) {
	t.LastSeat = seat
	t.LastPlay = &c
	t.Moves = append(t.Moves, Move{Seat: seat, Combination: &c})
}

func (t *Trick) pass(seat Seat) {
	t.Passed.Add(seat)
	t.Moves = append(t.Moves, Move{Seat: seat})
}

// closed 本轮是否结束：除最后出牌者外，所有仍在打的玩家都已过牌
// active 为仍有手牌的座位
func (t *Trick) closed(active SeatSet) bool {
	for s := range Seat(Players) {
		if !active.Has(s) || s == t.LastSeat {
			continue
		}
		if !t.Passed.Has(s) {
			return false
		}
	}
	return true
}

// nextLead 本轮结束后的首出
// 最后出牌者已出完时由其对家接风，对家也出完则顺延给下一个仍在打的玩家
// 无人出牌（不应出现）时首出不变
func (t *Trick) nextLead(active SeatSet) Seat {
	if t.LastPlay == nil {
		return t.Lead
	}
	if active.Has(t.LastSeat) {
		return t.LastSeat
	}
	if mate := t.LastSeat.Teammate(); active.Has(mate) {
		return mate
	}
	s := t.LastSeat
	for range Players {
		s = s.Next()
		if active.Has(s) {
			return s
		}
	}
	return t.Lead
}
