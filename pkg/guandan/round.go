package guandan

import (
	"fmt"
	"slices"
)

// Round 一局，从出牌开始到四个名次确定
type Round struct {
	Status   RoundStatus     `json:"status"`
	Wild     Rank            `json:"wild"`
	Hands    [Players]Cards  `json:"hands"`
	Turn     Seat            `json:"turn"`
	Trick    Trick           `json:"trick"`
	Tricks   []Trick         `json:"tricks,omitempty"` // 已结束的轮次
	Finish   FinishOrder     `json:"finish"`
	BigBombs int             `json:"bigBombs"`
	Played   [Players]Combos `json:"played,omitempty"` // 每个玩家打出过的牌型
}

// Combos 一组牌型
type Combos []Combination

// Cards 所有牌
func (cs Combos) Cards() (all Cards) {
	for _, c := range cs {
		all = append(all, c.Cards...)
	}
	return
}

// NewRound 以发好的手牌创建一局，lead 首出
func NewRound(hands [Players]Cards, wild Rank, lead Seat) *Round {
	if !lead.Valid() {
		panic(fmt.Sprintf("guandan: invalid lead seat %d", lead))
	}
	r := &Round{
		Status: RoundPlaying,
		Wild:   wild,
		Turn:   lead,
		Trick:  NewTrick(lead),
	}
	for i := range hands {
		r.Hands[i] = slices.Clone(hands[i])
		r.Hands[i].Sort(wild)
	}
	return r
}

// Active 仍有手牌、未出完的座位
func (r *Round) Active() SeatSet {
	var ss SeatSet
	for s := range Seat(Players) {
		if r.Finish.RankOf(s) == 0 {
			ss.Add(s)
		}
	}
	return ss
}

// Hand 座位的手牌
func (r *Round) Hand(seat Seat) Cards {
	return r.Hands[seat]
}

// IsFinished 本局是否结束
func (r *Round) IsFinished() bool {
	return r.Status == RoundFinished
}

func (r *Round) checkTurn(seat Seat) error {
	if r.Status != RoundPlaying {
		return fmt.Errorf("%w: round not playing", ErrRoundState)
	}
	if !seat.Valid() {
		return fmt.Errorf("%w: invalid seat %d", ErrWrongTurn, seat)
	}
	if seat != r.Turn {
		return fmt.Errorf("%w: seat %d, turn %d", ErrWrongTurn, seat, r.Turn)
	}
	return nil
}

// Validate 校验当前出牌者的出牌，不改变状态
func (r *Round) Validate(seat Seat, cards Cards) Verdict {
	if err := r.checkTurn(seat); err != nil {
		return reject(err)
	}
	return ValidatePlay(cards, r.Trick.LastPlay, r.Hands[seat], r.Wild)
}

// Play 玩家出牌
func (r *Round) Play(seat Seat, cards Cards) (Events, error) {
	v := r.Validate(seat, cards)
	if !v.OK() {
		return nil, v.Err()
	}

	c := v.Combination
	r.Hands[seat], _ = r.Hands[seat].Remove(cards)
	r.Trick.play(seat, c)
	r.Played[seat] = append(r.Played[seat], c)
	if c.IsBigBomb() {
		r.BigBombs++
	}
	events := Events{{Kind: EventPlayed, Seat: seat, Combination: &c, Cards: c.Cards}}

	if len(r.Hands[seat]) == 0 {
		fin, err := r.RecordFinish(seat)
		if err != nil {
			return events, err
		}
		events = append(events, fin...)
		if r.IsFinished() {
			return events, nil
		}
	}
	return append(events, r.advance(seat)...), nil
}

// Pass 玩家过牌，过牌后本轮不能再出
// 首出玩家过牌属于时序异常，记录为 EventDefect 但不会卡住牌局
func (r *Round) Pass(seat Seat) (Events, error) {
	if err := r.checkTurn(seat); err != nil {
		return nil, err
	}

	var events Events
	if r.Trick.IsOpen() {
		events = append(events, Event{Kind: EventDefect, Seat: seat, Note: "pass on open trick"})
	}
	r.Trick.pass(seat)
	events = append(events, Event{Kind: EventPassed, Seat: seat})
	return append(events, r.advance(seat)...), nil
}

// RecordFinish 记录玩家出完手牌，三人出完后本局结束
func (r *Round) RecordFinish(seat Seat) (Events, error) {
	if err := r.Finish.Record(seat); err != nil {
		return nil, err
	}
	events := Events{{Kind: EventPlayerFinished, Seat: seat, Rank: r.Finish.RankOf(seat)}}
	if r.Finish.Complete() {
		last := r.Finish[Players-1]
		events = append(events, Event{Kind: EventPlayerFinished, Seat: last, Rank: Players})
		r.Tricks = append(r.Tricks, r.Trick)
		r.Status = RoundFinished
		r.Turn = SeatNone
	}
	return events, nil
}

// Result 本局结算，未结束时返回 ErrOutOfSequence
func (r *Round) Result() (RoundResult, error) {
	return NewRoundResult(r.Finish, r.BigBombs)
}

// advance 一次动作之后：本轮结束则开新一轮，否则轮到下一个可以出牌的玩家
func (r *Round) advance(from Seat) Events {
	active := r.Active()
	openAllPassed := r.Trick.IsOpen() && r.Trick.Passed&active == active
	if openAllPassed || (!r.Trick.IsOpen() && r.Trick.closed(active)) {
		lead := r.Trick.nextLead(active)
		r.Tricks = append(r.Tricks, r.Trick)
		r.Trick = NewTrick(lead)
		r.Turn = lead
		return Events{{Kind: EventTrickClosed, Seat: lead}}
	}

	s := from
	for range Players {
		s = s.Next()
		if active.Has(s) && !r.Trick.Passed.Has(s) {
			r.Turn = s
			return nil
		}
	}
	// 不应到达：所有人都不能出牌时按本轮结束处理
	lead := r.Trick.nextLead(active)
	r.Tricks = append(r.Tricks, r.Trick)
	r.Trick = NewTrick(lead)
	r.Turn = lead
	return Events{{Kind: EventTrickClosed, Seat: lead}, {Kind: EventDefect, Seat: from, Note: "no eligible seat"}}
}
