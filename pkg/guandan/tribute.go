package guandan

import (
	"fmt"
	"slices"
)

// TributePhase 进贡阶段
type TributePhase int8

const (
	TributeSkipped   TributePhase = iota // 第一局或级差不足，不进贡
	TributeAnti                          // 抗贡
	TributeGiving                        // 等待进贡
	TributeReturning                     // 等待还贡
	TributeDone                          // 进贡还贡都已完成
)

// 还贡牌的最大点数
const maxReturnRank = Rank10

// Give 一笔需要进贡的记录
type Give struct {
	From  Seat `json:"from"`
	To    Seat `json:"to"`
	Count int  `json:"count"`
}

// Transfer 一张实际移动的牌
type Transfer struct {
	From Seat `json:"from"`
	To   Seat `json:"to"`
	Card Card `json:"card"`
}

// Tribute 一局开始前的进贡/还贡，直接修改 hands 中的手牌
type Tribute struct {
	Phase     TributePhase `json:"phase"`
	Wild      Rank         `json:"wild"`
	Double    bool         `json:"double"`
	AntiSeats []Seat       `json:"antiSeats,omitempty"`
	Pending   []Give       `json:"pending,omitempty"`
	Given     []Transfer   `json:"given,omitempty"`
	Returned  []Transfer   `json:"returned,omitempty"`
	Lead      Seat         `json:"lead"`
	Strict    bool         `json:"strict"`

	hands *[Players]Cards
}

// TributeResult 进贡结果
type TributeResult struct {
	Phase     TributePhase `json:"phase"`
	AntiSeats []Seat       `json:"antiSeats,omitempty"`
	Given     []Transfer   `json:"given,omitempty"`
	Returned  []Transfer   `json:"returned,omitempty"`
	Lead      Seat         `json:"lead"`
}

// ComputeTribute 根据上一局的名次和两队级牌决定本局的进贡
// prev 为空表示比赛第一局；两队级差小于 TributeThreshold 时不进贡；
// 三、四名是队友为双下，否则为单下；需要进贡的下游持有大小王时抗贡
func ComputeTribute(prev FinishOrder, levels [2]TeamLevel, hands *[Players]Cards, wild Rank, opts Options) *Tribute {
	opts = opts.normalize()
	t := &Tribute{Phase: TributeSkipped, Wild: wild, Lead: opts.FirstLead, Strict: opts.StrictTribute, hands: hands}
	if !prev.Complete() {
		return t
	}
	t.Lead = prev[0]

	diff := int(levels[0].Level) - int(levels[1].Level)
	if diff < 0 {
		diff = -diff
	}
	if diff < opts.TributeThreshold {
		return t
	}

	t.Double = prev.IsDoubleDown()
	downs := []Seat{prev[3]}
	if t.Double {
		downs = append(downs, prev[2])
	}
	for _, s := range downs {
		if hands[s].HasBothJokers() {
			t.AntiSeats = append(t.AntiSeats, s)
		}
	}
	if len(t.AntiSeats) > 0 {
		t.Phase = TributeAnti
		return t
	}

	t.Phase = TributeGiving
	t.Pending = append(t.Pending, Give{From: prev[3], To: prev[0], Count: 1})
	if t.Double {
		t.Pending = append(t.Pending, Give{From: prev[2], To: prev[1], Count: 1})
	}
	return t
}

// Bind 恢复存档后重新关联手牌
func (t *Tribute) Bind(hands *[Players]Cards) {
	t.hands = hands
}

// Done 进贡流程是否结束（含不进贡与抗贡）
func (t *Tribute) Done() bool {
	return t.Phase == TributeSkipped || t.Phase == TributeAnti || t.Phase == TributeDone
}

// HasReturned seat 是否已经还过贡
func (t *Tribute) HasReturned(seat Seat) bool {
	return slices.ContainsFunc(t.Returned, func(r Transfer) bool { return r.From == seat })
}

// Result 进贡结果
func (t *Tribute) Result() TributeResult {
	return TributeResult{
		Phase:     t.Phase,
		AntiSeats: slices.Clone(t.AntiSeats),
		Given:     slices.Clone(t.Given),
		Returned:  slices.Clone(t.Returned),
		Lead:      t.Lead,
	}
}

// Tributable 可以用来进贡的牌：非王、非万能牌
func Tributable(c Card, wild Rank) bool {
	return !c.IsJoker() && !c.IsWild(wild)
}

// HighestTribute 手牌中最大的可贡牌
func HighestTribute(hand Cards, wild Rank) (Card, bool) {
	var best Card
	found := false
	for _, c := range hand {
		if Tributable(c, wild) && (!found || c.PlayValue(wild) > best.PlayValue(wild)) {
			best, found = c, true
		}
	}
	return best, found
}

// ReturnCandidates 还贡时允许还的牌
// 优先 3..10 的非王非万能牌；没有时只能还最小的非王牌；只剩王时还小王
func ReturnCandidates(hand Cards, wild Rank) Cards {
	var low Cards
	for _, c := range hand {
		if c.Rank >= Rank3 && c.Rank <= maxReturnRank && Tributable(c, wild) {
			low = append(low, c)
		}
	}
	if len(low) > 0 {
		return low
	}

	minValue := -1
	for _, c := range hand {
		if !c.IsJoker() && (minValue < 0 || c.PlayValue(wild) < minValue) {
			minValue = c.PlayValue(wild)
		}
	}
	var out Cards
	for _, c := range hand {
		if minValue >= 0 && !c.IsJoker() && c.PlayValue(wild) == minValue {
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, r := range []Rank{RankJokerSmall, RankJokerBig} {
		for _, c := range hand {
			if c.Rank == r {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// SubmitTribute 下游进贡
func (t *Tribute) SubmitTribute(seat Seat, cards Cards) (Transfer, error) {
	if t.Phase != TributeGiving {
		return Transfer{}, fmt.Errorf("%w: not accepting tribute", ErrOutOfSequence)
	}
	i := slices.IndexFunc(t.Pending, func(g Give) bool { return g.From == seat })
	if i < 0 {
		return Transfer{}, fmt.Errorf("%w: seat %d owes no tribute", ErrOutOfSequence, seat)
	}
	g := t.Pending[i]
	if len(cards) != g.Count {
		return Transfer{}, fmt.Errorf("%w: want %d card, got %d", ErrTributeRule, g.Count, len(cards))
	}
	c := cards[0]
	if !Tributable(c, t.Wild) {
		return Transfer{}, fmt.Errorf("%w: %s cannot be tribute", ErrTributeRule, c)
	}
	hand := t.hands[seat]
	if hand.IndexOf(c) < 0 {
		return Transfer{}, fmt.Errorf("%w: %s", ErrInvalidCards, c)
	}
	if t.Strict {
		if best, _ := HighestTribute(hand, t.Wild); c.PlayValue(t.Wild) != best.PlayValue(t.Wild) {
			return Transfer{}, fmt.Errorf("%w: %s is not the highest card", ErrTributeRule, c)
		}
	}

	tr := t.move(g.From, g.To, c)
	t.Pending = slices.Delete(t.Pending, i, i+1)
	t.Given = append(t.Given, tr)
	if len(t.Pending) == 0 {
		t.Phase = TributeReturning
	}
	return tr, nil
}

// SubmitReturn 收到进贡的玩家还贡给进贡者
func (t *Tribute) SubmitReturn(seat Seat, card Card) (Transfer, error) {
	if t.Phase != TributeReturning {
		return Transfer{}, fmt.Errorf("%w: not accepting return", ErrOutOfSequence)
	}
	var given *Transfer
	for i := range t.Given {
		g := &t.Given[i]
		if g.To == seat && !t.HasReturned(seat) {
			given = g
			break
		}
	}
	if given == nil {
		return Transfer{}, fmt.Errorf("%w: seat %d owes no return", ErrOutOfSequence, seat)
	}
	hand := t.hands[seat]
	if hand.IndexOf(card) < 0 {
		return Transfer{}, fmt.Errorf("%w: %s", ErrInvalidCards, card)
	}
	if !slices.Contains(ReturnCandidates(hand, t.Wild), card) {
		return Transfer{}, fmt.Errorf("%w: %s cannot be returned", ErrTributeRule, card)
	}

	tr := t.move(seat, given.From, card)
	t.Returned = append(t.Returned, tr)
	if len(t.Returned) == len(t.Given) {
		t.Phase = TributeDone
	}
	return tr, nil
}

func (t *Tribute) move(from, to Seat, c Card) Transfer {
	t.hands[from], _ = t.hands[from].Remove(Cards{c})
	t.hands[to] = append(t.hands[to], c)
	t.hands[to].Sort(t.Wild)
	return Transfer{From: from, To: to, Card: c}
}
