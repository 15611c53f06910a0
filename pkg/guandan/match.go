package guandan

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Match 一整场比赛，负责发牌、进贡、出牌与升级的衔接
// 所有状态转换都返回 Events，Match 本身不做任何分发
type Match struct {
	Options   Options        `json:"options"`
	Status    MatchStatus    `json:"status"`
	Levels    [2]TeamLevel   `json:"levels"`
	Wild      Rank           `json:"wild"`
	Deck      Cards          `json:"deck,omitempty"` // 本局发牌前的牌序
	Hands     [Players]Cards `json:"hands"`          // 进贡阶段的手牌，出牌阶段以 Round 为准
	Round     *Round         `json:"round,omitempty"`
	Tribute   *Tribute       `json:"tribute,omitempty"`
	PrevOrder FinishOrder    `json:"prevOrder,omitempty"`
	RoundNo   int            `json:"roundNo"`
	Winner    Team           `json:"winner"`
	Results   []RoundResult  `json:"results,omitempty"`
}

// NewMatch 新比赛，两队从 StartLevel 开始打
func NewMatch(opts Options) *Match {
	opts = opts.normalize()
	m := &Match{Options: opts, Status: MatchPlaying}
	for i := range m.Levels {
		m.Levels[i] = TeamLevel{Level: opts.StartLevel}
	}
	m.Wild = GlobalLevel(m.Levels)
	return m
}

// Phase 当前局所处的阶段
func (m *Match) Phase() RoundStatus {
	switch {
	case m.Tribute != nil && !m.Tribute.Done():
		return RoundTribute
	case m.Round == nil:
		return RoundWaiting
	}
	return m.Round.Status
}

// StartRound 洗牌后开始新的一局
func (m *Match) StartRound() (Events, error) {
	deck := NewDeck()
	deck.Shuffle()
	return m.StartRoundWithDeck(deck)
}

// StartRoundWithDeck 以给定牌序开始新的一局
func (m *Match) StartRoundWithDeck(deck Cards) (Events, error) {
	if m.Status == MatchWon {
		return nil, ErrMatchOver
	}
	if p := m.Phase(); p == RoundTribute || p == RoundPlaying {
		return nil, fmt.Errorf("%w: round %d in progress", ErrRoundState, m.RoundNo)
	}

	m.Wild = GlobalLevel(m.Levels)
	dealt, err := deck.Deal(Players, m.Wild)
	if err != nil {
		return nil, err
	}
	m.RoundNo++
	m.Deck = deck.Clone()
	m.Round = nil
	for i := range m.Hands {
		m.Hands[i] = dealt[i]
	}

	events := Events{{Kind: EventRoundStarted, Seat: SeatNone, Level: m.Wild, Rank: m.RoundNo}}
	for s := range Seat(Players) {
		events = append(events, Event{Kind: EventDealt, Seat: s, Cards: m.Hands[s].Clone()})
	}

	m.Tribute = ComputeTribute(m.PrevOrder, m.Levels, &m.Hands, m.Wild, m.Options)
	switch m.Tribute.Phase {
	case TributeSkipped:
		events = append(events, Event{Kind: EventTributeSkipped, Seat: SeatNone})
	case TributeAnti:
		for _, s := range m.Tribute.AntiSeats {
			events = append(events, Event{Kind: EventAntiTribute, Seat: s})
		}
	case TributeGiving:
		for _, g := range m.Tribute.Pending {
			events = append(events, Event{Kind: EventTributeRequired, Seat: g.From, To: g.To})
		}
	}
	log.Debug().Int("round", m.RoundNo).Int("level", int(m.Wild)).Int8("tribute", int8(m.Tribute.Phase)).Msg("round started")

	if m.Tribute.Done() {
		events = append(events, m.beginPlay()...)
	}
	return events, nil
}

func (m *Match) beginPlay() Events {
	lead := m.Tribute.Lead
	m.Round = NewRound(m.Hands, m.Wild, lead)
	return Events{{Kind: EventLeadAssigned, Seat: lead}}
}

// SubmitTribute 下游进贡
func (m *Match) SubmitTribute(seat Seat, cards Cards) (Events, error) {
	if m.Phase() != RoundTribute {
		return nil, fmt.Errorf("%w: no tribute pending", ErrOutOfSequence)
	}
	tr, err := m.Tribute.SubmitTribute(seat, cards)
	if err != nil {
		return nil, err
	}
	return Events{{Kind: EventTributeGiven, Seat: tr.From, To: tr.To, Cards: Cards{tr.Card}}}, nil
}

// SubmitReturn 还贡，全部还完后开始出牌
func (m *Match) SubmitReturn(seat Seat, card Card) (Events, error) {
	if m.Phase() != RoundTribute {
		return nil, fmt.Errorf("%w: no return pending", ErrOutOfSequence)
	}
	tr, err := m.Tribute.SubmitReturn(seat, card)
	if err != nil {
		return nil, err
	}
	events := Events{{Kind: EventReturnGiven, Seat: tr.From, To: tr.To, Cards: Cards{tr.Card}}}
	if m.Tribute.Done() {
		log.Debug().Int("round", m.RoundNo).Int("lead", int(m.Tribute.Lead)).Msg("tribute resolved")
		events = append(events, m.beginPlay()...)
	}
	return events, nil
}

// Validate 校验出牌但不改变状态
func (m *Match) Validate(seat Seat, cards Cards) Verdict {
	if err := m.playing(); err != nil {
		return reject(err)
	}
	return m.Round.Validate(seat, cards)
}

// CanFollow 当前出牌者手里是否有牌能压过桌面上的牌
func (m *Match) CanFollow() bool {
	if m.playing() != nil {
		return false
	}
	return m.Round.Hands[m.Round.Turn].CanBeat(m.Round.Trick.LastPlay, m.Wild)
}

// Play 出牌
func (m *Match) Play(seat Seat, cards Cards) (Events, error) {
	if err := m.playing(); err != nil {
		return nil, err
	}
	events, err := m.Round.Play(seat, cards)
	if err != nil {
		return events, err
	}
	return m.after(events), nil
}

// Pass 过牌
func (m *Match) Pass(seat Seat) (Events, error) {
	if err := m.playing(); err != nil {
		return nil, err
	}
	events, err := m.Round.Pass(seat)
	if err != nil {
		return events, err
	}
	return m.after(events), nil
}

func (m *Match) playing() error {
	if m.Status == MatchWon {
		return ErrMatchOver
	}
	if m.Phase() != RoundPlaying {
		return fmt.Errorf("%w: round not playing", ErrRoundState)
	}
	return nil
}

func (m *Match) after(events Events) Events {
	for _, e := range events {
		switch e.Kind {
		case EventTrickClosed:
			log.Debug().Int("round", m.RoundNo).Int("seat", int(e.Seat)).Msg("trick closed")
		case EventDefect:
			log.Warn().Int("round", m.RoundNo).Int("seat", int(e.Seat)).Str("note", e.Note).Msg("defect")
		}
	}
	if !m.Round.IsFinished() {
		return events
	}
	return append(events, m.finishRound()...)
}

// finishRound 结算并推进级牌
func (m *Match) finishRound() Events {
	res, err := m.Round.Result()
	if err != nil {
		// 结束的局名次一定完整
		panic(err)
	}
	m.Results = append(m.Results, res)
	m.PrevOrder = res.Order

	var out LevelOutcome
	m.Levels, out = Advance(m.Levels, res, m.Options)
	events := Events{{Kind: EventRoundFinished, Seat: res.Order[0], Team: res.Winner, Promotion: res.Promotion, Rank: res.Multiplier}}
	if out.From != out.To {
		events = append(events, Event{Kind: EventLevelChanged, Seat: SeatNone, Team: out.Team, Level: out.To})
	}
	if out.GateEntered {
		events = append(events, Event{Kind: EventGateEntered, Seat: SeatNone, Team: out.Team, Level: out.To})
	}
	if out.GateFailed {
		events = append(events, Event{Kind: EventGateFailed, Seat: SeatNone, Team: out.Team, Level: out.To})
	}
	if out.MatchWon {
		m.Status = MatchWon
		m.Winner = out.Team
		events = append(events, Event{Kind: EventMatchWon, Seat: SeatNone, Team: out.Team, Level: out.To})
		log.Info().Int("rounds", m.RoundNo).Str("team", out.Team.String()).Msg("match won")
	}
	log.Debug().Int("round", m.RoundNo).Str("team", res.Winner.String()).Int("promotion", res.Promotion).
		Int("from", int(out.From)).Int("to", int(out.To)).Msg("round finished")
	return events
}
