package guandan

import (
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

// jokerDeck 未洗的牌，四张王换到南家手里
func jokerDeck() Cards {
	deck := NewDeck()
	for i, j := range []int{52, 53, 106, 107} {
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// resolveTribute 进贡最大的牌，还第一张可还的牌
func resolveTribute(t *testing.T, m *Match) Events {
	t.Helper()
	var events Events
	for len(m.Tribute.Pending) > 0 {
		g := m.Tribute.Pending[0]
		card, ok := HighestTribute(m.Hands[g.From], m.Wild)
		if !ok {
			t.Fatalf("seat %d has nothing to tribute", g.From)
		}
		es, err := m.SubmitTribute(g.From, Cards{card})
		if err != nil {
			t.Fatalf("SubmitTribute error: %v", err)
		}
		events = append(events, es...)
	}
	for _, g := range m.Tribute.Given {
		card := ReturnCandidates(m.Hands[g.To], m.Wild)[0]
		es, err := m.SubmitReturn(g.To, card)
		if err != nil {
			t.Fatalf("SubmitReturn error: %v", err)
		}
		events = append(events, es...)
	}
	return events
}

// playOut 首出时出最小的单张，否则过牌，直到本局结束
func playOut(t *testing.T, m *Match) Events {
	t.Helper()
	var events Events
	for m.Phase() == RoundPlaying {
		r := m.Round
		seat := r.Turn
		var (
			es  Events
			err error
		)
		if r.Trick.IsOpen() {
			hand := r.Hands[seat]
			es, err = m.Play(seat, Cards{hand[len(hand)-1]})
		} else {
			es, err = m.Pass(seat)
		}
		if err != nil {
			t.Fatalf("seat %d error: %v", seat, err)
		}
		events = append(events, es...)
	}
	return events
}

// TestMatchFlow 完整比赛：每局南北双上，五局后过门成功
func TestMatchFlow(t *testing.T) {
	m := NewMatch(DefaultOptions())
	if _, err := m.Play(SeatSouth, MustParseCards("S3")); !errors.Is(err, ErrRoundState) {
		t.Errorf("play before start error = %v, want ErrRoundState", err)
	}

	wantLevels := []Rank{Rank5, Rank8, RankJ, RankA, RankA}
	wantTribute := []bool{false, false, true, true, true}
	for round, want := range wantLevels {
		events, err := m.StartRoundWithDeck(jokerDeck())
		if err != nil {
			t.Fatalf("round %d StartRound error: %v", round+1, err)
		}
		if e, ok := events.Find(EventRoundStarted); !ok || e.Level != GlobalLevel(m.Levels) || e.Rank != round+1 {
			t.Errorf("round %d started event = %+v", round+1, e)
		}
		if events.Has(EventTributeRequired) != wantTribute[round] {
			t.Errorf("round %d tribute = %v, want %v", round+1, !wantTribute[round], wantTribute[round])
		}
		if m.Phase() == RoundTribute {
			if _, err := m.StartRoundWithDeck(jokerDeck()); !errors.Is(err, ErrRoundState) {
				t.Errorf("restart during tribute error = %v", err)
			}
			events = append(events, resolveTribute(t, m)...)
		} else if _, err := m.SubmitTribute(SeatEast, nil); !errors.Is(err, ErrOutOfSequence) {
			t.Errorf("tribute without pending error = %v", err)
		}
		if e, ok := events.Find(EventLeadAssigned); !ok || e.Seat != SeatSouth {
			t.Fatalf("round %d lead = %+v", round+1, e)
		}

		events = playOut(t, m)
		res := m.Results[len(m.Results)-1]
		if res.Promotion != 3 || res.Winner != TeamA {
			t.Errorf("round %d result = %+v", round+1, res)
		}
		if m.Levels[TeamA].Level != want {
			t.Errorf("round %d level = %d, want %d", round+1, m.Levels[TeamA].Level, want)
		}
		if m.Levels[TeamB].Level != Rank2 {
			t.Errorf("round %d team B level = %d", round+1, m.Levels[TeamB].Level)
		}
		if got := events.Has(EventGateEntered); got != (round == 3) {
			t.Errorf("round %d gate entered = %v", round+1, got)
		}
		if got := events.Has(EventMatchWon); got != (round == 4) {
			t.Errorf("round %d match won = %v", round+1, got)
		}
	}

	if m.Status != MatchWon || m.Winner != TeamA {
		t.Fatalf("status = %v, winner = %v", m.Status, m.Winner)
	}
	if _, err := m.StartRound(); !errors.Is(err, ErrMatchOver) {
		t.Errorf("StartRound after win error = %v, want ErrMatchOver", err)
	}
}

// TestMatchStartRound 洗牌开局，每人 27 张
func TestMatchStartRound(t *testing.T) {
	m := NewMatch(DefaultOptions())
	events, err := m.StartRound()
	if err != nil {
		t.Fatalf("StartRound error: %v", err)
	}
	dealt := 0
	for _, e := range events {
		if e.Kind == EventDealt {
			dealt += len(e.Cards)
		}
	}
	if dealt != DeckSize {
		t.Errorf("dealt = %d, want %d", dealt, DeckSize)
	}
	if !events.Has(EventTributeSkipped) || m.Phase() != RoundPlaying {
		t.Errorf("first round should skip tribute, phase %v", m.Phase())
	}
	if _, err := m.StartRound(); !errors.Is(err, ErrRoundState) {
		t.Errorf("StartRound while playing error = %v, want ErrRoundState", err)
	}
	if _, err := m.StartRoundWithDeck(NewDeck()[:100]); !errors.Is(err, ErrRoundState) {
		t.Errorf("StartRoundWithDeck while playing error = %v", err)
	}
}

// TestMatchAntiTribute 下游持双王时抗贡，头游首出
func TestMatchAntiTribute(t *testing.T) {
	m := NewMatch(DefaultOptions())
	m.Levels = tributeGap
	m.PrevOrder = FinishOrder{SeatWest, SeatNorth, SeatEast, SeatSouth}

	events, err := m.StartRoundWithDeck(jokerDeck())
	if err != nil {
		t.Fatalf("StartRound error: %v", err)
	}
	if e, ok := events.Find(EventAntiTribute); !ok || e.Seat != SeatSouth {
		t.Errorf("anti tribute event = %+v", events)
	}
	if e, ok := events.Find(EventLeadAssigned); !ok || e.Seat != SeatWest {
		t.Errorf("lead = %+v, want west", e)
	}
	if m.Phase() != RoundPlaying || len(m.Round.Hands[SeatSouth]) != DeckSize/Players {
		t.Errorf("phase %v, south %d cards", m.Phase(), len(m.Round.Hands[SeatSouth]))
	}
}

// TestMatchCanFollow 测试当前玩家能否跟牌
func TestMatchCanFollow(t *testing.T) {
	m := NewMatch(DefaultOptions())
	if m.CanFollow() {
		t.Error("should not follow before start")
	}
	if _, err := m.StartRoundWithDeck(jokerDeck()); err != nil {
		t.Fatalf("StartRound error: %v", err)
	}
	if !m.CanFollow() {
		t.Error("lead can always play")
	}
	if _, err := m.Play(SeatSouth, MustParseCards("SJK BJK SJK#1 BJK#1")); err != nil {
		t.Fatalf("king bomb error: %v", err)
	}
	if m.CanFollow() {
		t.Error("nothing beats king bomb")
	}
	if v := m.Validate(SeatWest, m.Round.Hands[SeatWest][:1]); v.Reason != ReasonTooWeak {
		t.Errorf("Validate reason = %v, want TooWeak", v.Reason)
	}
}
