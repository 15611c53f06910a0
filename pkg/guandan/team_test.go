package guandan

import (
	"errors"
	"testing"
)

// TestSeatHelpers 测试座位与队伍
func TestSeatHelpers(t *testing.T) {
	tests := []struct {
		seat     Seat
		next     Seat
		teammate Seat
		team     Team
	}{
		{SeatSouth, SeatWest, SeatNorth, TeamA},
		{SeatWest, SeatNorth, SeatEast, TeamB},
		{SeatNorth, SeatEast, SeatSouth, TeamA},
		{SeatEast, SeatSouth, SeatWest, TeamB},
	}

	for _, tt := range tests {
		if got := tt.seat.Next(); got != tt.next {
			t.Errorf("Seat(%d).Next() = %d, want %d", tt.seat, got, tt.next)
		}
		if got := tt.seat.Teammate(); got != tt.teammate {
			t.Errorf("Seat(%d).Teammate() = %d, want %d", tt.seat, got, tt.teammate)
		}
		if got := tt.seat.Team(); got != tt.team {
			t.Errorf("Seat(%d).Team() = %v, want %v", tt.seat, got, tt.team)
		}
		if !tt.seat.IsTeammate(tt.teammate) || tt.seat.IsTeammate(tt.seat) || tt.seat.IsTeammate(tt.next) {
			t.Errorf("Seat(%d).IsTeammate wrong", tt.seat)
		}
	}

	var ss SeatSet
	ss.Add(SeatWest).Add(SeatEast)
	if !ss.Has(SeatWest) || ss.Has(SeatSouth) || ss.Len() != 2 {
		t.Errorf("SeatSet = %08b", ss)
	}
	ss.Clear(SeatWest)
	if ss.Has(SeatWest) || ss.Len() != 1 {
		t.Errorf("SeatSet.Clear = %08b", ss)
	}
}

// TestFinishOrderRecord 测试名次记录
func TestFinishOrderRecord(t *testing.T) {
	var fo FinishOrder
	for _, s := range []Seat{SeatNorth, SeatSouth} {
		if err := fo.Record(s); err != nil {
			t.Fatalf("Record(%d) error: %v", s, err)
		}
	}
	if err := fo.Record(SeatNorth); !errors.Is(err, ErrOutOfSequence) {
		t.Errorf("duplicate Record error = %v, want ErrOutOfSequence", err)
	}
	if fo.Complete() {
		t.Fatal("should not be complete with 2 finishers")
	}

	if err := fo.Record(SeatEast); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if !fo.Complete() {
		t.Fatal("should be complete after 3 finishers")
	}
	if fo[3] != SeatWest {
		t.Errorf("last = %d, want %d", fo[3], SeatWest)
	}
	if err := fo.Record(SeatWest); !errors.Is(err, ErrOutOfSequence) {
		t.Errorf("Record after complete error = %v, want ErrOutOfSequence", err)
	}
	if fo.RankOf(SeatSouth) != 2 || fo.RankOf(SeatWest) != 4 {
		t.Errorf("RankOf wrong: %v", fo)
	}
}

// TestPromotion 测试升级数
func TestPromotion(t *testing.T) {
	tests := []struct {
		name   string
		order  FinishOrder
		winner Team
		want   int
		double bool
	}{
		{"双上", FinishOrder{SeatSouth, SeatNorth, SeatWest, SeatEast}, TeamA, 3, true},
		{"单上", FinishOrder{SeatSouth, SeatWest, SeatNorth, SeatEast}, TeamA, 2, false},
		{"平上", FinishOrder{SeatSouth, SeatWest, SeatEast, SeatNorth}, TeamA, 1, false},
		{"B队双上", FinishOrder{SeatEast, SeatWest, SeatNorth, SeatSouth}, TeamB, 3, true},
		{"未完成", FinishOrder{SeatSouth, SeatNorth}, TeamA, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.Promotion(); got != tt.want {
				t.Errorf("Promotion() = %d, want %d", got, tt.want)
			}
			if got := tt.order.Winner(); got != tt.winner {
				t.Errorf("Winner() = %v, want %v", got, tt.winner)
			}
			if got := tt.order.IsDoubleDown(); got != tt.double {
				t.Errorf("IsDoubleDown() = %v, want %v", got, tt.double)
			}
		})
	}
}

// TestNewRoundResult 测试一局结算与翻倍
func TestNewRoundResult(t *testing.T) {
	if _, err := NewRoundResult(FinishOrder{SeatSouth}, 0); !errors.Is(err, ErrOutOfSequence) {
		t.Errorf("incomplete order error = %v, want ErrOutOfSequence", err)
	}

	res, err := NewRoundResult(FinishOrder{SeatWest, SeatSouth, SeatEast, SeatNorth}, 3)
	if err != nil {
		t.Fatalf("NewRoundResult error: %v", err)
	}
	if res.Winner != TeamB || res.Promotion != 2 || res.Multiplier != 8 {
		t.Errorf("result = %+v", res)
	}
}

// TestAdvance 测试级牌推进与过门
func TestAdvance(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name      string
		level     TeamLevel
		promotion int
		want      TeamLevel
		entered   bool
		failed    bool
		won       bool
	}{
		{"升三级", TeamLevel{Level: Rank2}, 3, TeamLevel{Level: Rank5}, false, false, false},
		{"升一级", TeamLevel{Level: Rank9}, 1, TeamLevel{Level: Rank10}, false, false, false},
		{"升到A进入过门", TeamLevel{Level: RankQ}, 2, TeamLevel{Level: RankA, AtGate: true}, true, false, false},
		{"封顶A", TeamLevel{Level: RankK}, 3, TeamLevel{Level: RankA, AtGate: true}, true, false, false},
		{"过门成功", TeamLevel{Level: RankA, AtGate: true}, 3, TeamLevel{Level: RankA, AtGate: true}, false, false, true},
		{"过门失败单上", TeamLevel{Level: RankA, AtGate: true}, 2, TeamLevel{Level: RankJ, GateAttempts: 1}, false, true, false},
		{"过门失败平上", TeamLevel{Level: RankA, AtGate: true, GateAttempts: 1}, 1, TeamLevel{Level: RankJ, GateAttempts: 2}, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := [2]TeamLevel{tt.level, {Level: Rank7}}
			res := RoundResult{Winner: TeamA, Promotion: tt.promotion}
			got, out := Advance(levels, res, opts)
			if got[TeamA] != tt.want {
				t.Errorf("level = %+v, want %+v", got[TeamA], tt.want)
			}
			if got[TeamB] != levels[TeamB] {
				t.Errorf("loser level changed: %+v", got[TeamB])
			}
			if out.GateEntered != tt.entered || out.GateFailed != tt.failed || out.MatchWon != tt.won {
				t.Errorf("outcome = %+v", out)
			}
			if out.From != tt.level.Level || out.To != tt.want.Level {
				t.Errorf("outcome from/to = %d/%d", out.From, out.To)
			}
		})
	}
}

// TestAdvanceMaxGateFailures 过门失败达到上限回到 2
func TestAdvanceMaxGateFailures(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxGateFailures = 3
	levels := [2]TeamLevel{{Level: RankA, AtGate: true, GateAttempts: 2}, {Level: Rank2}}

	got, out := Advance(levels, RoundResult{Winner: TeamA, Promotion: 1}, opts)
	if !out.GateFailed {
		t.Fatal("gate should fail")
	}
	if got[TeamA] != (TeamLevel{Level: Rank2}) {
		t.Errorf("level = %+v, want reset to 2", got[TeamA])
	}
}

// TestGlobalLevel 取两队较大的级牌
func TestGlobalLevel(t *testing.T) {
	if got := GlobalLevel([2]TeamLevel{{Level: Rank5}, {Level: RankQ}}); got != RankQ {
		t.Errorf("GlobalLevel = %d, want %d", got, RankQ)
	}
}
