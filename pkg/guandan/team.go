package guandan

import (
	"fmt"
	"slices"
)

// FinishOrder 出完牌的先后顺序，下标 0 为头游
type FinishOrder []Seat

// Record 记录一个出完牌的座位，重复记录返回 ErrOutOfSequence
// 记满三人后自动补上最后一名
func (fo *FinishOrder) Record(seat Seat) error {
	if !seat.Valid() {
		panic(fmt.Sprintf("guandan: invalid seat %d", seat))
	}
	if slices.Contains(*fo, seat) {
		return fmt.Errorf("%w: seat %d already finished", ErrOutOfSequence, seat)
	}
	if len(*fo) >= Players {
		return fmt.Errorf("%w: finish order complete", ErrOutOfSequence)
	}
	*fo = append(*fo, seat)
	if len(*fo) == Players-1 {
		for s := range Seat(Players) {
			if !slices.Contains(*fo, s) {
				*fo = append(*fo, s)
				break
			}
		}
	}
	return nil
}

// Complete 四个名次都已确定
func (fo FinishOrder) Complete() bool {
	return len(fo) == Players
}

// RankOf 座位的名次 1-4，未完成返回 0
func (fo FinishOrder) RankOf(seat Seat) int {
	return slices.Index(fo, seat) + 1
}

// Winner 头游所在的队伍
func (fo FinishOrder) Winner() Team {
	return fo[0].Team()
}

// Promotion 获胜队的升级数
// 3: 双上(1,2), 2: 单上(1,3), 1: 平上(1,4)
func (fo FinishOrder) Promotion() int {
	if !fo.Complete() {
		return 0
	}
	switch fo.RankOf(fo[0].Teammate()) {
	case 2:
		return 3
	case 3:
		return 2
	case 4:
		return 1
	}
	return 0
}

// IsDoubleDown 三、四名是队友
func (fo FinishOrder) IsDoubleDown() bool {
	return fo.Complete() && fo[2].IsTeammate(fo[3])
}

// RoundResult 一局的结算信息
type RoundResult struct {
	Order      FinishOrder `json:"order"`
	Winner     Team        `json:"winner"`
	Promotion  int         `json:"promotion"`
	BigBombs   int         `json:"bigBombs"`
	Multiplier int         `json:"multiplier"` // 2^BigBombs
}

// NewRoundResult 依据完整的名次计算结算信息
func NewRoundResult(order FinishOrder, bigBombs int) (RoundResult, error) {
	if !order.Complete() {
		return RoundResult{}, fmt.Errorf("%w: %d of %d finished", ErrOutOfSequence, len(order), Players)
	}
	return RoundResult{
		Order:      slices.Clone(order),
		Winner:     order.Winner(),
		Promotion:  order.Promotion(),
		BigBombs:   bigBombs,
		Multiplier: 1 << bigBombs,
	}, nil
}

// TeamLevel 队伍的级牌状态
type TeamLevel struct {
	Level        Rank `json:"level"`
	AtGate       bool `json:"atGate"`
	GateAttempts int  `json:"gateAttempts"`
}

// GlobalLevel 当前级牌，取两队级牌的较大者
func GlobalLevel(levels [2]TeamLevel) Rank {
	return max(levels[0].Level, levels[1].Level)
}

// LevelOutcome 一局结束后获胜队的级牌变化
type LevelOutcome struct {
	Team        Team `json:"team"`
	From        Rank `json:"from"`
	To          Rank `json:"to"`
	Promotion   int  `json:"promotion"`
	GateEntered bool `json:"gateEntered"`
	GateFailed  bool `json:"gateFailed"`
	MatchWon    bool `json:"matchWon"`
}

// Advance 按结算结果推进级牌
// 在门上（A）时只有双上才算过门成功赢得比赛，否则过门失败回落到 GateResetLevel；
// 首次升到 A 时进入过门状态，比赛不结束
func Advance(levels [2]TeamLevel, res RoundResult, opts Options) ([2]TeamLevel, LevelOutcome) {
	opts = opts.normalize()
	t := levels[res.Winner]
	out := LevelOutcome{Team: res.Winner, From: t.Level, Promotion: res.Promotion}

	if t.AtGate {
		if res.Promotion == 3 {
			out.MatchWon = true
		} else {
			out.GateFailed = true
			t.AtGate = false
			t.GateAttempts++
			t.Level = opts.GateResetLevel
			if opts.MaxGateFailures > 0 && t.GateAttempts >= opts.MaxGateFailures {
				t.Level = MinLevel
				t.GateAttempts = 0
			}
		}
	} else {
		t.Level = min(t.Level+Rank(res.Promotion), MaxLevel)
		if t.Level == MaxLevel {
			t.AtGate = true
			out.GateEntered = true
		}
	}

	out.To = t.Level
	levels[res.Winner] = t
	return levels, out
}
