package guandan

// EventKind 状态转换事件类型
type EventKind uint8

const (
	EventRoundStarted    EventKind = iota + 1 // 开局，Level 为本局级牌，Rank 为局数
	EventDealt                                // 发牌，Seat 拿到 Cards
	EventTributeSkipped                       // 无需进贡
	EventAntiTribute                          // 抗贡，Seat 为持双王的下游
	EventTributeRequired                      // Seat 需要向 To 进贡
	EventTributeGiven                         // Seat 向 To 进贡 Cards
	EventReturnGiven                          // Seat 向 To 还贡 Cards
	EventLeadAssigned                         // Seat 首出
	EventPlayed                               // Seat 出牌 Combination
	EventPassed                               // Seat 过牌
	EventTrickClosed                          // 一轮结束，Seat 下一轮首出
	EventPlayerFinished                       // Seat 出完手牌，Rank 为名次
	EventRoundFinished                        // 本局结束，Team 获胜，Promotion 为升级数，Rank 为翻倍数
	EventLevelChanged                         // Team 级牌变为 Level
	EventGateEntered                          // Team 打到 A，进入过门
	EventGateFailed                           // Team 过门失败，Level 为回落后的级牌
	EventMatchWon                             // Team 过门成功，赢得整场比赛
	EventDefect                               // 非正常时序（例如首出玩家过牌），Note 为说明
)

var eventNames = map[EventKind]string{
	EventRoundStarted:    "round_started",
	EventDealt:           "dealt",
	EventTributeSkipped:  "tribute_skipped",
	EventAntiTribute:     "anti_tribute",
	EventTributeRequired: "tribute_required",
	EventTributeGiven:    "tribute_given",
	EventReturnGiven:     "return_given",
	EventLeadAssigned:    "lead_assigned",
	EventPlayed:          "played",
	EventPassed:          "passed",
	EventTrickClosed:     "trick_closed",
	EventPlayerFinished:  "player_finished",
	EventRoundFinished:   "round_finished",
	EventLevelChanged:    "level_changed",
	EventGateEntered:     "gate_entered",
	EventGateFailed:      "gate_failed",
	EventMatchWon:        "match_won",
	EventDefect:          "defect",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event 状态转换以值的形式返回给调用方，由调用方决定分发给谁
type Event struct {
	Kind        EventKind    `json:"kind"`
	Seat        Seat         `json:"seat"`
	To          Seat         `json:"to,omitempty"`
	Team        Team         `json:"team,omitempty"`
	Level       Rank         `json:"level,omitempty"`
	Rank        int          `json:"rank,omitempty"`
	Promotion   int          `json:"promotion,omitempty"`
	Cards       Cards        `json:"cards,omitempty"`
	Combination *Combination `json:"combination,omitempty"`
	Note        string       `json:"note,omitempty"`
}

// Events 一次操作产生的事件序列
type Events []Event

// Has 是否包含某类事件
func (es Events) Has(kind EventKind) bool {
	for _, e := range es {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Find 第一个指定类型的事件
func (es Events) Find(kind EventKind) (Event, bool) {
	for _, e := range es {
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}
