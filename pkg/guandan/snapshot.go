package guandan

import (
	"encoding"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SnapshotVersion 当前存档版本
// 1: teamLevels 只存级牌数字
// 2: teamLevels 存 TeamLevel，附带完整的 match 状态
const SnapshotVersion = 2

var _ encoding.BinaryMarshaler = (*Snapshot)(nil)
var _ encoding.BinaryUnmarshaler = (*Snapshot)(nil)

// 存档必须包含的字段
var snapshotRequired = []string{"version", "deck", "wildRank", "hands", "teamLevels.A", "teamLevels.B", "finishOrder"}

// Snapshot 用于保存/恢复的牌局状态
// Hands 以座位号字符串为键，TeamLevels 以队伍名 A/B 为键
type Snapshot struct {
	Version     int                  `json:"version"`
	Deck        Cards                `json:"deck"`
	WildRank    Rank                 `json:"wildRank"`
	Hands       map[string]Cards     `json:"hands"`
	TeamLevels  map[string]TeamLevel `json:"teamLevels"`
	FinishOrder FinishOrder          `json:"finishOrder"`
	Match       *Match               `json:"match,omitempty"`
}

// Snapshot 导出当前状态
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		Version:     SnapshotVersion,
		Deck:        m.Deck.Clone(),
		WildRank:    m.Wild,
		Hands:       make(map[string]Cards, Players),
		TeamLevels:  make(map[string]TeamLevel, 2),
		FinishOrder: FinishOrder{},
		Match:       m,
	}
	if s.Deck == nil {
		s.Deck = Cards{}
	}
	hands, order := m.Hands, m.PrevOrder
	if m.Round != nil {
		hands, order = m.Round.Hands, m.Round.Finish
	}
	for seat, h := range hands {
		s.Hands[strconv.Itoa(seat)] = h.Clone()
	}
	for t := range Team(2) {
		s.TeamLevels[t.String()] = m.Levels[t]
	}
	s.FinishOrder = append(s.FinishOrder, order...)
	return s
}

// MarshalBinary implements the encoding.BinaryMarshaler interface
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalBinary 校验并迁移旧版本后解码
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	data, err := migrateSnapshot(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return nil
}

// migrateSnapshot 检查必需字段并把旧版本升级到 SnapshotVersion
func migrateSnapshot(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrCorruptSnapshot)
	}
	for _, path := range snapshotRequired {
		if !gjson.GetBytes(data, path).Exists() {
			return nil, fmt.Errorf("%w: missing %s", ErrCorruptSnapshot, path)
		}
	}

	version := gjson.GetBytes(data, "version").Int()
	switch {
	case version == SnapshotVersion:
		return data, nil
	case version == 1:
		var err error
		for _, team := range []string{"A", "B"} {
			level := gjson.GetBytes(data, "teamLevels."+team)
			if level.Type != gjson.Number {
				return nil, fmt.Errorf("%w: teamLevels.%s", ErrCorruptSnapshot, team)
			}
			lv := TeamLevel{Level: Rank(level.Int()), AtGate: Rank(level.Int()) == MaxLevel}
			if data, err = sjson.SetBytes(data, "teamLevels."+team, lv); err != nil {
				return nil, err
			}
		}
		return sjson.SetBytes(data, "version", SnapshotVersion)
	}
	return nil, fmt.Errorf("%w: unknown version %d", ErrCorruptSnapshot, version)
}

// Restore 从存档恢复比赛，存档不完整或前后矛盾时返回 ErrCorruptSnapshot
func Restore(data []byte) (*Match, error) {
	var s Snapshot
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s.Restore()
}

// MustRestore 同 Restore，失败时 panic
func MustRestore(data []byte) *Match {
	m, err := Restore(data)
	if err != nil {
		panic(err)
	}
	return m
}

// Restore 以存档的顶层字段为准重建比赛
// 没有 match 字段的存档（例如外部导入）按出牌阶段恢复，首出为第一个未出完的座位
func (s Snapshot) Restore() (*Match, error) {
	var hands [Players]Cards
	seen := make(map[Card]bool)
	for seat := range Players {
		h, ok := s.Hands[strconv.Itoa(seat)]
		if !ok {
			return nil, fmt.Errorf("%w: missing hand %d", ErrCorruptSnapshot, seat)
		}
		for _, c := range h {
			if !c.Valid() {
				return nil, fmt.Errorf("%w: impossible card %+v in hand %d", ErrCorruptSnapshot, c, seat)
			}
			if seen[c] {
				return nil, fmt.Errorf("%w: duplicate card %s", ErrCorruptSnapshot, c)
			}
			seen[c] = true
		}
		hands[seat] = h.Clone()
	}
	if len(seen) > DeckSize {
		return nil, fmt.Errorf("%w: %d cards in hands", ErrCorruptSnapshot, len(seen))
	}
	for _, c := range s.Deck {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: impossible card %+v in deck", ErrCorruptSnapshot, c)
		}
	}
	for _, seat := range s.FinishOrder {
		if !seat.Valid() {
			return nil, fmt.Errorf("%w: finish seat %d", ErrCorruptSnapshot, seat)
		}
	}
	if s.WildRank < MinLevel || s.WildRank > MaxLevel {
		return nil, fmt.Errorf("%w: wild rank %d", ErrCorruptSnapshot, s.WildRank)
	}

	m := s.Match
	if m == nil {
		m = NewMatch(DefaultOptions())
		m.RoundNo = 1
	}
	m.Options = m.Options.normalize()
	m.Wild = s.WildRank
	m.Deck = s.Deck.Clone()
	for t := range Team(2) {
		lv, ok := s.TeamLevels[t.String()]
		if !ok {
			return nil, fmt.Errorf("%w: missing level %s", ErrCorruptSnapshot, t)
		}
		m.Levels[t] = lv
	}

	switch {
	case m.Round != nil:
		m.Round.Hands = hands
		m.Round.Finish = s.FinishOrder.clone()
		m.Round.Wild = s.WildRank
	case s.Match == nil:
		order := s.FinishOrder.clone()
		lead := m.Options.FirstLead
		for i := range Players {
			seat := (m.Options.FirstLead + Seat(i)) % Players
			if order.RankOf(seat) == 0 {
				lead = seat
				break
			}
		}
		m.Round = NewRound(hands, s.WildRank, lead)
		m.Round.Finish = order
		if order.Complete() {
			m.Round.Status = RoundFinished
			m.Round.Turn = SeatNone
		}
	default:
		m.Hands = hands
		m.PrevOrder = s.FinishOrder.clone()
	}
	if m.Tribute != nil {
		m.Tribute.Bind(&m.Hands)
	}
	return m, nil
}

func (fo FinishOrder) clone() FinishOrder {
	if len(fo) == 0 {
		return nil
	}
	return append(FinishOrder(nil), fo...)
}
