package guandan

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func snapshotBytes(t *testing.T, m *Match) []byte {
	t.Helper()
	s := m.Snapshot()
	data, err := s.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary error: %v", err)
	}
	return data
}

// TestSnapshotShape 存档顶层字段
func TestSnapshotShape(t *testing.T) {
	m := NewMatch(DefaultOptions())
	if _, err := m.StartRoundWithDeck(jokerDeck()); err != nil {
		t.Fatalf("StartRound error: %v", err)
	}
	data := snapshotBytes(t, m)

	for _, path := range snapshotRequired {
		if !gjson.GetBytes(data, path).Exists() {
			t.Errorf("snapshot missing %s", path)
		}
	}
	if n := len(gjson.GetBytes(data, "deck").Array()); n != DeckSize {
		t.Errorf("deck = %d cards", n)
	}
	if n := len(gjson.GetBytes(data, "hands.0").Array()); n != DeckSize/Players {
		t.Errorf("hands.0 = %d cards", n)
	}
	if v := gjson.GetBytes(data, "teamLevels.B.level").Int(); v != int64(Rank2) {
		t.Errorf("teamLevels.B.level = %d", v)
	}
}

// TestSnapshotRoundTrip 出牌中途存档恢复后继续打
func TestSnapshotRoundTrip(t *testing.T) {
	m := NewMatch(DefaultOptions())
	if _, err := m.StartRoundWithDeck(jokerDeck()); err != nil {
		t.Fatalf("StartRound error: %v", err)
	}
	south := m.Round.Hands[SeatSouth]
	if _, err := m.Play(SeatSouth, Cards{south[len(south)-1]}); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	restored, err := Restore(snapshotBytes(t, m))
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if restored.Round.Turn != m.Round.Turn || restored.Wild != m.Wild || restored.RoundNo != m.RoundNo {
		t.Errorf("restored turn %d wild %d round %d", restored.Round.Turn, restored.Wild, restored.RoundNo)
	}
	for s := range Seat(Players) {
		if restored.Round.Hands[s].String() != m.Round.Hands[s].String() {
			t.Errorf("hand %d = %s, want %s", s, restored.Round.Hands[s], m.Round.Hands[s])
		}
	}
	if restored.Round.Trick.LastPlay == nil || !restored.Round.Trick.LastPlay.Equal(*m.Round.Trick.LastPlay) {
		t.Errorf("last play = %+v", restored.Round.Trick.LastPlay)
	}

	// 两边继续打完结果一致
	want := playOut(t, m)
	got := playOut(t, restored)
	if len(got) != len(want) {
		t.Fatalf("events after restore = %d, want %d", len(got), len(want))
	}
	if restored.Levels != m.Levels {
		t.Errorf("levels = %+v, want %+v", restored.Levels, m.Levels)
	}
}

// TestSnapshotDuringTribute 进贡阶段存档，恢复后手牌重新关联
func TestSnapshotDuringTribute(t *testing.T) {
	m := NewMatch(DefaultOptions())
	m.Levels = tributeGap
	m.PrevOrder = doubleDown
	if _, err := m.StartRoundWithDeck(jokerDeck()); err != nil {
		t.Fatalf("StartRound error: %v", err)
	}
	if m.Phase() != RoundTribute {
		t.Fatalf("phase = %v, want tribute", m.Phase())
	}

	restored := MustRestore(snapshotBytes(t, m))
	if restored.Phase() != RoundTribute || len(restored.Tribute.Pending) != 2 {
		t.Fatalf("restored tribute = %+v", restored.Tribute)
	}
	resolveTribute(t, restored)
	if restored.Phase() != RoundPlaying {
		t.Fatalf("phase after tribute = %v", restored.Phase())
	}
	for s := range Seat(Players) {
		if n := len(restored.Round.Hands[s]); n != DeckSize/Players {
			t.Errorf("hand %d = %d cards", s, n)
		}
	}
	if len(m.Hands[SeatEast]) != DeckSize/Players {
		t.Error("original match should not change")
	}
}

// TestSnapshotMigrate 旧版本存档只有级牌数字，没有 match
func TestSnapshotMigrate(t *testing.T) {
	m := NewMatch(DefaultOptions())
	if _, err := m.StartRoundWithDeck(jokerDeck()); err != nil {
		t.Fatalf("StartRound error: %v", err)
	}
	data := snapshotBytes(t, m)

	var err error
	data, err = sjson.DeleteBytes(data, "match")
	if err != nil {
		t.Fatal(err)
	}
	for _, kv := range []struct {
		path  string
		value any
	}{
		{"version", 1},
		{"teamLevels.A", 5},
		{"teamLevels.B", 14},
		{"wildRank", 14},
	} {
		if data, err = sjson.SetBytes(data, kv.path, kv.value); err != nil {
			t.Fatal(err)
		}
	}

	restored, err := Restore(data)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if restored.Levels[TeamA] != (TeamLevel{Level: Rank5}) || restored.Levels[TeamB] != (TeamLevel{Level: RankA, AtGate: true}) {
		t.Errorf("levels = %+v", restored.Levels)
	}
	if restored.Wild != RankA || restored.Phase() != RoundPlaying || restored.Round.Turn != SeatSouth {
		t.Errorf("wild %d phase %v turn %d", restored.Wild, restored.Phase(), restored.Round.Turn)
	}
}

// TestSnapshotCorrupt 缺字段或前后矛盾的存档
func TestSnapshotCorrupt(t *testing.T) {
	m := NewMatch(DefaultOptions())
	if _, err := m.StartRoundWithDeck(jokerDeck()); err != nil {
		t.Fatalf("StartRound error: %v", err)
	}
	good := snapshotBytes(t, m)
	south := gjson.GetBytes(good, "hands.0.0").Raw

	tests := []struct {
		name string
		edit func([]byte) ([]byte, error)
	}{
		{"不是json", func([]byte) ([]byte, error) { return []byte("{"), nil }},
		{"缺少deck", func(b []byte) ([]byte, error) { return sjson.DeleteBytes(b, "deck") }},
		{"缺少teamLevels.B", func(b []byte) ([]byte, error) { return sjson.DeleteBytes(b, "teamLevels.B") }},
		{"缺少一家手牌", func(b []byte) ([]byte, error) { return sjson.DeleteBytes(b, "hands.3") }},
		{"未知版本", func(b []byte) ([]byte, error) { return sjson.SetBytes(b, "version", 99) }},
		{"重复的牌", func(b []byte) ([]byte, error) { return sjson.SetRawBytes(b, "hands.1.-1", []byte(south)) }},
		{"非法级牌", func(b []byte) ([]byte, error) { return sjson.SetBytes(b, "wildRank", 20) }},
		{"点数为0", func(b []byte) ([]byte, error) { return sjson.SetBytes(b, "hands.1.0.rank", 0) }},
		{"点数超出", func(b []byte) ([]byte, error) { return sjson.SetBytes(b, "hands.2.0.rank", 15) }},
		{"黑桃小王", func(b []byte) ([]byte, error) {
			return sjson.SetRawBytes(b, "hands.3.0", []byte(`{"rank":16,"suit":1,"copy":0}`))
		}},
		{"第三副牌", func(b []byte) ([]byte, error) { return sjson.SetBytes(b, "hands.1.0.copy", 2) }},
		{"牌序中的非法牌", func(b []byte) ([]byte, error) { return sjson.SetBytes(b, "deck.0.rank", 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.edit(append([]byte(nil), good...))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := Restore(data); !errors.Is(err, ErrCorruptSnapshot) {
				t.Errorf("Restore error = %v, want ErrCorruptSnapshot", err)
			}
		})
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRestore should panic")
		}
	}()
	MustRestore([]byte(`{"version":2}`))
}
