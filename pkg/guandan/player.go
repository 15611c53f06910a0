package guandan

// Next 顺时针下一个座位
func (s Seat) Next() Seat {
	return (s + 1) % Players
}

// Teammate 对家座位 (0,2 一队 1,3 一队)
func (s Seat) Teammate() Seat {
	return (s + 2) % Players
}

// Team 所属队伍
func (s Seat) Team() Team {
	return Team(s % 2)
}

// Valid 是否为合法座位号
func (s Seat) Valid() bool {
	return s >= 0 && s < Players
}

// IsTeammate 判断两个座位是否为同一队且不是同一人
func (s Seat) IsTeammate(o Seat) bool {
	return s != o && s.Team() == o.Team()
}

func (t Team) String() string {
	if t == TeamA {
		return "A"
	}
	return "B"
}

// Seats 返回该队两个座位
func (t Team) Seats() [2]Seat {
	return [2]Seat{Seat(t), Seat(t) + 2}
}

// Other 对方队伍
func (t Team) Other() Team {
	return 1 - t
}

// SeatSet 座位集合，按位存储
type SeatSet uint8

// Has 是否包含座位
func (ss SeatSet) Has(s Seat) bool {
	return ss&(1<<uint(s)) != 0
}

// Add 添加座位
func (ss *SeatSet) Add(s Seat) *SeatSet {
	*ss |= 1 << uint(s)
	return ss
}

// Clear 移除座位
func (ss *SeatSet) Clear(s Seat) *SeatSet {
	*ss &^= 1 << uint(s)
	return ss
}

// Len 座位个数
func (ss SeatSet) Len() (n int) {
	for s := range Seat(Players) {
		if ss.Has(s) {
			n++
		}
	}
	return
}
