package guandan

// Options 规则参数
type Options struct {
	StartLevel       Rank // 两队的起始级牌
	TributeThreshold int  // 两队级差达到该值才进贡
	StrictTribute    bool // 进贡必须是最大的可贡牌
	GateResetLevel   Rank // 过门失败后回落的级牌
	MaxGateFailures  int  // 过门失败次数上限，达到后回落到 MinLevel，0 表示不限
	FirstLead        Seat // 第一局的首出座位
}

// DefaultOptions 默认规则
func DefaultOptions() Options {
	return Options{
		StartLevel:       MinLevel,
		TributeThreshold: 4,
		GateResetLevel:   RankJ,
		FirstLead:        SeatSouth,
	}
}

// normalize 修正非法取值
func (o Options) normalize() Options {
	d := DefaultOptions()
	if o.StartLevel < MinLevel || o.StartLevel > MaxLevel {
		o.StartLevel = d.StartLevel
	}
	if o.TributeThreshold < 0 {
		o.TributeThreshold = d.TributeThreshold
	}
	if o.GateResetLevel < MinLevel || o.GateResetLevel >= MaxLevel {
		o.GateResetLevel = d.GateResetLevel
	}
	if o.MaxGateFailures < 0 {
		o.MaxGateFailures = 0
	}
	if !o.FirstLead.Valid() {
		o.FirstLead = d.FirstLead
	}
	return o
}
