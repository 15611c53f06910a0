package guandan

// Suit 牌的花色
type Suit uint8

const (
	SuitNone    Suit = iota
	SuitSpade        // 黑桃
	SuitHeart        // 红桃
	SuitClub         // 梅花
	SuitDiamond      // 方块
	SuitJoker        // 王
)

// Rank 牌的点数，数值即牌面大小，2 为 2，A 为 14
type Rank uint8

const (
	RankNone Rank = iota
	_
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
	_
	RankJokerSmall
	RankJokerBig
)

const (
	MinLevel = Rank2 // 起始级牌
	MaxLevel = RankA // 最高级牌，打到 A 需要过门
)

// 单张点数（出牌比较用）
const (
	ValueTwo        = 15  // 2 比 A 大两级
	ValueWild       = 101 // 红桃级牌
	ValueJokerSmall = 102 // 小王
	ValueJokerBig   = 103 // 大王
)

// Kind 牌型
type Kind uint8

const (
	KindNone           Kind = iota // 不成牌型
	KindSingle                     // 单张
	KindPair                       // 对子
	KindTriple                     // 三同张
	KindTripleWithPair             // 三带二
	KindStraight                   // 顺子
	KindPairStraight               // 连对
	KindTripleStraight             // 三同连张（钢板）
	KindBomb                       // 炸弹
)

// BombKind 炸弹子类型
type BombKind uint8

const (
	BombNone          BombKind = iota
	BombNormal                 // 4-8 张同点数
	BombStraightFlush          // 同花顺
	BombKing                   // 四大天王
)

// Seat 座位号，按顺时针 南(0) 西(1) 北(2) 东(3)
type Seat int8

const (
	SeatNone  Seat = -1
	SeatSouth Seat = 0
	SeatWest  Seat = 1
	SeatNorth Seat = 2
	SeatEast  Seat = 3
)

// Players 每桌人数
const Players = 4

// Team 队伍 0: 南北(0,2), 1: 东西(1,3)
type Team int8

const (
	TeamA Team = 0
	TeamB Team = 1
)

type RoundStatus int8

const (
	RoundWaiting  RoundStatus = iota // 等待开始
	RoundTribute                     // 进贡/还贡中
	RoundPlaying                     // 出牌中
	RoundFinished                    // 已结束
)

// MatchStatus 整场比赛状态
type MatchStatus int8

const (
	MatchPlaying MatchStatus = iota
	MatchWon
)
