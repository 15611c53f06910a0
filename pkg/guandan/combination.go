package guandan

import "slices"

// 各牌型权重基数
const (
	weightBaseSingle         = 0
	weightBasePair           = 20
	weightBaseTriple         = 30
	weightBaseTripleWithPair = 50
	weightBaseStraight       = 100
	weightBasePairStraight   = 200
	weightBaseTripleStraight = 300
	weightBaseStraightFlush  = 550
	weightKingBomb           = 10000
)

// Combination 一次出牌识别出的牌型，是值类型，每次识别都会重新生成
// Weight 只用于同牌型同张数之间的比较，Length 为牌的张数
type Combination struct {
	Kind   Kind     `json:"kind"`
	Bomb   BombKind `json:"bomb,omitempty"`
	Weight int      `json:"weight"`
	Length int      `json:"length"`
	Cards  Cards    `json:"cards,omitempty"`
}

// IsValid 是否为合法牌型
func (c Combination) IsValid() bool {
	return c.Kind != KindNone
}

// IsBomb 是否为炸弹（含同花顺与四大天王）
func (c Combination) IsBomb() bool {
	return c.Kind == KindBomb
}

// IsBigBomb 计算翻倍用，6 张及以上的炸弹、同花顺与四大天王
func (c Combination) IsBigBomb() bool {
	if c.Kind != KindBomb {
		return false
	}
	return c.Bomb != BombNormal || c.Length >= 6
}

// Equal 牌型、权重、张数都一致
func (c Combination) Equal(o Combination) bool {
	return c.Kind == o.Kind && c.Bomb == o.Bomb && c.Weight == o.Weight && c.Length == o.Length
}

// rankGroup 普通牌（非万能牌）按点数分组后的一组
type rankGroup struct {
	rank  Rank
	count int
}

// analysis 牌组的统计信息，groups 按点数从小到大排列
type analysis struct {
	wildCount int
	groups    []rankGroup
	suits     map[Suit]int
}

func analyze(cards Cards, wild Rank) analysis {
	a := analysis{suits: make(map[Suit]int)}
	counts := make(map[Rank]int)
	for _, c := range cards {
		a.suits[c.Suit]++
		if c.IsWild(wild) {
			a.wildCount++
			continue
		}
		counts[c.Rank]++
	}
	for r, n := range counts {
		a.groups = append(a.groups, rankGroup{rank: r, count: n})
	}
	slices.SortFunc(a.groups, func(x, y rankGroup) int { return int(x.rank) - int(y.rank) })
	return a
}

// groupValue 一组同点数牌的点数，全是万能牌时为万能牌点数
func (a analysis) groupValue() int {
	if len(a.groups) == 0 {
		return ValueWild
	}
	return rankValue(a.groups[0].rank)
}

// Classify 识别牌型，按优先级依次判断，第一个匹配的即为结果；不成牌型返回 Kind 为 KindNone
func Classify(cards Cards, wild Rank) Combination {
	p := Combination{Kind: KindNone, Length: len(cards)}
	if len(cards) == 0 {
		return p
	}
	p.Cards = slices.Clone(cards)

	// 1. 四大天王
	if cards.HasFourJokers() {
		p.Kind, p.Bomb, p.Weight = KindBomb, BombKing, weightKingBomb
		return p
	}

	a := analyze(cards, wild)
	n := len(cards)

	// 2. 普通炸弹，4-8 张同点数（万能牌可补）
	if n >= 4 && n <= 8 && len(a.groups) == 1 && a.sameRank() {
		p.Kind, p.Bomb = KindBomb, BombNormal
		p.Weight = n*100 + bombRankValue(a.groups[0].rank)
		return p
	}

	// 3. 同花顺
	if n >= 5 && len(a.suits) == 1 {
		if high, ok := a.sequence(1); ok {
			p.Kind, p.Bomb = KindBomb, BombStraightFlush
			p.Weight = weightBaseStraightFlush + high + n
			return p
		}
	}

	switch {
	case n == 1: // 4. 单张
		p.Kind = KindSingle
		p.Weight = weightBaseSingle + cards[0].PlayValue(wild)
		return p
	case n == 2 && a.sameRank(): // 5. 对子
		p.Kind = KindPair
		p.Weight = weightBasePair + a.groupValue()
		return p
	case n == 3 && a.sameRank(): // 6. 三同张
		p.Kind = KindTriple
		p.Weight = weightBaseTriple + a.groupValue()
		return p
	case n == 5: // 7. 三带二
		if v, ok := a.tripleWithPair(); ok {
			p.Kind = KindTripleWithPair
			p.Weight = weightBaseTripleWithPair + v
			return p
		}
	}

	// 8. 顺子
	if n >= 5 {
		if high, ok := a.sequence(1); ok {
			p.Kind = KindStraight
			p.Weight = weightBaseStraight + high + n
			return p
		}
	}
	// 9. 连对
	if n >= 6 && n%2 == 0 {
		if high, ok := a.sequence(2); ok {
			p.Kind = KindPairStraight
			p.Weight = weightBasePairStraight + high + n
			return p
		}
	}
	// 10. 钢板
	if n >= 6 && n%3 == 0 {
		if high, ok := a.sequence(3); ok {
			p.Kind = KindTripleStraight
			p.Weight = weightBaseTripleStraight + high + n
			return p
		}
	}
	return p
}

// sameRank 普通牌只有一种点数，万能牌可以补成该点数
// 王只能与同种王成组，且万能牌不能代替王
func (a analysis) sameRank() bool {
	switch len(a.groups) {
	case 0:
		// 全是万能牌
		return true
	case 1:
		g := a.groups[0]
		if g.rank == RankJokerSmall || g.rank == RankJokerBig {
			return a.wildCount == 0
		}
		return true
	}
	return false
}

// bombRankValue 炸弹内部的点数，2 最小
func bombRankValue(r Rank) int {
	return int(r)
}

// sequence 检查是否为 3..A 之间的连续序列，每个点数恰好 width 张
// 万能牌、2、王都不能进入序列，返回最大牌的点数
func (a analysis) sequence(width int) (int, bool) {
	if a.wildCount > 0 || len(a.groups) == 0 {
		return 0, false
	}
	minLen := 5
	switch width {
	case 2:
		minLen = 3
	case 3:
		minLen = 2
	}
	if len(a.groups) < minLen {
		return 0, false
	}
	for i, g := range a.groups {
		if g.rank < Rank3 || g.rank > RankA || g.count != width {
			return 0, false
		}
		if i > 0 && g.rank != a.groups[i-1].rank+1 {
			return 0, false
		}
	}
	return int(a.groups[len(a.groups)-1].rank), true
}

// tripleWithPair 三带二，恰好两种普通点数，返回三张部分的点数
// 万能牌可补任意一组，王只能作为对子且不能用万能牌补
func (a analysis) tripleWithPair() (int, bool) {
	best, found := 0, false
	try := func(triple, pair rankGroup) {
		if triple.count > 3 || triple.rank >= RankJokerSmall || pair.count > 2 {
			return
		}
		if pair.rank >= RankJokerSmall && pair.count != 2 {
			return
		}
		if (3-triple.count)+(2-pair.count) != a.wildCount {
			return
		}
		if v := rankValue(triple.rank); !found || v > best {
			best, found = v, true
		}
	}

	if len(a.groups) == 2 {
		try(a.groups[0], a.groups[1])
		try(a.groups[1], a.groups[0])
	}
	return best, found
}
