package guandan

// Beats 判断 c 能否压过 o，相等或无法比较时返回 false
//
// 炸弹压一切非炸弹；非炸弹之间要求牌型和张数都相同；
// 炸弹之间四大天王最大，同花顺介于 5 张与 6 张炸弹之间，普通炸弹张数多者胜，张数相同比权重
func (c Combination) Beats(o Combination) bool {
	if !c.IsValid() || !o.IsValid() {
		return false
	}

	cb, ob := c.IsBomb(), o.IsBomb()
	switch {
	case cb && !ob:
		return true
	case !cb && ob:
		return false
	case !cb && !ob:
		if c.Kind != o.Kind || c.Length != o.Length {
			return false
		}
		return c.Weight > o.Weight
	}

	// 都是炸弹
	switch {
	case c.Bomb == BombKing:
		return o.Bomb != BombKing
	case o.Bomb == BombKing:
		return false
	case c.Bomb == BombStraightFlush && o.Bomb == BombNormal:
		return o.Length <= 5
	case c.Bomb == BombNormal && o.Bomb == BombStraightFlush:
		return c.Length >= 6
	}

	// 同为同花顺或同为普通炸弹
	if c.Length != o.Length {
		return c.Length > o.Length
	}
	return c.Weight > o.Weight
}

// CanBeat 识别两组牌后比较，任意一组不成牌型返回 false
func CanBeat(a, b Cards, wild Rank) bool {
	return Classify(a, wild).Beats(Classify(b, wild))
}

// handStats 手牌统计，用于搜索能压过目标的牌型
type handStats struct {
	wildCount int
	counts    map[Rank]int          // 普通牌（不含万能牌）
	suitRanks map[Suit]map[Rank]int // 同花顺检查，只含 3..A
}

func newHandStats(cards Cards, wild Rank) handStats {
	hs := handStats{
		counts:    make(map[Rank]int),
		suitRanks: make(map[Suit]map[Rank]int),
	}
	for _, c := range cards {
		if c.IsWild(wild) {
			hs.wildCount++
			continue
		}
		hs.counts[c.Rank]++
		if c.Rank >= Rank3 && c.Rank <= RankA {
			if hs.suitRanks[c.Suit] == nil {
				hs.suitRanks[c.Suit] = make(map[Rank]int)
			}
			hs.suitRanks[c.Suit][c.Rank]++
		}
	}
	return hs
}

// CanBeat 判断手牌中是否存在能压过 target 的牌型
// target 为空（首出）时只要手牌非空即可
func (handCards Cards) CanBeat(target *Combination, wild Rank) bool {
	if len(handCards) == 0 {
		return false
	}
	if target == nil || !target.IsValid() {
		return true
	}
	if target.Bomb == BombKing {
		return false
	}
	if countRank(handCards, RankJokerSmall) == 2 && countRank(handCards, RankJokerBig) == 2 {
		return true
	}

	hs := newHandStats(handCards, wild)
	found := false
	hs.eachCandidate(target, func(c Combination) bool {
		if c.Beats(*target) {
			found = true
			return false
		}
		return true
	})
	return found
}

func countRank(cs Cards, r Rank) (n int) {
	for _, c := range cs {
		if c.Rank == r {
			n++
		}
	}
	return
}

// eachCandidate 枚举与 target 同牌型的候选以及所有炸弹，fn 返回 false 时停止
func (hs handStats) eachCandidate(target *Combination, fn func(Combination) bool) {
	if !target.IsBomb() && !hs.sameKind(target, fn) {
		return
	}
	hs.bombs(fn)
}

func (hs handStats) sameKind(target *Combination, fn func(Combination) bool) bool {
	emit := func(kind Kind, weight, length int) bool {
		return fn(Combination{Kind: kind, Weight: weight, Length: length})
	}

	switch target.Kind {
	case KindSingle:
		if hs.wildCount > 0 && !emit(KindSingle, ValueWild, 1) {
			return false
		}
		for r, n := range hs.counts {
			if n > 0 && !emit(KindSingle, rankValue(r), 1) {
				return false
			}
		}
	case KindPair, KindTriple:
		size, base := 2, weightBasePair
		if target.Kind == KindTriple {
			size, base = 3, weightBaseTriple
		}
		if size == 2 && hs.wildCount >= 2 && !emit(KindPair, base+ValueWild, 2) {
			return false
		}
		for r, n := range hs.counts {
			have := n + hs.wildCount
			if r >= RankJokerSmall {
				have = n
			}
			if have >= size && !emit(target.Kind, base+rankValue(r), size) {
				return false
			}
		}
	case KindTripleWithPair:
		for t := Rank2; t <= RankA; t++ {
			ct := min(hs.counts[t], 3)
			if ct == 0 {
				continue
			}
			for p := Rank2; p <= RankJokerBig; p++ {
				cp := min(hs.counts[p], 2)
				if p == t || cp == 0 || (p >= RankJokerSmall && cp < 2) {
					continue
				}
				if (3-ct)+(2-cp) <= hs.wildCount {
					if !emit(KindTripleWithPair, weightBaseTripleWithPair+rankValue(t), 5) {
						return false
					}
					break
				}
			}
		}
	case KindStraight:
		return hs.sequences(hs.counts, 1, target.Length, KindStraight, weightBaseStraight, fn)
	case KindPairStraight:
		return hs.sequences(hs.counts, 2, target.Length, KindPairStraight, weightBasePairStraight, fn)
	case KindTripleStraight:
		return hs.sequences(hs.counts, 3, target.Length, KindTripleStraight, weightBaseTripleStraight, fn)
	}
	return true
}

// sequences 枚举 3..A 之间长度为 length 张、每个点数 width 张的序列
func (hs handStats) sequences(counts map[Rank]int, width, length int, kind Kind, base int, fn func(Combination) bool) bool {
	if length%width != 0 {
		return true
	}
	span := Rank(length / width)
	for start := Rank3; start+span-1 <= RankA; start++ {
		ok := true
		for r := start; r < start+span; r++ {
			if counts[r] < width {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		high := int(start + span - 1)
		if !fn(Combination{Kind: kind, Weight: base + high + length, Length: length}) {
			return false
		}
	}
	return true
}

// bombs 枚举手牌能组成的所有炸弹
func (hs handStats) bombs(fn func(Combination) bool) {
	for r := Rank2; r <= RankA; r++ {
		n := hs.counts[r]
		if n == 0 {
			continue
		}
		for size := 4; size <= min(n+hs.wildCount, 8); size++ {
			if !fn(Combination{Kind: KindBomb, Bomb: BombNormal, Weight: size*100 + bombRankValue(r), Length: size}) {
				return
			}
		}
	}
	for _, ranks := range hs.suitRanks {
		for length := 5; length <= int(RankA-Rank3)+1; length++ {
			stop := false
			hs.sequences(ranks, 1, length, KindBomb, weightBaseStraightFlush, func(c Combination) bool {
				c.Bomb = BombStraightFlush
				if !fn(c) {
					stop = true
					return false
				}
				return true
			})
			if stop {
				return
			}
		}
	}
}
