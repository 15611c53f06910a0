package guandan

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
)

// Card 代表一张扑克牌，两副牌以 Copy(0/1) 区分
type Card struct {
	Rank Rank  `json:"rank"`
	Suit Suit  `json:"suit"`
	Copy uint8 `json:"copy"`
}

// NewCard 第一副牌中的一张
func NewCard(rank Rank, suit Suit) Card {
	return Card{
		Rank: rank,
		Suit: suit,
	}
}

// WithCopy 返回同花色同点数但属于第 n 副牌的牌
func (c Card) WithCopy(n uint8) Card {
	c.Copy = n
	return c
}

// WildCard 返回当前级牌对应的万能牌（红桃级牌）
func WildCard(level Rank) Card {
	return NewCard(level, SuitHeart)
}

// IsWild 判断是否为万能牌（红桃级牌）
func (c Card) IsWild(wild Rank) bool {
	return c.Rank == wild && c.Suit == SuitHeart
}

// Valid 是否为两副牌中真实存在的一张
func (c Card) Valid() bool {
	_, ok := deckCards[c]
	return ok
}

// IsJoker 是否为大小王
func (c Card) IsJoker() bool {
	return c.Rank == RankJokerSmall || c.Rank == RankJokerBig
}

// Same 花色点数相同，不区分副数
func (c Card) Same(o Card) bool {
	return c.Rank == o.Rank && c.Suit == o.Suit
}

// PlayValue 出牌时的单张点数
func (c Card) PlayValue(wild Rank) int {
	switch {
	case c.Rank == RankJokerBig:
		return ValueJokerBig
	case c.Rank == RankJokerSmall:
		return ValueJokerSmall
	case c.IsWild(wild):
		return ValueWild
	}
	return rankValue(c.Rank)
}

// rankValue 非万能牌的点数，2 排在 A 之上
func rankValue(r Rank) int {
	switch r {
	case Rank2:
		return ValueTwo
	case RankJokerSmall:
		return ValueJokerSmall
	case RankJokerBig:
		return ValueJokerBig
	}
	return int(r)
}

// suitOrder 同点数时的花色排序，黑桃最大
func suitOrder(s Suit) int {
	switch s {
	case SuitSpade:
		return 4
	case SuitHeart:
		return 3
	case SuitClub:
		return 2
	case SuitDiamond:
		return 1
	}
	return 0
}

var (
	suitNames = map[Suit]string{SuitSpade: "S", SuitHeart: "H", SuitClub: "C", SuitDiamond: "D"}
	rankNames = map[Rank]string{RankJ: "J", RankQ: "Q", RankK: "K", RankA: "A"}
)

// RankName 点数的文字表示
func RankName(r Rank) string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	return strconv.Itoa(int(r))
}

// ParseRank 解析 "2".."10" "J" "Q" "K" "A"
func ParseRank(s string) (Rank, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for r, n := range rankNames {
		if n == s {
			return r, true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < int(Rank2) || n > int(RankA) {
		return RankNone, false
	}
	return Rank(n), true
}

// String 例如 SA, H10, SJK(小王), BJK(大王)，第二副牌带 #1 后缀
func (c Card) String() string {
	var s string
	switch c.Rank {
	case RankJokerSmall:
		s = "SJK"
	case RankJokerBig:
		s = "BJK"
	default:
		s = suitNames[c.Suit] + RankName(c.Rank)
	}
	if c.Copy > 0 {
		s += "#" + strconv.Itoa(int(c.Copy))
	}
	return s
}

// ParseCard 解析 String 的输出
func ParseCard(s string) (Card, error) {
	var c Card
	body, copyPart, hasCopy := strings.Cut(strings.TrimSpace(s), "#")
	if hasCopy {
		n, err := strconv.Atoi(copyPart)
		if err != nil || n < 0 || n > 1 {
			return c, fmt.Errorf("bad copy index in %q", s)
		}
		c.Copy = uint8(n)
	}
	switch strings.ToUpper(body) {
	case "SJK":
		c.Rank, c.Suit = RankJokerSmall, SuitJoker
		return c, nil
	case "BJK":
		c.Rank, c.Suit = RankJokerBig, SuitJoker
		return c, nil
	}
	if len(body) < 2 {
		return c, fmt.Errorf("bad card %q", s)
	}
	found := false
	for suit, n := range suitNames {
		if strings.EqualFold(body[:1], n) {
			c.Suit, found = suit, true
			break
		}
	}
	if !found {
		return c, fmt.Errorf("bad suit in %q", s)
	}
	r, ok := ParseRank(body[1:])
	if !ok {
		return c, fmt.Errorf("bad rank in %q", s)
	}
	c.Rank = r
	return c, nil
}

// MustParseCards 以空格分隔解析多张牌，解析失败 panic
func MustParseCards(s string) Cards {
	var cs Cards
	for _, f := range strings.Fields(s) {
		c, err := ParseCard(f)
		if err != nil {
			panic(err)
		}
		cs = append(cs, c)
	}
	return cs
}

type Cards []Card

func (cs Cards) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Clone 复制一份
func (cs Cards) Clone() Cards {
	return slices.Clone(cs)
}

// HasBothJokers 是否同时持有小王和大王
func (cs Cards) HasBothJokers() bool {
	small, big := false, false
	for _, c := range cs {
		switch c.Rank {
		case RankJokerSmall:
			small = true
		case RankJokerBig:
			big = true
		}
	}
	return small && big
}

// HasFourJokers 是否恰好是四大天王
func (cs Cards) HasFourJokers() bool {
	if len(cs) != 4 {
		return false
	}
	cntSmall, cntBig := 0, 0
	for _, c := range cs {
		switch c.Rank {
		case RankJokerSmall:
			cntSmall++
		case RankJokerBig:
			cntBig++
		default:
			return false
		}
	}
	return cntSmall == 2 && cntBig == 2
}

// IndexOf 按 (花色, 点数, 副数) 查找
func (cs Cards) IndexOf(c Card) int {
	return slices.Index(cs, c)
}

// Contains 判断 sub 中的每一张（按身份）都在 cs 中，sub 重复引用同一张牌视为不包含
func (cs Cards) Contains(sub Cards) bool {
	_, ok := cs.Remove(sub)
	return ok
}

// Remove 返回移除 sub 之后的新牌组，有任意一张不存在时返回 false
func (cs Cards) Remove(sub Cards) (Cards, bool) {
	rest := slices.Clone(cs)
	for _, c := range sub {
		i := rest.IndexOf(c)
		if i < 0 {
			return cs, false
		}
		rest = slices.Delete(rest, i, i+1)
	}
	return rest, true
}

// Sort 按出牌点数从大到小排列，点数相同按花色、副数排列
func (cs Cards) Sort(wild Rank) {
	slices.SortStableFunc(cs, func(a, b Card) int {
		if v := cmp.Compare(b.PlayValue(wild), a.PlayValue(wild)); v != 0 {
			return v
		}
		if v := cmp.Compare(suitOrder(b.Suit), suitOrder(a.Suit)); v != 0 {
			return v
		}
		return cmp.Compare(a.Copy, b.Copy)
	})
}

var (
	deckSuits = []Suit{SuitSpade, SuitHeart, SuitClub, SuitDiamond}
	deckRanks = []Rank{Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, RankJ, RankQ, RankK, RankA}
)

// DeckSize 两副牌的总张数
const DeckSize = 2 * (13*4 + 2)

var deckCards = func() map[Card]struct{} {
	set := make(map[Card]struct{}, DeckSize)
	for _, c := range NewDeck() {
		set[c] = struct{}{}
	}
	return set
}()

// NewDeck 生成两副扑克牌，共 108 张
func NewDeck() Cards {
	cards := make(Cards, 0, DeckSize)
	for copyIndex := range uint8(2) {
		for _, suit := range deckSuits {
			for _, rank := range deckRanks {
				cards = append(cards, NewCard(rank, suit).WithCopy(copyIndex))
			}
		}
		cards = append(cards, NewCard(RankJokerSmall, SuitJoker).WithCopy(copyIndex))
		cards = append(cards, NewCard(RankJokerBig, SuitJoker).WithCopy(copyIndex))
	}
	if len(cards) != DeckSize {
		panic("guandan: deck tables inconsistent")
	}
	return cards
}

// Shuffle 洗牌，随机打乱牌的顺序
func (cs Cards) Shuffle() {
	rand.Shuffle(len(cs), func(i, j int) {
		cs[i], cs[j] = cs[j], cs[i]
	})
}

// Deal 按当前顺序发牌，每人一段连续的牌，并按出牌点数排好序
// 牌数不能被玩家数整除时返回 ErrUnevenDeal
func (cs Cards) Deal(players int, wild Rank) ([]Cards, error) {
	if players <= 0 || len(cs)%players != 0 {
		return nil, ErrUnevenDeal
	}

	cardsPerPlayer := len(cs) / players
	hands := make([]Cards, players)
	for i := range players {
		start := i * cardsPerPlayer
		hands[i] = slices.Clone(cs[start : start+cardsPerPlayer])
		hands[i].Sort(wild)
	}
	return hands, nil
}
