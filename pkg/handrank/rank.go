// Package handrank is a local, advisory hand classifier used to fill the
// claimed rank before a showdown reveal. The contract remains the authority.
package handrank

const (
	HighCard      = 1
	OnePair       = 2
	TwoPair       = 3
	ThreeOfAKind  = 4
	Straight      = 5
	Flush         = 6
	FullHouse     = 7
	FourOfAKind   = 8
	StraightFlush = 9
	RoyalFlush    = 10
)

var categoryNames = map[int]string{
	HighCard:      "High Card",
	OnePair:       "One Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

func CategoryName(rank int) string {
	if name, ok := categoryNames[rank]; ok {
		return name
	}
	return "Unknown"
}

// Rank classifies two hole cards plus up to five board cards into 1..10.
// Kickers are ignored; only the category is reported.
func Rank(hole [2]Card, board []Card) (int, error) {
	if err := validate(hole, board); err != nil {
		return 0, err
	}

	cards := append(hole[:], board...)

	var counts [13]int
	var bySuit [4][]Card
	for _, c := range cards {
		counts[c.RankIndex()]++
		bySuit[c.Suit()] = append(bySuit[c.Suit()], c)
	}

	for _, suited := range bySuit {
		if len(suited) < 5 {
			continue
		}
		if high, ok := straightHigh(suited); ok {
			if high == aceHigh {
				return RoyalFlush, nil
			}
			return StraightFlush, nil
		}
	}

	trips, pairs := 0, 0
	for _, n := range counts {
		switch {
		case n >= 4:
			return FourOfAKind, nil
		case n == 3:
			trips++
		case n == 2:
			pairs++
		}
	}

	if trips > 0 && (pairs > 0 || trips > 1) {
		return FullHouse, nil
	}

	for _, suited := range bySuit {
		if len(suited) >= 5 {
			return Flush, nil
		}
	}

	if _, ok := straightHigh(cards); ok {
		return Straight, nil
	}

	switch {
	case trips > 0:
		return ThreeOfAKind, nil
	case pairs >= 2:
		return TwoPair, nil
	case pairs == 1:
		return OnePair, nil
	}
	return HighCard, nil
}

// aceHigh is the face value of an ace played above the king.
const aceHigh = 14

// straightHigh reports the top face value (5..14) of the best run of five
// distinct ranks. The ace plays both below the two and above the king.
func straightHigh(cards []Card) (int, bool) {
	var present [aceHigh + 1]bool
	for _, c := range cards {
		idx := c.RankIndex()
		if idx == 0 {
			present[1] = true
			present[aceHigh] = true
			continue
		}
		present[idx+1] = true
	}

	for high := aceHigh; high >= 5; high-- {
		run := true
		for v := high; v > high-5; v-- {
			if !present[v] {
				run = false
				break
			}
		}
		if run {
			return high, true
		}
	}
	return 0, false
}
