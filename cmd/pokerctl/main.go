// pokerctl audits a finished hand offline: it re-derives the deck from the
// revealed seeds, checks seed commitments and classifies hands.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kollektive-hackathon/pokerzk-backend/pkg/handrank"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"github.com/pterm/pterm"
)

const usage = `usage:
  pokerctl deck <seed-hex>
  pokerctl combine <reveal1-hex> <reveal2-hex>
  pokerctl verify <commitment-hex> <seed-hex>
  pokerctl rank <hole1> <hole2> [board...]`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "deck":
		err = withArgs(args, 1, func() error { return printDeck(args[0]) })
	case "combine":
		err = withArgs(args, 2, func() error { return printCombined(args[0], args[1]) })
	case "verify":
		err = withArgs(args, 2, func() error { return verifyCommitment(args[0], args[1]) })
	case "rank":
		err = printRank(args)
	default:
		err = fmt.Errorf("unknown command %q\n%s", os.Args[1], usage)
	}

	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func withArgs(args []string, n int, run func() error) error {
	if len(args) != n {
		return fmt.Errorf("expected %d arguments\n%s", n, usage)
	}
	return run()
}

func decodeHex(value string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(value, "0x"))
}

func printDeck(seedHex string) error {
	seed, err := decodeHex(seedHex)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	deck, err := shuffle.DeriveDeck(seed)
	if err != nil {
		return err
	}
	return renderDeck(deck)
}

func printCombined(reveal1Hex, reveal2Hex string) error {
	reveal1, err := decodeHex(reveal1Hex)
	if err != nil {
		return fmt.Errorf("reveal 1: %w", err)
	}
	reveal2, err := decodeHex(reveal2Hex)
	if err != nil {
		return fmt.Errorf("reveal 2: %w", err)
	}

	combined := shuffle.CombineSeeds(reveal1, reveal2)
	pterm.Info.Printfln("Final seed: %s", hex.EncodeToString(combined[:]))

	deck, err := shuffle.DeriveDeck(combined[:])
	if err != nil {
		return err
	}
	return renderDeck(deck)
}

func renderDeck(deck shuffle.Deck) error {
	rows := [][]string{{"Slot", "Index", "Card"}}
	for i, index := range deck {
		rows = append(rows, []string{strconv.Itoa(i), strconv.Itoa(int(index)), handrank.Card(index).String()})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	for _, seat := range []shuffle.Seat{shuffle.Seat1, shuffle.Seat2} {
		hole, _ := deck.HoleCards(seat)
		pterm.Info.Printfln("Seat %d holds %s %s", seat, handrank.Card(hole[0]), handrank.Card(hole[1]))
	}
	return nil
}

func verifyCommitment(commitmentHex, seedHex string) error {
	raw, err := decodeHex(commitmentHex)
	if err != nil {
		return fmt.Errorf("commitment: %w", err)
	}
	var commitment [32]byte
	if len(raw) != len(commitment) {
		return fmt.Errorf("commitment must be %d bytes, got %d", len(commitment), len(raw))
	}
	copy(commitment[:], raw)

	seed, err := decodeHex(seedHex)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	if !shuffle.Verify(commitment, seed) {
		return fmt.Errorf("seed does not open commitment %s", hex.EncodeToString(commitment[:]))
	}
	pterm.Success.Println("Seed opens the commitment")
	return nil
}

func parseCards(values []string) ([]handrank.Card, error) {
	cards := make([]handrank.Card, 0, len(values))
	for _, value := range values {
		index, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", value, err)
		}
		cards = append(cards, handrank.Card(index))
	}
	return cards, nil
}

func printRank(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("rank needs two hole cards\n%s", usage)
	}
	cards, err := parseCards(args)
	if err != nil {
		return err
	}
	hole := [2]handrank.Card{cards[0], cards[1]}
	board := cards[2:]

	rank, err := handrank.Rank(hole, board)
	if err != nil {
		return err
	}

	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTitle(pterm.LightYellow("|HAND|")).WithTitleTopCenter()
	text := pterm.Sprintfln("Hole: %s %s", hole[0], hole[1])
	if len(board) > 0 {
		labels := make([]string, len(board))
		for i, c := range board {
			labels[i] = c.String()
		}
		text += pterm.Sprintfln("Board: %s", strings.Join(labels, " "))
	}
	text += pterm.Sprintf("Rank: %d (%s)", rank, handrank.CategoryName(rank))
	if desc, err := handrank.Describe(hole, board); err == nil && len(board) == 5 {
		text += pterm.Sprintf("\n%s", pterm.LightCyan(desc))
	}
	box.Println(text)
	return nil
}
