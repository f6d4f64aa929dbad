package tournament

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/louisbranch/harmonictook/internal/platform/i18n/catalog"
)

// Report writes a win-rate summary per bracket and overall, translated and
// formatted for tag.
func Report(w io.Writer, tag language.Tag, r Results) error {
	p := message.NewPrinter(catalog.Default().Match(tag))
	if _, err := p.Fprintf(w, "\n=== Tournament Results: %s vs %s (seed %d) ===\n", r.BUE, r.Sparring, r.Seed); err != nil {
		return err
	}
	for _, b := range r.Brackets {
		if err := line(p, w, p.Sprintf("%d-player:", b.Players), b); err != nil {
			return err
		}
	}
	if _, err := p.Fprintf(w, "  %s\n", "-----------------------------"); err != nil {
		return err
	}
	if err := line(p, w, p.Sprintf("Overall:"), r.Overall()); err != nil {
		return err
	}
	_, err := p.Fprintln(w)
	return err
}

func line(p *message.Printer, w io.Writer, label string, b Bracket) error {
	rate := number.Percent(b.WinRate(), number.MaxFractionDigits(1))
	if _, err := p.Fprintf(w, "  %-10s %dW / %dL  (%v)  mean score %.1f", label, b.Wins, b.Losses, rate, b.MeanScore()); err != nil {
		return err
	}
	if b.Unfinished > 0 {
		if _, err := p.Fprintf(w, "  [%d unfinished]", b.Unfinished); err != nil {
			return err
		}
	}
	_, err := p.Fprintln(w)
	return err
}
