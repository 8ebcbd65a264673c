package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mrraes/bewijs/internal/model"
)

// Texts are the user-facing strings of the terminal prompt.
type Texts struct {
	StartTest string
	StartTask string
	Intro     string
	Name      string
	Class     string
	Required  string
	Yes       string
	No        string
}

// DefaultTexts returns the Dutch texts.
func DefaultTexts() Texts {
	return Texts{
		StartTest: "Start toets",
		StartTask: "Start taak",
		Intro:     "Vul je naam en klas in en druk op Enter. Typ esc om te annuleren.",
		Name:      "Naam",
		Class:     "Klas (bv. 2B)",
		Required:  "Naam is verplicht.",
		Yes:       "j",
		No:        "n",
	}
}

// Terminal drives a prompt over line-based input. An empty line keeps the current value;
// "esc", an ESC byte or end of input cancels.
type Terminal struct {
	In    io.Reader
	Out   io.Writer
	Texts Texts
}

var errCancel = errors.New("cancelled")

// Run shows p (if it is still idle), asks for every field until the prompt resolves and
// returns the result.
func (t *Terminal) Run(ctx context.Context, p *Prompt) (Result, error) {
	p.Show(ctx)
	sc := bufio.NewScanner(t.In)
	tx := t.Texts
	if tx == (Texts{}) {
		tx = DefaultTexts()
	}

	title := tx.StartTask
	if p.Mode() == model.ModeTest {
		title = tx.StartTest
	}
	fmt.Fprintf(t.Out, "%s\n%s\n", title, tx.Intro)

	for p.State() == Shown {
		if err := t.ask(sc, tx, p); err != nil {
			if errors.Is(err, errCancel) {
				p.Key(ctx, KeyEscape)
				break
			}
			return Result{}, err
		}
		if !p.Key(ctx, KeyEnter) && p.State() == Shown {
			fmt.Fprintln(t.Out, tx.Required)
		}
	}
	return p.Wait(ctx)
}

func (t *Terminal) ask(sc *bufio.Scanner, tx Texts, p *Prompt) error {
	v, err := t.line(sc, tx.Name, p.Name())
	if err != nil {
		return err
	}
	p.SetName(v)

	if v, err = t.line(sc, tx.Class, p.Class()); err != nil {
		return err
	}
	p.SetClass(v)

	for _, tg := range p.Toggles() {
		def := tx.No
		if tg.Checked {
			def = tx.Yes
		}
		ans, err := t.line(sc, tg.Label+" ("+tx.Yes+"/"+tx.No+")", def)
		if err != nil {
			return err
		}
		p.SetToggle(tg.ID, isYes(ans, tx))
	}
	return nil
}

// line prints a labelled question and returns the answer, or current on an empty line.
func (t *Terminal) line(sc *bufio.Scanner, label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(t.Out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(t.Out, "%s: ", label)
	}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errCancel
	}
	text := sc.Text()
	if strings.ContainsRune(text, '\x1b') || strings.EqualFold(strings.TrimSpace(text), "esc") {
		return "", errCancel
	}
	if strings.TrimSpace(text) == "" {
		return current, nil
	}
	return text, nil
}

func isYes(ans string, tx Texts) bool {
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case strings.ToLower(tx.Yes), "j", "ja", "y", "yes", "1", "true":
		return true
	}
	return false
}
