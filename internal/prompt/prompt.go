// Package prompt implements the name/class prompt shown before a session starts.
//
// A Prompt is a small state machine: Idle, Shown, then either Confirmed or Cancelled,
// and finally Closed. It resolves exactly once. Frontends (the terminal driver in this
// package, or any other UI) feed it input and wait for the Result.
package prompt

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mrraes/bewijs/internal/model"
)

// State is the lifecycle state of a prompt.
type State int

const (
	Idle State = iota
	Shown
	Confirmed
	Cancelled
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Shown:
		return "shown"
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Kind tells which shape a Result has.
type Kind int

const (
	// KindCancelled means the user cancelled; the other fields are empty.
	KindCancelled Kind = iota
	// KindSimple carries only the name. It is used when no toggles were declared.
	KindSimple
	// KindExtended carries name, class and flags.
	KindExtended
)

// Result is what a prompt resolves to.
type Result struct {
	Kind  Kind
	Name  string
	Class string
	Flags map[string]bool
}

// Toggle declares an extra boolean option, such as an accommodation.
type Toggle struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// Options configure a prompt.
type Options struct {
	Mode    model.Mode
	Toggles []Toggle
}

// Prefs stores the last used name and class.
type Prefs interface {
	GetPref(ctx context.Context, key string) (string, error)
	SetPref(ctx context.Context, key, value string) error
}

// Field identifies an input field.
type Field int

const (
	FieldName Field = iota
	FieldClass
)

// Key is a keyboard signal.
type Key int

const (
	KeyEnter Key = iota
	KeyEscape
)

// Prompt collects name, class and toggles. All methods are safe for concurrent use.
type Prompt struct {
	mu      sync.Mutex
	state   State
	prefs   Prefs
	mode    model.Mode
	toggles []Toggle
	name    string
	class   string
	focus   Field
	result  Result
	done    chan struct{}
}

// New returns an idle prompt. prefs may be nil, in which case nothing is prefilled or
// remembered.
func New(prefs Prefs, opts Options) *Prompt {
	mode := opts.Mode
	if mode == "" {
		mode = model.ModeTask
	}
	toggles := make([]Toggle, len(opts.Toggles))
	for i, t := range opts.Toggles {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			id = "flag"
		}
		label := t.Label
		if label == "" {
			label = id
		}
		toggles[i] = Toggle{ID: id, Label: label, Checked: t.Checked}
	}
	return &Prompt{
		prefs:   prefs,
		mode:    mode,
		toggles: toggles,
		done:    make(chan struct{}),
	}
}

// Open creates a prompt and shows it.
func Open(ctx context.Context, prefs Prefs, opts Options) *Prompt {
	p := New(prefs, opts)
	p.Show(ctx)
	return p
}

// Show moves an idle prompt to Shown, prefilling name and class from the stored
// preferences and focusing the name field.
func (p *Prompt) Show(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Idle {
		return
	}
	p.name = p.pref(ctx, model.PrefKeyName)
	p.class = p.pref(ctx, model.PrefKeyClass)
	p.focus = FieldName
	p.state = Shown
}

func (p *Prompt) pref(ctx context.Context, key string) string {
	if p.prefs == nil {
		return ""
	}
	v, err := p.prefs.GetPref(ctx, key)
	if err != nil {
		slog.Warn("prefill unavailable", "key", key, "error", err)
		return ""
	}
	return strings.TrimSpace(v)
}

// State returns the current state.
func (p *Prompt) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Mode returns the session mode the prompt was opened for.
func (p *Prompt) Mode() model.Mode { return p.mode }

// Name returns the current content of the name field.
func (p *Prompt) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// Class returns the current content of the class field.
func (p *Prompt) Class() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.class
}

// Toggles returns the declared toggles with their current state.
func (p *Prompt) Toggles() []Toggle {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Toggle, len(p.toggles))
	copy(out, p.toggles)
	return out
}

// Focus returns the field that has input focus.
func (p *Prompt) Focus() Field {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focus
}

// SetName replaces the name field. Ignored unless the prompt is shown.
func (p *Prompt) SetName(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Shown {
		p.name = v
	}
}

// SetClass replaces the class field. Ignored unless the prompt is shown.
func (p *Prompt) SetClass(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Shown {
		p.class = v
		p.focus = FieldClass
	}
}

// SetToggle checks or unchecks every toggle declared with id.
func (p *Prompt) SetToggle(id string, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Shown {
		return
	}
	id = strings.TrimSpace(id)
	for i := range p.toggles {
		if p.toggles[i].ID == id {
			p.toggles[i].Checked = on
		}
	}
}

// Key handles a keyboard signal: Enter confirms, Escape cancels. It reports whether the
// prompt resolved.
func (p *Prompt) Key(ctx context.Context, k Key) bool {
	switch k {
	case KeyEnter:
		return p.Confirm(ctx)
	case KeyEscape:
		return p.Cancel()
	}
	return false
}

// Confirm resolves the prompt with the entered values. An empty name keeps the prompt
// shown, moves focus to the name field and returns false. Name and class are stored
// trimmed; a failing store is logged and does not block confirmation.
func (p *Prompt) Confirm(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Shown {
		return false
	}
	name := strings.TrimSpace(p.name)
	if name == "" {
		p.focus = FieldName
		return false
	}
	class := strings.TrimSpace(p.class)
	p.state = Confirmed

	if p.prefs != nil {
		for _, kv := range [][2]string{{model.PrefKeyName, name}, {model.PrefKeyClass, class}} {
			if err := p.prefs.SetPref(ctx, kv[0], kv[1]); err != nil {
				slog.Warn("remember prefill", "key", kv[0], "error", err)
			}
		}
	}

	if len(p.toggles) == 0 {
		p.resolve(Result{Kind: KindSimple, Name: name})
		return true
	}
	flags := make(map[string]bool, len(p.toggles))
	for _, t := range p.toggles {
		flags[t.ID] = t.Checked
	}
	p.resolve(Result{Kind: KindExtended, Name: name, Class: class, Flags: flags})
	return true
}

// Cancel resolves the prompt as cancelled. It reports whether the prompt resolved.
func (p *Prompt) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Shown {
		return false
	}
	p.state = Cancelled
	p.resolve(Result{Kind: KindCancelled})
	return true
}

// resolve must be called with p.mu held.
func (p *Prompt) resolve(r Result) {
	p.result = r
	p.state = Closed
	close(p.done)
}

// Done is closed once the prompt has resolved.
func (p *Prompt) Done() <-chan struct{} { return p.done }

// Wait blocks until the prompt resolves or ctx ends. Ending ctx does not close the
// prompt.
func (p *Prompt) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
