// Package editor implements the preference prompt shown to signed-in
// users whose profile is still missing a gender or any interest tags.
// It is a headless state machine; a host UI renders State and calls the
// mutation methods.
package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nightbloom-ai/nightbloom/client/api"
	"github.com/nightbloom-ai/nightbloom/store"
)

// State is the editor lifecycle state.
type State string

const (
	StateLoading   State = "LOADING"
	StateHidden    State = "HIDDEN"
	StatePrompting State = "PROMPTING"
	StateSaving    State = "SAVING"
)

// DismissalFlagKey is the device-local key recording a "set up later"
// choice. While present, the prompt never opens on its own.
const DismissalFlagKey = "pref_prompt_dismissed"

// DefaultCloseDelay is how long the success message stays visible
// before the editor closes itself.
const DefaultCloseDelay = 600 * time.Millisecond

// Identity reports whether a user session is active on this device.
type Identity interface {
	SignedIn() bool
}

// ProfileService is the slice of the API client the editor consumes.
type ProfileService interface {
	GetMyProfile(ctx context.Context) (*api.Profile, error)
	UpdatePreferences(ctx context.Context, gender string, kinks []string) api.WriteResult
}

// FlagStore holds device-local values such as the dismissal flag.
type FlagStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Notifier is told which cached views went stale after a write.
type Notifier interface {
	Invalidate(path string)
}

// Options tune editor behavior; the zero value uses defaults.
type Options struct {
	// CloseDelay overrides DefaultCloseDelay. Tests shorten it.
	CloseDelay time.Duration
}

// Editor is safe for use from the UI goroutine plus the save goroutine.
type Editor struct {
	identity Identity
	service  ProfileService
	flags    FlagStore
	notifier Notifier

	closeDelay time.Duration
	saveGate   *semaphore.Weighted

	mu      sync.Mutex
	state   State
	closed  bool
	gender  string
	kinks   []string
	message string
	errText string
}

// New creates an editor in the Loading state.
func New(identity Identity, service ProfileService, flags FlagStore, notifier Notifier, opts Options) *Editor {
	closeDelay := opts.CloseDelay
	if closeDelay <= 0 {
		closeDelay = DefaultCloseDelay
	}
	return &Editor{
		identity:   identity,
		service:    service,
		flags:      flags,
		notifier:   notifier,
		closeDelay: closeDelay,
		saveGate:   semaphore.NewWeighted(1),
		state:      StateLoading,
	}
}

// Bootstrap seeds the draft from the stored profile and decides whether
// to prompt. Fetch failures are swallowed: the prompt is an invitation,
// never a blocker for the page.
func (e *Editor) Bootstrap(ctx context.Context) {
	if !e.identity.SignedIn() {
		e.setState(StateHidden)
		return
	}

	profile, err := e.service.GetMyProfile(ctx)
	if err != nil || profile == nil {
		e.setState(StateHidden)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.gender = profile.Gender
	e.kinks = append([]string(nil), profile.Kinks...)

	needPrompt := profile.Gender == "" || len(profile.Kinks) == 0
	if _, dismissed := e.flags.Get(DismissalFlagKey); needPrompt && !dismissed {
		e.state = StatePrompting
	} else {
		e.state = StateHidden
	}
}

// State returns the current lifecycle state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Gender returns the draft gender ("" when unset).
func (e *Editor) Gender() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gender
}

// Kinks returns a copy of the draft tag list, in selection order.
func (e *Editor) Kinks() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.kinks...)
}

// Message returns the transient success message, if any.
func (e *Editor) Message() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.message
}

// Err returns the current inline error text, if any.
func (e *Editor) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errText
}

// SelectGender replaces the draft gender. Selection is single-choice.
func (e *Editor) SelectGender(gender string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePrompting {
		return
	}
	e.gender = gender
}

// ToggleKink adds the tag if absent, removes it if present.
func (e *Editor) ToggleKink(tag string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePrompting {
		return
	}
	for i, existing := range e.kinks {
		if existing == tag {
			e.kinks = append(e.kinks[:i], e.kinks[i+1:]...)
			return
		}
	}
	e.kinks = append(e.kinks, tag)
}

// AddCustomKink trims and adds a free-form tag. The cap is enforced
// here so the user learns about it before saving.
func (e *Editor) AddCustomKink(raw string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePrompting {
		return
	}
	e.errText = ""
	tag := strings.TrimSpace(raw)
	if tag == "" {
		return
	}
	if len(e.kinks) >= store.MaxKinks {
		e.errText = fmt.Sprintf("no more than %d interest tags", store.MaxKinks)
		return
	}
	for _, existing := range e.kinks {
		if existing == tag {
			return
		}
	}
	e.kinks = append(e.kinks, tag)
}

// Defer records "set up later" on this device and closes the prompt.
// The draft is discarded; nothing is written to the server.
func (e *Editor) Defer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePrompting {
		return
	}
	e.flags.Set(DismissalFlagKey, "true")
	e.state = StateHidden
}

// Save submits the draft. It blocks for the round trip, so hosts call
// it from a goroutine. A second call while one is outstanding is a
// no-op; gender is required before any network traffic happens.
func (e *Editor) Save(ctx context.Context) {
	e.mu.Lock()
	if e.state != StatePrompting {
		e.mu.Unlock()
		return
	}
	e.message = ""
	e.errText = ""
	if e.gender == "" {
		e.errText = "please choose a gender first"
		e.mu.Unlock()
		return
	}
	if !e.saveGate.TryAcquire(1) {
		e.mu.Unlock()
		return
	}
	e.state = StateSaving
	gender := e.gender
	kinks := append([]string(nil), e.kinks...)
	e.mu.Unlock()

	result := e.service.UpdatePreferences(ctx, gender, kinks)

	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.saveGate.Release(1)
	if e.closed {
		// The host navigated away mid-flight; the outcome has no
		// surface left to land on.
		return
	}
	if !result.Ok {
		e.state = StatePrompting
		e.errText = result.Error
		if e.errText == "" {
			e.errText = "failed to save preferences"
		}
		return
	}

	e.state = StatePrompting
	e.message = "preferences saved"
	e.flags.Remove(DismissalFlagKey)
	if e.notifier != nil {
		e.notifier.Invalidate("/profile")
	}
	time.AfterFunc(e.closeDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || e.state != StatePrompting {
			return
		}
		e.state = StateHidden
	})
}

// Close marks the editor unmounted. Any in-flight save response is
// discarded and no further transitions happen.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.state = StateHidden
}

func (e *Editor) setState(state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.state = state
}
