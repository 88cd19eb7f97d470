package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"transconnect/internal/clock"

	"github.com/rs/zerolog/log"
)

// Entry points the auth view redirects to
const (
	PathDiscovery    = "/dashboard"
	PathProfileSetup = "/profile-setup"
	PathSignIn       = "/auth"
	PathSignUp       = "/auth?signup=true"
)

// AuthForm is the submitted sign-in or sign-up form
type AuthForm struct {
	Name     string
	Email    string
	Password string
}

// AuthResult tells the caller where to go after a successful submission
type AuthResult struct {
	SignedUp bool
	Redirect string
}

// AuthView toggles between the sign-in and sign-up forms and simulates the
// submission round trip. Every submission succeeds.
type AuthView struct {
	mu      sync.Mutex
	signUp  bool
	loading bool

	clock clock.Clock
	delay time.Duration
	emit  Emitter
}

// NewAuthView creates an auth view in the given mode
func NewAuthView(signUp bool, c clock.Clock, delay time.Duration, emit Emitter) *AuthView {
	return &AuthView{
		signUp: signUp,
		clock:  c,
		delay:  delay,
		emit:   emit,
	}
}

// SetMode selects sign-up (true) or sign-in (false)
func (v *AuthView) SetMode(signUp bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.signUp = signUp
}

// Toggle flips the mode and returns the path that reflects it
func (v *AuthView) Toggle() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.signUp = !v.signUp
	if v.signUp {
		return PathSignUp
	}
	return PathSignIn
}

// SignUp reports whether the sign-up form is shown
func (v *AuthView) SignUp() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.signUp
}

// Loading reports whether a submission is in flight
func (v *AuthView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Submit waits out the simulated latency and reports where to go next. The
// only failure is ctx ending before the latency elapses.
func (v *AuthView) Submit(ctx context.Context, form AuthForm) (*AuthResult, error) {
	v.mu.Lock()
	if v.loading {
		v.mu.Unlock()
		return nil, ErrBusy
	}
	v.loading = true
	signUp := v.signUp
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.loading = false
		v.mu.Unlock()
	}()

	if err := clock.Sleep(ctx, v.clock, v.delay); err != nil {
		log.Debug().Err(err).Msg("Auth submission interrupted")
		v.emit.Toast(errorToast("Authentication failed. Please try again."))
		return nil, fmt.Errorf("auth submission: %w", err)
	}

	log.Debug().Str("email", form.Email).Bool("sign_up", signUp).Msg("Auth submission accepted")

	if signUp {
		v.emit.Toast(successToast("Account created successfully!"))
		return &AuthResult{SignedUp: true, Redirect: PathProfileSetup}, nil
	}
	v.emit.Toast(successToast("Welcome back!"))
	return &AuthResult{Redirect: PathDiscovery}, nil
}

// Close is a no-op; the auth view owns no timers
func (v *AuthView) Close() {}
