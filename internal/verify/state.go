package verify

import "strings"

// State accumulates verification progress for one candidate. It is owned
// by a single goroutine: identity confirmation, the geography cap and
// domain credits are order-dependent at-most-once effects.
type State struct {
	expectedName      string
	identityConfirmed bool
	geoHits           int
	linkedinHits      int
	domainCredits     map[string]bool
	knownKeywords     map[string]bool
}

// NewState starts verification for a candidate. known lists the taxonomy
// keywords the first pass already scored.
func NewState(name string, known []string) *State {
	s := &State{
		expectedName:  strings.ToLower(strings.TrimSpace(name)),
		domainCredits: make(map[string]bool),
		knownKeywords: make(map[string]bool),
	}
	for _, kw := range known {
		s.knownKeywords[strings.ToLower(kw)] = true
	}
	return s
}

// ExpectedName returns the lowercased candidate name
func (s *State) ExpectedName() string {
	return s.expectedName
}

// IdentityConfirmed reports whether investor identity has been confirmed
func (s *State) IdentityConfirmed() bool {
	return s.identityConfirmed
}

// ConfirmIdentity marks identity confirmed. It returns true only on the
// call that made the transition.
func (s *State) ConfirmIdentity() bool {
	if s.identityConfirmed {
		return false
	}
	s.identityConfirmed = true
	return true
}

// GeoHits returns how many geography bonuses were granted
func (s *State) GeoHits() int {
	return s.geoHits
}

// TakeGeoHit grants a geography bonus if the cap allows it
func (s *State) TakeGeoHit(limit int) bool {
	if s.geoHits >= limit {
		return false
	}
	s.geoHits++
	return true
}

// LinkedInHits returns how many LinkedIn results were accepted
func (s *State) LinkedInHits() int {
	return s.linkedinHits
}

// LinkedInCapped reports whether no more LinkedIn results may count
func (s *State) LinkedInCapped(limit int) bool {
	return s.linkedinHits >= limit
}

// RecordLinkedIn counts an accepted LinkedIn result
func (s *State) RecordLinkedIn() {
	s.linkedinHits++
}

// CreditDomain records a bonus domain. It returns false if the domain was
// already credited.
func (s *State) CreditDomain(domain string) bool {
	if s.domainCredits[domain] {
		return false
	}
	s.domainCredits[domain] = true
	return true
}

// Credited reports whether a bonus domain was already credited
func (s *State) Credited(domain string) bool {
	return s.domainCredits[domain]
}

// Known reports whether the first pass already scored the keyword
func (s *State) Known(keyword string) bool {
	return s.knownKeywords[strings.ToLower(keyword)]
}

// Sufficient reports whether evidence is strong enough to stop querying
func (s *State) Sufficient() bool {
	return s.identityConfirmed && s.geoHits >= 1
}
