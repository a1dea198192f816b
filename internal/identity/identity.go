// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package identity defines the rate-limit key DispenseTracker keys on:
// either a recipient address (the proof-of-work flow) or an opaque
// external user id (the auth flow). A deployment picks one kind and
// sticks to it, but the tracker itself is agnostic.
package identity

import "github.com/chainfaucet/faucet/internal/chain"

// Kind distinguishes the two identity flavors.
type Kind uint8

const (
	KindAddress Kind = iota
	KindUserID
)

// Identity is a tagged union over {Address, UserID}, used as the
// DispenseTracker's map key.
type Identity struct {
	kind    Kind
	address chain.Address
	userID  string
}

// FromAddress builds an Identity for the proof-of-work flow.
func FromAddress(addr chain.Address) Identity {
	return Identity{kind: KindAddress, address: addr}
}

// FromUserID builds an Identity for the auth flow.
func FromUserID(userID string) Identity {
	return Identity{kind: KindUserID, userID: userID}
}

// Key returns a string uniquely identifying this identity, suitable as a
// map key.
func (id Identity) Key() string {
	switch id.kind {
	case KindAddress:
		return "addr:" + id.address.Hex()
	default:
		return "user:" + id.userID
	}
}

func (id Identity) String() string { return id.Key() }
