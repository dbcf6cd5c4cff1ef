// Package session keeps per-client values and the flash message queue.
//
// A session is identified by a signed random id stored in a cookie; its data
// lives server side in a Store (redis or memory). Flashes are queued with
// AddFlash and removed by the first ConsumeFlashes call, normally made by the
// next rendered page.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// Data is the persisted part of a session
type Data struct {
	Values  map[string]string `json:"values,omitempty"`
	Flashes []string          `json:"flashes,omitempty"`
}

func (d *Data) clone() *Data {
	out := &Data{}
	if len(d.Values) > 0 {
		out.Values = make(map[string]string, len(d.Values))
		for k, v := range d.Values {
			out.Values[k] = v
		}
	}
	if len(d.Flashes) > 0 {
		out.Flashes = append([]string(nil), d.Flashes...)
	}
	return out
}

// Session is the request-scoped view of one client's session.
// It is not safe for concurrent use.
type Session struct {
	id    string
	data  *Data
	isNew bool
	dirty bool
}

func newSession() *Session {
	return &Session{
		id:    uuid.NewString(),
		data:  &Data{},
		isNew: true,
	}
}

func (s *Session) ID() string {
	return s.id
}

// IsNew reports whether the session was created for this request
func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.data.Values[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	if s.data.Values == nil {
		s.data.Values = make(map[string]string)
	}
	s.data.Values[key] = value
	s.dirty = true
}

func (s *Session) Delete(key string) {
	if _, ok := s.data.Values[key]; ok {
		delete(s.data.Values, key)
		s.dirty = true
	}
}

// Pop returns and removes a value
func (s *Session) Pop(key string) (string, bool) {
	v, ok := s.Get(key)
	if ok {
		s.Delete(key)
	}
	return v, ok
}

// AddFlash appends messages to the flash queue, preserving order
func (s *Session) AddFlash(messages ...string) {
	if len(messages) == 0 {
		return
	}
	s.data.Flashes = append(s.data.Flashes, messages...)
	s.dirty = true
}

// PeekFlashes returns queued flashes without consuming them
func (s *Session) PeekFlashes() []string {
	return append([]string(nil), s.data.Flashes...)
}

// ConsumeFlashes returns the queued flashes and clears the queue
func (s *Session) ConsumeFlashes() []string {
	flashes := s.data.Flashes
	if len(flashes) > 0 {
		s.data.Flashes = nil
		s.dirty = true
	}
	return flashes
}

// Signer signs session ids so clients cannot pick their own
type Signer struct {
	key []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

func (s *Signer) Sign(id string) string {
	return id + "." + s.mac(id)
}

// Verify returns the id of a signed value
func (s *Signer) Verify(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(id))) {
		return "", false
	}
	return id, true
}

func (s *Signer) mac(id string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
