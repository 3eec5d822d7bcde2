package entity

import "time"

// Session is one in-progress document: the chosen template, the form as filled so far
// and the attached photos in insertion order.
type Session struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"template_id"`
	Values     FormValues `json:"values"`
	Notes      string     `json:"notes"`
	Photos     []Photo    `json:"photos"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PhotoRefs lists photos without their payloads, keeping their order
func PhotoRefs(photos []Photo) []PhotoRef {
	refs := make([]PhotoRef, len(photos))
	for i, p := range photos {
		refs[i] = PhotoRef{ID: p.ID, FileName: p.FileName, CapturedAt: p.CapturedAt}
	}
	return refs
}

// Snapshot returns a copy that shares no mutable state with s. Photo payloads are
// treated as immutable once attached and are shared.
func (s *Session) Snapshot() *Session {
	cp := *s
	cp.Values = s.Values.Clone()
	cp.Photos = append([]Photo(nil), s.Photos...)
	return &cp
}

// PhotoInfo is what a decodable photo header reports
type PhotoInfo struct {
	Width       int
	Height      int
	ContentType string
}
