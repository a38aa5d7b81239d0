package platform

import (
	"go.viam.com/camsession/enumeration"
)

// RequestBuilder accumulates the fields and targets of a capture request. It can be built many
// times; each CaptureRequest is an independent snapshot.
type RequestBuilder struct {
	template Template
	values   map[Key]interface{}
	targets  []Surface
}

// NewRequestBuilder returns an empty builder for template.
func NewRequestBuilder(template Template) *RequestBuilder {
	return &RequestBuilder{template: template, values: map[Key]interface{}{}}
}

// Set sets a field.
func (b *RequestBuilder) Set(key Key, value interface{}) {
	b.values[key] = value
}

// Get returns a field.
func (b *RequestBuilder) Get(key Key) (interface{}, bool) {
	v, ok := b.values[key]
	return v, ok
}

// AddTarget adds an output surface.
func (b *RequestBuilder) AddTarget(surface Surface) {
	b.targets = append(b.targets, surface)
}

// Build snapshots the builder into a request.
func (b *RequestBuilder) Build() *CaptureRequest {
	values := make(map[Key]interface{}, len(b.values))
	for k, v := range b.values {
		values[k] = v
	}
	return &CaptureRequest{
		template: b.template,
		values:   values,
		targets:  append([]Surface(nil), b.targets...),
	}
}

// CaptureRequest is an immutable capture request.
type CaptureRequest struct {
	template Template
	values   map[Key]interface{}
	targets  []Surface
}

// Template returns the template the request was created from.
func (r *CaptureRequest) Template() Template {
	return r.template
}

// Targets returns the output surfaces.
func (r *CaptureRequest) Targets() []Surface {
	return append([]Surface(nil), r.targets...)
}

// Get returns a field.
func (r *CaptureRequest) Get(key Key) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Int returns an int field.
func (r *CaptureRequest) Int(key Key) (int, bool) {
	v, ok := r.values[key].(int)
	return v, ok
}

// Bool returns a bool field.
func (r *CaptureRequest) Bool(key Key) (bool, bool) {
	v, ok := r.values[key].(bool)
	return v, ok
}

// FpsRange returns a frame rate range field.
func (r *CaptureRequest) FpsRange(key Key) (enumeration.FramerateRange, bool) {
	v, ok := r.values[key].(enumeration.FramerateRange)
	return v, ok
}
