package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Count(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func (m *MockProvider) Gauge(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func (m *MockProvider) Histogram(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func TestRecorder(t *testing.T) {
	t.Run("aplica prefixo e tags", func(t *testing.T) {
		p := new(MockProvider)
		p.On("Count", "console.query.hit", float64(1), []string{"family:transportadoras"}).Return(nil)
		p.On("Histogram", "console.http.latency", float64(120), []string(nil)).Return(nil)
		p.On("Gauge", "console.cache.entries", float64(3), []string(nil)).Return(nil)

		r := NewRecorder(p, "console")
		r.Incr("query.hit", Tag("family", "transportadoras"))
		r.Timing("http.latency", 120*time.Millisecond)
		r.Gauge("cache.entries", 3)

		p.AssertExpectations(t)
	})

	t.Run("erro do provider não propaga", func(t *testing.T) {
		p := new(MockProvider)
		p.On("Count", "query.miss", float64(1), []string(nil)).Return(errors.New("udp fechado"))

		r := NewRecorder(p, "")
		assert.NotPanics(t, func() { r.Incr("query.miss") })
	})

	t.Run("recorder nulo é seguro", func(t *testing.T) {
		var r *Recorder
		assert.NotPanics(t, func() { r.Incr("x") })
	})

	t.Run("provider nulo vira noop", func(t *testing.T) {
		r := NewRecorder(nil, "x")
		assert.NotPanics(t, func() { r.Add("y", 2) })
	})
}
