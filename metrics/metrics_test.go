package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Trinoooo/pingpong/errs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	mh := NewMetricsHelper("responder", "", "pingpong")
	defer mh.Close()

	mh.IncConnection()
	mh.IncConnection()
	mh.IncMessage(true)
	mh.IncMessage(false)
	mh.IncMessage(false)
	mh.IncError(errs.NewBindErr())

	assert.Equal(t, float64(2), testutil.ToFloat64(mh.ConnectionCounter))
	assert.Equal(t, float64(1), testutil.ToFloat64(mh.MessageCounter.WithLabelValues(ResultMatch)))
	assert.Equal(t, float64(2), testutil.ToFloat64(mh.MessageCounter.WithLabelValues(ResultMismatch)))
	assert.Equal(t, float64(1), testutil.ToFloat64(mh.ErrorCounter.WithLabelValues("100004")))
}

func TestCloseWithoutPusher(t *testing.T) {
	mh := NewMetricsHelper("initiator", "", "pingpong")
	mh.Start()
	assert.Nil(t, mh.Close())
	// 重复关闭无副作用
	assert.Nil(t, mh.Close())
}

func TestPushOnClose(t *testing.T) {
	var pushed int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pushed, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer gateway.Close()

	mh := NewMetricsHelper("initiator", gateway.URL, "pingpong")
	mh.Start()
	mh.IncConnection()
	assert.Nil(t, mh.Close())
	assert.GreaterOrEqual(t, atomic.LoadInt32(&pushed), int32(1))
}
