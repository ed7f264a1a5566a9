package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/Trinoooo/pingpong/errs"
	"github.com/Trinoooo/pingpong/logs"
	"github.com/bytedance/gopkg/util/gopool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

const (
	ResultMatch    = "match"
	ResultMismatch = "mismatch"

	pushInterval = time.Second
)

type MetricsHelper struct {
	role   string
	pusher *push.Pusher
	stop   chan struct{}
	once   sync.Once
	done   sync.WaitGroup

	ConnectionCounter prometheus.Counter // dialed or accepted connections
	MessageCounter    *prometheus.CounterVec
	ErrorCounter      *prometheus.CounterVec
}

// NewMetricsHelper builds the collectors of one role. pushUrl empty means metrics
// are only kept in the local registry.
func NewMetricsHelper(role, pushUrl, job string) *MetricsHelper {
	connectionCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "pingpong_connection_counter",
		Help:        "connections dialed by the initiator or accepted by the responder",
		ConstLabels: prometheus.Labels{"role": role},
	})
	messageCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "pingpong_message_counter",
		Help:        "received messages by validation result",
		ConstLabels: prometheus.Labels{"role": role},
	}, []string{"result"})
	errorCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "pingpong_error_counter",
		Help:        "failed operations by error code",
		ConstLabels: prometheus.Labels{"role": role},
	}, []string{"code"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		connectionCounter,
		messageCounter,
		errorCounter,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mh := &MetricsHelper{
		role:              role,
		stop:              make(chan struct{}),
		ConnectionCounter: connectionCounter,
		MessageCounter:    messageCounter,
		ErrorCounter:      errorCounter,
	}
	if pushUrl != "" {
		mh.pusher = push.New(pushUrl, job).Gatherer(registry)
	}
	return mh
}

// Start pushes to the gateway in the background until Close.
func (mh *MetricsHelper) Start() {
	if mh.pusher == nil {
		return
	}
	mh.done.Add(1)
	gopool.Go(func() {
		defer mh.done.Done()
		ticker := time.NewTicker(pushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-mh.stop:
				return
			case <-ticker.C:
				if err := mh.pusher.Add(); err != nil {
					logs.Logger.Warn("prometheus pusher push failed", zap.String("role", mh.role), zap.Error(err))
				}
			}
		}
	})
}

func (mh *MetricsHelper) IncConnection() {
	mh.ConnectionCounter.Inc()
}

func (mh *MetricsHelper) IncMessage(matched bool) {
	if matched {
		mh.MessageCounter.WithLabelValues(ResultMatch).Inc()
		return
	}
	mh.MessageCounter.WithLabelValues(ResultMismatch).Inc()
}

func (mh *MetricsHelper) IncError(err error) {
	mh.ErrorCounter.WithLabelValues(strconv.FormatInt(errs.GetCode(err), 10)).Inc()
}

// Close stops the background pusher and flushes the final values once.
func (mh *MetricsHelper) Close() error {
	var err error
	mh.once.Do(func() {
		close(mh.stop)
		mh.done.Wait()
		if mh.pusher != nil {
			err = mh.pusher.Add()
		}
	})
	return err
}
