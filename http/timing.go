package http

import (
	"crypto/tls"
	"net/http/httptrace"
	"time"

	"github.com/benbjohnson/clock"
)

// TimingInfo holds the phases of one request as observed by the client.
// Phases that did not happen (DNS on a reused connection, TLS over plain
// HTTP) stay zero.
type TimingInfo struct {
	StartTime           time.Time
	DNSLookupTime       time.Duration
	TCPConnectTime      time.Duration
	TLSHandshakeTime    time.Duration
	TimeToFirstByte     time.Duration
	ContentTransferTime time.Duration
	TotalTime           time.Duration
}

// timingTrace fills a TimingInfo from httptrace callbacks.
type timingTrace struct {
	clock  clock.Clock
	timing *TimingInfo

	dnsStart, connectStart, tlsStart time.Time
	lastPhaseEnd                     time.Time
}

func newTimingTrace(clk clock.Clock, timing *TimingInfo) *timingTrace {
	timing.StartTime = clk.Now()
	return &timingTrace{
		clock:        clk,
		timing:       timing,
		lastPhaseEnd: timing.StartTime,
	}
}

func (t *timingTrace) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			t.dnsStart = t.clock.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			end := t.clock.Now()
			t.timing.DNSLookupTime = end.Sub(t.dnsStart)
			t.lastPhaseEnd = end
		},
		ConnectStart: func(network, addr string) {
			t.connectStart = t.clock.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				return
			}
			end := t.clock.Now()
			t.timing.TCPConnectTime = end.Sub(t.connectStart)
			t.lastPhaseEnd = end
		},
		TLSHandshakeStart: func() {
			t.tlsStart = t.clock.Now()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err != nil {
				return
			}
			end := t.clock.Now()
			t.timing.TLSHandshakeTime = end.Sub(t.tlsStart)
			t.lastPhaseEnd = end
		},
		GotFirstResponseByte: func() {
			t.timing.TimeToFirstByte = t.clock.Now().Sub(t.lastPhaseEnd)
		},
	}
}
