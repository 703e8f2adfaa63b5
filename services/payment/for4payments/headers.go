package for4payments

import (
	"math/rand"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Browser-like headers. For4Payments' edge answers 403 to requests that look
// scripted; none of this is part of their documented API.
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Safari/605.1.15",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.45 Safari/537.36",
		"Mozilla/5.0 (Android 12; Mobile; rv:68.0) Gecko/68.0 Firefox/94.0",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:106.0) Gecko/20100101 Firefox/106.0",
	}

	acceptLanguages = []string{
		"pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
		"en-US,en;q=0.9,pt-BR;q=0.8,pt;q=0.7",
		"es-ES,es;q=0.9,pt;q=0.8,en;q=0.7",
	}

	cacheControls = []string{"max-age=0", "no-cache"}
)

var lastCacheBuster atomic.Int64

// nextCacheBuster returns the current time in milliseconds, bumped when
// needed so that no two calls in the process get the same value.
func nextCacheBuster(now time.Time) int64 {
	for {
		last := lastCacheBuster.Load()
		next := now.UnixMilli()
		if next <= last {
			next = last + 1
		}
		if lastCacheBuster.CompareAndSwap(last, next) {
			return next
		}
	}
}

func pick(pool []string) string {
	return pool[rand.Intn(len(pool))]
}

func browserHeaders(referer string, now time.Time) http.Header {
	h := http.Header{}
	h.Set("User-Agent", pick(userAgents))
	h.Set("Accept-Language", pick(acceptLanguages))
	h.Set("Cache-Control", pick(cacheControls))
	h.Set("X-Requested-With", "XMLHttpRequest")
	h.Set("X-Cache-Buster", strconv.FormatInt(nextCacheBuster(now), 10))
	if referer != "" {
		h.Set("Referer", referer)
	}
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Dest", "empty")
	return h
}
