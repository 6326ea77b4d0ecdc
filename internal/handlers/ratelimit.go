package handlers

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimiter is the minimal interface required to guard sensitive endpoints.
type RateLimiter interface {
	Allow(key string) (bool, time.Duration)
}

// allowRequest consults limiter for the caller. When the request is refused
// it sets Retry-After on w.
func allowRequest(limiter RateLimiter, w http.ResponseWriter, r *http.Request, scope string, trustProxy bool) bool {
	if limiter == nil {
		return true
	}
	ok, retryAfter := limiter.Allow(rateLimitKey(r, scope, trustProxy))
	if !ok && retryAfter > 0 {
		seconds := int(math.Ceil(retryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	return ok
}

func rateLimitKey(r *http.Request, scope string, trustProxy bool) string {
	ip := clientIP(r, trustProxy)
	if scope == "" {
		return ip
	}
	return fmt.Sprintf("%s:%s", scope, ip)
}

// clientIP returns the caller address. Forwarding headers are client
// controlled and only consulted when trustProxy is set.
func clientIP(r *http.Request, trustProxy bool) string {
	if !trustProxy {
		return remoteHost(r)
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
