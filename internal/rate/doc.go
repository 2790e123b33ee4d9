// Package rate implements brute-force lockout on Redis TTL counters.
//
// Per login identifier it keeps an attempt counter (login_attempts::<id>,
// TTL = lockout window, set on the first increment so stale counters expire
// on their own) and a lock flag (account_locked::<id>, TTL = lockout
// duration). Reaching the attempt threshold replaces the counter with the
// lock flag; a locked identifier therefore never has a live counter.
package rate
